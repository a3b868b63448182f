package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"SchoolManager/internal/auth"
	"SchoolManager/internal/bootstrap"
	"SchoolManager/internal/config"
	pkg "SchoolManager/pkg/routes"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func zapEventLogger(logger *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: logger}
}

// runOnce starts the core modules, runs fn and stops them again.
func runOnce(fn interface{}) error {
	app := fx.New(
		pkg.CoreModules,
		fx.WithLogger(zapEventLogger),
		fx.Invoke(fn),
	)
	if err := app.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return err
	}
	return app.Stop(ctx)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		fx.New(
			pkg.CoreModules,
			pkg.EchoModules,
			fx.WithLogger(zapEventLogger),
		).Run()
	},
}

// Indexes are ensured by the Mongo client's start hook, so starting the core
// modules is enough.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the unique indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(func(*config.MongoDBClient) {})
	},
}

var admin struct {
	email, password, firstName, lastName string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			users  *auth.UserService
			logger *zap.Logger
		)
		app := fx.New(
			pkg.CoreModules,
			fx.WithLogger(zapEventLogger),
			fx.Populate(&users, &logger),
		)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := app.Start(ctx); err != nil {
			return err
		}
		defer app.Stop(ctx)

		u, created, err := users.EnsureAdmin(ctx, admin.email, admin.password, admin.firstName, admin.lastName)
		if err != nil {
			return err
		}
		if created {
			logger.Info("admin created", zap.String("email", u.Email))
		} else {
			logger.Info("existing user promoted to admin", zap.String("email", u.Email))
		}
		return nil
	},
}

func main() {
	bootstrap.Loadenv()

	rootCmd := &cobra.Command{
		Use:   "sms",
		Short: "School management API",
	}
	createAdminCmd.Flags().StringVar(&admin.email, "email", "", "admin email")
	createAdminCmd.Flags().StringVar(&admin.password, "password", "", "admin password, used only when the account is new")
	createAdminCmd.Flags().StringVar(&admin.firstName, "first-name", "Admin", "first name")
	createAdminCmd.Flags().StringVar(&admin.lastName, "last-name", "", "last name")
	_ = createAdminCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
