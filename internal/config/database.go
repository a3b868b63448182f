package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Collection names.
const (
	UsersCollection     = "users"
	FacultiesCollection = "faculties"
	RolesCollection     = "roles"
	ClassesCollection   = "classes"
	StudentsCollection  = "students"
)

// CaseInsensitive is the collation shared by the case-insensitive unique
// indexes and the queries that must agree with them.
var CaseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg *AppConfig) (*MongoDBClient, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return &MongoDBClient{Client: client, Database: client.Database(cfg.MongoDB)}, nil
}

// NewMongoDBClient is the fx provider. A failed connection aborts startup.
func NewMongoDBClient(lc fx.Lifecycle, cfg *AppConfig, logger *zap.Logger) (*MongoDBClient, *mongo.Database, error) {
	client, err := Connect(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureIndexes(ctx, client.Database, logger)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("closing MongoDB connection")
			return client.Client.Disconnect(ctx)
		},
	})
	return client, client.Database, nil
}

// WithTransaction runs fn inside a multi-document transaction. The context
// handed to fn carries the session; every repository call made with it joins
// the transaction. Any error returned by fn aborts and rolls back.
func (c *MongoDBClient) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := c.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// Index names, referenced by the guard when a duplicate-key error is mapped
// back to the offending field.
const (
	IndexUserEmail       = "users_email_unique"
	IndexUserMobile      = "users_mobile_unique"
	IndexFacultyID       = "faculty_id_unique"
	IndexEmployeeID      = "faculty_employee_id_unique"
	IndexFacultyEmail    = "faculty_email_unique"
	IndexFacultyMobile   = "faculty_mobile_unique"
	IndexRoleName        = "roles_name_unique"
	IndexClassNaturalKey = "classes_name_section_year_unique"
	IndexStudentEmail    = "students_email_unique"
	IndexStudentMobile   = "students_mobile_unique"
	IndexStudentUser     = "students_user_unique"
)

func uniqueIndex(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true).SetName(name)}
}

// indexSpecs lists the unique indexes that back every uniqueness check made
// in application code.
func indexSpecs() map[string][]mongo.IndexModel {
	presentMobile := bson.M{"mobileNumber": bson.M{"$type": "string"}}
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			uniqueIndex(IndexUserEmail, bson.D{{Key: "email", Value: 1}}),
			{
				Keys:    bson.D{{Key: "mobileNumber", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(IndexUserMobile).SetPartialFilterExpression(presentMobile),
			},
		},
		FacultiesCollection: {
			uniqueIndex(IndexFacultyID, bson.D{{Key: "facultyId", Value: 1}}),
			uniqueIndex(IndexEmployeeID, bson.D{{Key: "employeeId", Value: 1}}),
			uniqueIndex(IndexFacultyEmail, bson.D{{Key: "email", Value: 1}}),
			uniqueIndex(IndexFacultyMobile, bson.D{{Key: "mobileNumber", Value: 1}}),
		},
		RolesCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(IndexRoleName).SetCollation(CaseInsensitive),
			},
		},
		ClassesCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}, {Key: "section", Value: 1}, {Key: "academicYear", Value: 1}},
				Options: options.Index().SetUnique(true).SetName(IndexClassNaturalKey).SetCollation(CaseInsensitive),
			},
		},
		StudentsCollection: {
			uniqueIndex(IndexStudentEmail, bson.D{{Key: "email", Value: 1}}),
			uniqueIndex(IndexStudentMobile, bson.D{{Key: "mobileNumber", Value: 1}}),
			uniqueIndex(IndexStudentUser, bson.D{{Key: "userId", Value: 1}}),
		},
	}
}

// EnsureIndexes creates the unique indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for collection, models := range indexSpecs() {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		logger.Info("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}
