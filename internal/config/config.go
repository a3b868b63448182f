package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// AppConfig is read once at startup and passed explicitly to the components
// that need it. Nothing mutates it afterwards.
type AppConfig struct {
	Port                   string
	MongoURI               string
	MongoDB                string
	JWTKey                 []byte
	TokenTTL               time.Duration
	BcryptCost             int
	DefaultFacultyPassword string
	FacultyIDAttempts      int
	CORSOrigins            []string
	LogLevel               string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("MONGO_DB", "school_management")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("DEFAULT_FACULTY_PASSWORD", "Faculty@123")
	v.SetDefault("FACULTY_ID_ATTEMPTS", 3)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	return v
}

// Load reads the configuration from the environment.
func Load() (*AppConfig, error) {
	return load(newViper())
}

func load(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                   v.GetString("PORT"),
		MongoURI:               v.GetString("MONGO_URI"),
		MongoDB:                v.GetString("MONGO_DB"),
		JWTKey:                 []byte(v.GetString("JWT_KEY")),
		TokenTTL:               v.GetDuration("TOKEN_TTL"),
		BcryptCost:             v.GetInt("BCRYPT_COST"),
		DefaultFacultyPassword: v.GetString("DEFAULT_FACULTY_PASSWORD"),
		FacultyIDAttempts:      v.GetInt("FACULTY_ID_ATTEMPTS"),
		CORSOrigins:            splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:               v.GetString("LOG_LEVEL"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI not set")
	}
	if len(c.JWTKey) == 0 {
		return errors.New("JWT_KEY not set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return errors.New("BCRYPT_COST out of range")
	}
	if len(c.DefaultFacultyPassword) < 6 {
		return errors.New("DEFAULT_FACULTY_PASSWORD must be at least 6 characters")
	}
	if c.FacultyIDAttempts < 1 {
		c.FacultyIDAttempts = 1
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
