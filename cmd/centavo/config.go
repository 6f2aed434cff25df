package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/centavo-app/centavo/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = "prod"
	defaultAdminUser    = "admin"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Secret key
	// Used for signing JWT access tokens, so keep it stable between restarts
	SecretKey string

	// Environment (dev gets text logs, prod gets json)
	Environment string

	// Reject logins until the user verified their email
	RequireVerifiedEmail bool

	// Return issued verification and reset codes in API responses.
	// Only for local runs without a mail provider
	ExposeCodes bool

	// Static credentials for admin endpoints.
	// While AdminPassword is empty the admin endpoints reject every request
	AdminUser     string
	AdminPassword string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		AdminUser:   defaultAdminUser,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if v, err := strconv.ParseBool(value); err == nil {
				*o = v
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":                 setString(&c.ListenAddr),
		"DATABASE_URI":                setString(&c.DatabaseDSN),
		"SECRET_KEY":                  setString(&c.SecretKey),
		"LOG_LEVEL":                   setString(&c.LogLevel),
		"ENVIRONMENT":                 setString(&c.Environment),
		"AUTH_REQUIRE_VERIFIED_EMAIL": setBool(&c.RequireVerifiedEmail),
		"AUTH_EXPOSE_CODES":           setBool(&c.ExposeCodes),
		"ADMIN_USER":                  setString(&c.AdminUser),
		"ADMIN_PASSWORD":              setString(&c.AdminPassword),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("centavo", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.BoolVar(&c.RequireVerifiedEmail, "require-verified-email", c.RequireVerifiedEmail, "Reject logins until email is verified")
	fs.BoolVar(&c.ExposeCodes, "expose-codes", c.ExposeCodes, "Return verification codes in responses (local runs only)")

	return fs.Parse(args)
}
