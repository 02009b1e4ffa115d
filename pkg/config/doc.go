// Package config loads typed configuration from environment variables.
//
// It wraps github.com/caarlos0/env/v11 for struct tag parsing and
// github.com/joho/godotenv for optional dotenv files. Structs declare their
// variables with `env` and `envDefault` tags:
//
//	type Config struct {
//		Addr           string `env:"HTTP_ADDR" envDefault:":8080"`
//		MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"false"`
//	}
//
// Failures are joined with ErrParsingConfig so callers can test for them
// with errors.Is.
package config
