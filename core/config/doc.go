// Package config provides configuration management for the contest tracker.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Database: registry connection details (MySQL, sqlite for tests)
//   - Log: logging level and format
//   - Wiki: Wikisource API client settings (user agent, timeout)
//   - Reconcile: engine commit granularity and run deadline
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Host)
package config
