// Package database handles connections to the contest registry store.
//
// It provides a wrapper around GORM that configures MySQL connections from
// the application configuration. A sqlite driver is also supported so tests
// can run against an isolated in-memory registry instead of a shared server.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
