package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"lms-app/internal/logging"
	"lms-app/internal/storage"
)

func usage() {
	fmt.Fprintf(os.Stderr, `lmsctl manages the embedded LMS database.

usage: lmsctl [flags] <command>

commands:
  init     create tables if absent and apply migrations
  migrate  apply migrations only
  seed     insert the demo accounts (idempotent)
  reset    drop all tables

flags:
`)
	flag.PrintDefaults()
}

func main() {
	_ = godotenv.Load()

	defaultPath := os.Getenv("LMS_DB_PATH")
	if defaultPath == "" {
		defaultPath = "lms.db"
	}
	defaultMode := os.Getenv("LMS_LOG_MODE")

	dbPath := flag.String("db", defaultPath, "path to the database file")
	logMode := flag.String("log", defaultMode, "log mode (dev or prod)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	log, err := logging.New(*logMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatal("open database failed", "path", *dbPath, "error", err)
	}
	defer db.Close()

	ctx := context.Background()
	schema := storage.NewSchema(db, log)

	switch command {
	case "init":
		err = schema.Initialize(ctx)
	case "migrate":
		schema.Migrate(ctx)
	case "seed":
		if err = schema.Initialize(ctx); err == nil {
			err = schema.Seed(ctx)
		}
	case "reset":
		err = schema.Reset(ctx)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("command failed", "command", command, "error", err)
	}
	log.Info("done", "command", command, "db", *dbPath)
}
