package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"wathaci-webhooks/internal/infra/db/migrations"
)

func main() {
	_ = godotenv.Load()

	dsn := flag.String("database", os.Getenv("DATABASE_URL"), "postgres connection URL (defaults to $DATABASE_URL)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 || *dsn == "" {
		printUsage()
		os.Exit(1)
	}

	m, err := migrations.New(*dsn)
	if err != nil {
		log.Fatalf("init migrations: %v", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("close migrations: %v, %v", srcErr, dbErr)
		}
	}()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		report(m.Up(), "all migrations applied")

	case "down":
		report(m.Steps(-1), "last migration rolled back")

	case "goto":
		if flag.NArg() < 2 {
			log.Fatalf("goto needs a version number")
		}
		version, err := strconv.ParseUint(flag.Arg(1), 10, 64)
		if err != nil {
			log.Fatalf("invalid version %q: %v", flag.Arg(1), err)
		}
		report(m.Migrate(uint(version)), fmt.Sprintf("migrated to version %d", version))

	case "version", "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Println("no migrations applied yet")
		case err != nil:
			log.Fatalf("read version: %v", err)
		case dirty:
			log.Printf("version %d (dirty)", version)
		default:
			log.Printf("version %d", version)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func report(err error, okMsg string) {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Println("no change: schema already up to date")
	case err != nil:
		log.Fatalf("migration failed: %v", err)
	default:
		log.Println(okMsg)
	}
}

func printUsage() {
	fmt.Println("usage: migrate [-database URL] <command>")
	fmt.Println("commands:")
	fmt.Println("  up           apply all pending migrations")
	fmt.Println("  down         roll back the last migration")
	fmt.Println("  goto N       migrate up or down to version N")
	fmt.Println("  version      print the current schema version")
}
