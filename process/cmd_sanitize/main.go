package main

import (
	"flag"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"statrater/pkg/config"
	"statrater/process/sanitize"
)

func main() {
	var opts sanitize.Options
	flag.BoolVar(&opts.DryRun, "dry-run", true, "Don't perform destructive actions; show what would be done")
	flag.BoolVar(&opts.Yes, "yes", false, "Confirm destructive action (required to actually truncate)")
	flag.BoolVar(&opts.Reseed, "reseed", false, "After truncation, reseed roles and the admin user")
	flag.StringVar(&opts.Tables, "tables", sanitize.DefaultTables, "Comma-separated list of tables to truncate")
	flag.Parse()

	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DSN == "" {
		log.Fatal("DB_DSN must be set to run db_sanitize")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := sanitize.Run(gdb, os.Stdout, opts); err != nil {
		log.Fatal(err)
	}
}
