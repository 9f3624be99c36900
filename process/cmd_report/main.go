package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"statrater/pkg/config"
	"statrater/process/report"
)

func main() {
	username := flag.String("username", "admin", "username to report for")
	month := flag.String("month", time.Now().UTC().Format("2006-01"), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list matching ratings")
	history := flag.Bool("history", false, "print every month instead of one")
	flag.Parse()

	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DSN == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	if *history {
		months, err := report.History(gdb, *username)
		if err != nil {
			log.Fatal(err)
		}
		report.WriteHistory(os.Stdout, *username, months)
		return
	}
	if err := report.Run(gdb, os.Stdout, *username, *month, *list); err != nil {
		log.Fatal(err)
	}
}
