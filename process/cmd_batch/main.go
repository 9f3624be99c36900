package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"statrater/models"
	"statrater/pkg/config"
	"statrater/pkg/rating"
	"statrater/process/batch"
)

func main() {
	dir := flag.String("dir", "screenshots", "directory to scan for screenshots")
	loc := flag.String("locale", "", "locale id (default from config)")
	buffs := flag.String("buffs", "", `buffs added to every sheet, e.g. "atk=1000 cr=20"`)
	workers := flag.Int("workers", 0, "concurrent recognitions (0 = NumCPU)")
	watch := flag.Bool("watch", false, "keep watching dir for new screenshots")
	processed := flag.String("processed", "", "move rated screenshots here")
	maxArchive := flag.Int64("max-archive-bytes", 0, "shrink archived screenshots above this size")
	username := flag.String("username", "", "store ratings for this user (needs DB_DSN)")
	verbose := flag.Bool("verbose", false, "log every file")
	cfgPath := flag.String("config", "", "config file")
	flag.Parse()

	config.LoadDotEnv("")
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	svc, err := rating.FromConfig(cfg)
	if err != nil {
		log.Fatalf("locales: %v", err)
	}
	b, err := rating.Buffs(*buffs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad -buffs: %v\n", err)
		os.Exit(2)
	}

	var sink batch.Sink = batch.NewJSONSink(os.Stdout)
	if *username != "" {
		if cfg.DSN == "" {
			fmt.Fprintln(os.Stderr, "DB_DSN not set; export and retry")
			os.Exit(2)
		}
		gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		uid, err := models.UserID(gdb, *username)
		if err != nil {
			log.Fatal(err)
		}
		if sink, err = batch.NewDBSink(gdb, uid, sink); err != nil {
			log.Fatal(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = batch.Run(ctx, svc, sink, batch.Options{
		Dir:             *dir,
		Locale:          *loc,
		Buffs:           b,
		Workers:         *workers,
		Watch:           *watch,
		Processed:       *processed,
		MaxArchiveBytes: *maxArchive,
		Verbose:         *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}
