package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"statrater/models"
	"statrater/pkg/config"
)

// Polls until a rating for -file exists, handy next to cmd_batch -watch.
func main() {
	username := flag.String("username", "", "username")
	file := flag.String("file", "", "screenshot file name")
	wait := flag.Int("wait", 15, "seconds to wait/poll")
	flag.Parse()
	if *username == "" || *file == "" {
		log.Fatal("--username and --file are required")
	}
	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DSN == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	uid, err := models.UserID(db, *username)
	if err != nil {
		log.Fatal(err)
	}
	deadline := time.Now().Add(time.Duration(*wait) * time.Second)
	for {
		var r models.Rating
		err := db.Where("user_id = ? AND source = ?", uid, *file).Order("id desc").First(&r).Error
		if err == nil {
			fmt.Printf("FOUND score=%.1f guidance=%s for file=%s\n", r.Score, r.Guidance, r.Source)
			return
		}
		if time.Now().After(deadline) {
			log.Fatalf("not found after %ds waiting", *wait)
		}
		time.Sleep(2 * time.Second)
	}
}
