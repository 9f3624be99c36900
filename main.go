package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"statrater/pkg/config"
	"statrater/pkg/feed"
	"statrater/pkg/rating"
)

var (
	appConfig config.Config
	jwtSecret []byte // from JWT_SECRET, dev default otherwise
	svc       *rating.Service
)

// ratingFeed pushes stored ratings to the owner's /ws connections.
var ratingFeed = feed.NewHub()

func main() {
	// Auto-load ./.env if present before reading vars
	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appConfig = cfg
	jwtSecret = []byte(cfg.JWTSecret)

	// `statrater migrate` runs AutoMigrate and seeding then exits.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration and seeding completed")
		return
	}

	if err := initRating(cfg); err != nil {
		log.Fatalf("locales: %v", err)
	}
	initDB()

	r := gin.Default()
	setupRoutes(r)

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

// initRating builds the rating service from cfg.
func initRating(cfg config.Config) error {
	s, err := rating.FromConfig(cfg)
	if err != nil {
		return err
	}
	svc = s
	return nil
}
