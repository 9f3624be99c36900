package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"statrater/models"
	"statrater/pkg/config"
	"statrater/pkg/locale"
)

func main() {
	role := flag.String("role", models.RoleUser, "role name (user or administrator)")
	loc := flag.String("locale", "", "preferred locale id")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [-role r] [-locale id] <username> <password>")
		os.Exit(2)
	}
	username, password := flag.Arg(0), flag.Arg(1)

	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DSN == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	if *loc != "" {
		p, err := locale.NewRegistry(cfg.DefaultLocale).Lookup(*loc)
		if err != nil {
			log.Fatal(err)
		}
		*loc = p.ID
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	if err := models.EnsureRoles(db); err != nil {
		log.Fatal(err)
	}

	user, err := models.CreateUser(db, username, password, *role, *loc)
	if errors.Is(err, models.ErrUserExists) {
		fmt.Printf("user %s already exists\n", username)
		return
	}
	if err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d\n", user.Username, user.ID)
}
