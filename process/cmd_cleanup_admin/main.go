package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"statrater/pkg/config"
)

// Removes the ratings, presets and refresh tokens of one account, the
// seeded admin by default.
func main() {
	username := flag.String("username", "admin", "account to clean up")
	flag.Parse()

	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DSN == "" {
		log.Fatal("DB_DSN not set")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var userID sql.NullInt64
	err = db.QueryRow(`SELECT id FROM users WHERE username=$1 LIMIT 1`, *username).Scan(&userID)
	if err == sql.ErrNoRows || (err == nil && !userID.Valid) {
		fmt.Printf("%s user not found; nothing to cleanup\n", *username)
		return
	}
	if err != nil {
		log.Fatalf("find %s: %v", *username, err)
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	var counts []int64
	for _, table := range []string{"ratings", "presets", "refresh_tokens"} {
		res, err := tx.Exec(`DELETE FROM `+table+` WHERE user_id=$1`, userID.Int64)
		if err != nil {
			_ = tx.Rollback()
			log.Fatalf("delete %s: %v", table, err)
		}
		n, _ := res.RowsAffected()
		counts = append(counts, n)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}
	fmt.Printf("cleanup done: ratings=%d presets=%d refresh_tokens=%d\n", counts[0], counts[1], counts[2])
}
