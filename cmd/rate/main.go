package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"statrater/pkg/config"
	"statrater/pkg/rating"
	"statrater/process/batch"
)

// Rates status screenshots or OCR text dumps (*.txt) and prints one JSON
// object per input.
func main() {
	loc := flag.String("locale", "", "locale id (default from config)")
	buffs := flag.String("buffs", "", `buffs, e.g. "atk=1000 cr=20"`)
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: rate [-locale id] [-buffs flags] file...")
		os.Exit(2)
	}

	config.LoadDotEnv("")
	cfg, err := config.Load("")
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

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	failed := false
	for _, p := range flag.Args() {
		var out rating.Outcome
		if strings.EqualFold(filepath.Ext(p), ".txt") {
			text, rerr := os.ReadFile(p)
			if rerr != nil {
				log.Fatal(rerr)
			}
			out, err = svc.Text(*loc, string(text), b)
		} else {
			out, err = svc.Image(context.Background(), *loc, p, b)
		}
		failed = failed || err != nil
		_ = enc.Encode(batch.NewLine(batch.Result{File: p, Outcome: out, Err: err}))
	}
	if failed {
		os.Exit(1)
	}
}
