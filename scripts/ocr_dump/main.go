package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"statrater/pkg/config"
	"statrater/pkg/ocr"
	"statrater/pkg/rating"
	"statrater/pkg/stats"
)

// Prints how a screenshot or text dump is scanned: every line with its
// skip reason, the tokens and the resolved layout.
func main() {
	path := flag.String("path", "", "image or .txt path")
	loc := flag.String("locale", "", "locale id")
	flag.Parse()
	if *path == "" {
		log.Fatal("--path is required")
	}
	config.LoadDotEnv("")
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	svc, err := rating.FromConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	p, err := svc.Parser(*loc)
	if err != nil {
		log.Fatal(err)
	}

	var text string
	if strings.EqualFold(filepath.Ext(*path), ".txt") {
		b, err := os.ReadFile(*path)
		if err != nil {
			log.Fatal(err)
		}
		text = string(b)
	} else {
		t := &ocr.Tesseract{TessdataPrefix: cfg.TessdataPrefix}
		if text, err = t.Recognize(context.Background(), *path, p.Locale().OCRCode); err != nil {
			log.Fatalf("ocr error: %v", err)
		}
	}

	sheet := p.Scan(text)
	fmt.Printf("locale=%s lines=%d tokens=%d\n", p.Locale().ID, sheet.LineCount(), len(sheet.Tokens))
	for _, l := range sheet.Lines {
		mark := " "
		if l.Token {
			mark = "*"
		}
		fmt.Printf("%s %3d %-9s %-30q %q\n", mark, l.Index, l.Skip, l.Raw, l.Normalized)
	}
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("tokens=%q\n", sheet.Tokens)
	fields := make([]stats.Field, 0, len(sheet.Layout))
	for f := range sheet.Layout {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return sheet.Layout[fields[i]] < sheet.Layout[fields[j]] })
	for _, f := range fields {
		tok := "<missing>"
		if i := sheet.Layout[f]; i < len(sheet.Tokens) {
			tok = sheet.Tokens[i]
		}
		fmt.Printf("%-12s token[%d]=%s\n", f, sheet.Layout[f], tok)
	}
}
