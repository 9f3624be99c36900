package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"statrater/pkg/ocr"
)

func main() {
	f := flag.String("file", "", "image file to OCR")
	lang := flag.String("lang", "jpn", "tesseract language")
	passes := flag.Int("passes", 0, "limit preprocessing passes (0 = all)")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}
	t := &ocr.Tesseract{TessdataPrefix: os.Getenv("TESSDATA_PREFIX"), MaxPasses: *passes}
	text, err := t.Recognize(context.Background(), *f, *lang)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	fmt.Println(text)
}
