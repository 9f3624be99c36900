package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"statrater/pkg/ocr"
)

// Writes the preprocessed image of every OCR pass into -out, to see what
// tesseract actually receives.
func main() {
	out := flag.String("out", os.TempDir(), "directory for the pass images")
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: cmd_debug_preproc [-out dir] image...")
	}
	for _, in := range flag.Args() {
		paths, err := ocr.DumpPasses(in, *out)
		if err != nil {
			log.Fatalf("%s: %v", in, err)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
	}
}
