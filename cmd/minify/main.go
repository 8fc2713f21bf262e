package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

// Minifies a single asset file for the dist/ build. Invoked per file from the
// build script with -input/-output/-type.
func main() {
	var (
		inputFile  = flag.String("input", "", "Input file path")
		outputFile = flag.String("output", "", "Output file path")
		fileType   = flag.String("type", "", "File type (css, js, or html)")
	)
	flag.Parse()

	if *inputFile == "" || *outputFile == "" || *fileType == "" {
		log.Fatal("Usage: go run cmd/minify/main.go -input=<file> -output=<file> -type=<css|js|html>")
	}

	mediaTypes := map[string]string{
		"css":  "text/css",
		"js":   "application/javascript",
		"html": "text/html",
	}
	mediaType, ok := mediaTypes[strings.ToLower(*fileType)]
	if !ok {
		log.Fatalf("Unsupported file type: %s (supported: css, js, html)", *fileType)
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("text/html", html.Minify)

	input, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input file: %v", err)
	}

	minified, err := m.String(mediaType, string(input))
	if err != nil {
		log.Fatalf("Failed to minify %s: %v", *fileType, err)
	}

	if err := os.MkdirAll(filepath.Dir(*outputFile), 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*outputFile, []byte(minified), 0644); err != nil {
		log.Fatalf("Failed to write output file: %v", err)
	}

	fmt.Printf("Minified %s -> %s\n", *inputFile, *outputFile)
}
