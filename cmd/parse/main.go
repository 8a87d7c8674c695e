package main

// Parse a local resume without touching the database:
//   go run ./cmd/parse -pdf ./resume.pdf

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"resume-parser/internal/extract"
	"resume-parser/internal/llm"
	"resume-parser/internal/llm/groq"
	"resume-parser/internal/shared/config"
)

func main() {
	path := flag.String("pdf", "", "path to a PDF resume")
	textOnly := flag.Bool("text", false, "print extracted text and skip structuring")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read %s: %v", *path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	text, err := extract.Extract(ctx, data)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}
	if *textOnly {
		os.Stdout.WriteString(text + "\n")
		return
	}

	// Database settings are not needed for a local parse.
	cfg, _ := config.Load()
	client, err := groq.NewClient(groq.Options{
		APIKey:        cfg.LLMAPIKey,
		BaseURL:       cfg.LLMBaseURL,
		Model:         cfg.LLMModel,
		MaxTokens:     cfg.LLMMaxTokens,
		Temperature:   cfg.LLMTemperature,
		Timeout:       cfg.LLMTimeout,
		MaxInputChars: cfg.LLMMaxInputChars,
	})
	if err != nil {
		log.Fatalf("llm client: %v", err)
	}

	details, err := llm.WithRetry(client, llm.DefaultRetryDelay).Structure(ctx, text)
	if err != nil {
		log.Fatalf("structure: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(details); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
