package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds scraper configuration. A value is built once in main and
// passed explicitly into the parser and pipeline; nothing reads it as a
// global.
type Config struct {
	// ProductURLs is the fallback URL list used when no positional
	// arguments are given. Left empty by default.
	ProductURLs []string

	Vendor      string
	ProductType string
	Tags        []string
	Currency    string

	DefaultTitle       string
	DefaultDescription string
	WeightUnit         string

	OutputFile   string
	OutputFormat string // csv, json, or dual

	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxAttempts    int
	RetryBackoff   time.Duration

	MaxImages      int
	SpecsHTMLLimit int

	PipelineBufferSize int
	BatchSize          int
	DedupeMaxSize      int

	MetricsAddr string
	Verbose     bool
}

// DefaultConfig returns the defaults for the Philodo product pages this
// tool was built against.
func DefaultConfig() *Config {
	return &Config{
		ProductURLs:        nil,
		Vendor:             "Philodo",
		ProductType:        "Sporting Goods > Outdoor Recreation > Cycling > Electric Bicycles",
		Tags:               []string{"e-bike", "dual motor", "fat tire", "60V"},
		Currency:           "USD",
		DefaultTitle:       "Philodo Electric Bike",
		DefaultDescription: "<p>High-performance dual-motor e-bike.</p>",
		WeightUnit:         "lb",
		OutputFile:         "shopify_products.csv",
		OutputFormat:       "csv",
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		AcceptLanguage:     "en-US,en;q=0.9",
		Timeout:            20 * time.Second,
		MaxAttempts:        3,
		RetryBackoff:       1500 * time.Millisecond,
		MaxImages:          12,
		SpecsHTMLLimit:     12000,
		PipelineBufferSize: 512,
		BatchSize:          64,
		DedupeMaxSize:      1024,
		MetricsAddr:        "",
		Verbose:            false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Vendor == "" {
		return fmt.Errorf("vendor cannot be empty")
	}
	if c.DefaultTitle == "" {
		return fmt.Errorf("default title cannot be empty")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.MaxImages <= 0 {
		return fmt.Errorf("max images must be positive")
	}
	if c.SpecsHTMLLimit <= 0 {
		return fmt.Errorf("specs html limit must be positive")
	}
	if c.PipelineBufferSize <= 0 {
		return fmt.Errorf("pipeline buffer size must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	return nil
}

// EnvString reads a string environment override.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment override.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, true, nil
}
