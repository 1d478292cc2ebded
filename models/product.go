// Package models defines data structures for the scraper.
package models

import "time"

// Product represents one scraped product page, ready to be expanded into
// Shopify import rows. Constructed once per page and not mutated afterwards.
type Product struct {
	Handle           string    `json:"handle"`
	Title            string    `json:"title"`
	BodyHTML         string    `json:"body_html"`
	Vendor           string    `json:"vendor"`
	ProductType      string    `json:"product_type"`
	Tags             []string  `json:"tags"`
	Images           []string  `json:"images"`
	Price            string    `json:"price,omitempty"`
	CompareAtPrice   string    `json:"compare_at_price,omitempty"`
	SKU              string    `json:"sku,omitempty"`
	Grams            string    `json:"grams,omitempty"`
	WeightUnit       string    `json:"weight_unit"`
	RequiresShipping bool      `json:"requires_shipping"`
	Taxable          bool      `json:"taxable"`
	Published        bool      `json:"published"`
	Option1Name      string    `json:"option1_name"`
	Option1Value     string    `json:"option1_value"`
	URL              string    `json:"url"`
	ScrapedAt        time.Time `json:"scraped_at"`
}

// ScrapeResult holds the overall result of a scraping run
type ScrapeResult struct {
	StartTime    time.Time
	EndTime      time.Time
	TotalCount   int
	ErrorCount   int
	FailedURLs   []string
	ErrorsByType map[string]int
	RetryCount   int
	RequestCount int
}
