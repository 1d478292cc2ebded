// Package parser implements the extraction heuristics for product pages.
// Each heuristic is a pure function over a parsed document so it can be
// tested without a network fetch. Extraction never fails: missing fields
// degrade to the configured defaults.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
)

const specsMinChars = 50

var (
	descClassPattern    = regexp.MustCompile(`(?i)(product-desc|description|prose|rte)`)
	specsHeadingPattern = regexp.MustCompile(`(?i)(spec|feature)`)
	handlePattern       = regexp.MustCompile(`[^a-z0-9-]+`)
	spaceBeforeNewline  = regexp.MustCompile(`\s+\n`)
	excessNewlines      = regexp.MustCompile(`\n{3,}`)
)

// ParseProduct applies every heuristic to doc and assembles a Product with
// the configured defaults filled in.
func ParseProduct(doc *goquery.Document, pageURL string, cfg *config.Config) *models.Product {
	title := Title(doc, cfg.DefaultTitle)
	meta := StructuredData(doc)

	body := Description(doc, meta)
	if specs, ok := SpecsBlock(doc, cfg.SpecsHTMLLimit); ok && !strings.Contains(body, specs) {
		body += "\n<h3>Specifications</h3>\n" + specs
	}
	body = CleanHTMLText(body)
	if body == "" {
		body = cfg.DefaultDescription
	}

	price, _ := Price(doc, meta)
	sku, _ := SKU(meta)

	return &models.Product{
		Handle:           Handle(title, cfg.Vendor),
		Title:            title,
		BodyHTML:         body,
		Vendor:           cfg.Vendor,
		ProductType:      cfg.ProductType,
		Tags:             append([]string(nil), cfg.Tags...),
		Images:           Images(doc, cfg.MaxImages),
		Price:            price,
		SKU:              sku,
		WeightUnit:       cfg.WeightUnit,
		RequiresShipping: true,
		Taxable:          true,
		Published:        true,
		Option1Name:      "Title",
		Option1Value:     "Default Title",
		URL:              pageURL,
		ScrapedAt:        time.Now(),
	}
}

// Title prefers the first <h1> when it has more than two characters, then
// the document <title>, then the fallback.
func Title(doc *goquery.Document, fallback string) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); utf8.RuneCountInString(h1) > 2 {
		return h1
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return fallback
}

// Description prefers the structured-metadata description wrapped in a
// paragraph, then the first element whose class matches a known container
// pattern. Returns "" when neither is present.
func Description(doc *goquery.Document, meta map[string]interface{}) string {
	for _, key := range []string{"description", "Description"} {
		if desc, ok := meta[key].(string); ok && desc != "" {
			return "<p>" + desc + "</p>"
		}
	}

	var out string
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !descClassPattern.MatchString(class) {
			return true
		}
		if h, err := goquery.OuterHtml(s); err == nil {
			out = h
		}
		return false
	})
	return out
}

// SpecsBlock captures a "Specifications" section: the first h2-h4 heading
// matching spec/feature plus its following paragraph/list/table/div
// siblings, until the next heading of those levels or until the collected
// HTML exceeds limit characters. Returns false when nothing long enough
// was found.
func SpecsBlock(doc *goquery.Document, limit int) (string, bool) {
	var heading *goquery.Selection
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if specsHeadingPattern.MatchString(s.Text()) {
			heading = s
			return false
		}
		return true
	})
	if heading == nil {
		return "", false
	}

	var parts []string
	total := 0
	if h, err := goquery.OuterHtml(heading); err == nil {
		parts = append(parts, h)
		total += len(h)
	}
	heading.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
		switch goquery.NodeName(sib) {
		case "h2", "h3", "h4":
			return false
		case "p", "ul", "ol", "table", "div":
			if h, err := goquery.OuterHtml(sib); err == nil {
				parts = append(parts, h)
				total += len(h)
			}
		}
		return total <= limit
	})

	block := strings.Join(parts, "\n")
	if len(block) <= specsMinChars {
		return "", false
	}
	return block, true
}

// CleanHTMLText collapses trailing spaces before newlines and runs of
// blank lines, then trims the result.
func CleanHTMLText(text string) string {
	text = spaceBeforeNewline.ReplaceAllString(text, "\n")
	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Handle derives a URL-safe slug from the title: lowercase, runs of
// non [a-z0-9-] collapsed to a single hyphen, hyphens trimmed, and the
// vendor name prefixed when not already a substring.
func Handle(title, vendor string) string {
	handle := strings.Trim(handlePattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	brand := strings.ToLower(vendor)
	if handle == "" {
		return brand
	}
	if !strings.Contains(handle, brand) {
		handle = brand + "-" + handle
	}
	return handle
}

// ValidateProduct ensures the parser produced the required fields.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.Handle) == "" {
		return fmt.Errorf("product missing handle")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("product missing title for %s", p.URL)
	}
	return nil
}
