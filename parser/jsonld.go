package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StructuredData merges every application/ld+json block in the document
// into one mapping. List-shaped blocks are flattened one level; on key
// collisions the later block wins. Malformed blocks are skipped.
func StructuredData(doc *goquery.Document) map[string]interface{} {
	merged := make(map[string]interface{})
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var block interface{}
		if err := json.Unmarshal([]byte(raw), &block); err != nil {
			return
		}
		blocks, ok := block.([]interface{})
		if !ok {
			blocks = []interface{}{block}
		}
		for _, b := range blocks {
			if m, ok := b.(map[string]interface{}); ok {
				for k, v := range m {
					merged[k] = v
				}
			}
		}
	})
	return merged
}

// Price reads offers.price from the structured metadata, accepting either
// an offers object or the first element of an offers list, and falls back
// to the product:price:amount or price meta tags.
func Price(doc *goquery.Document, meta map[string]interface{}) (string, bool) {
	switch offers := meta["offers"].(type) {
	case map[string]interface{}:
		if price := stringValue(offers["price"]); price != "" {
			return price, true
		}
	case []interface{}:
		if len(offers) > 0 {
			if first, ok := offers[0].(map[string]interface{}); ok {
				if price := stringValue(first["price"]); price != "" {
					return price, true
				}
			}
		}
	}

	for _, selector := range []string{`meta[property="product:price:amount"]`, `meta[name="price"]`} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content, true
			}
		}
	}
	return "", false
}

// SKU reads the top-level sku from the structured metadata, then offers.sku
// when offers is an object.
func SKU(meta map[string]interface{}) (string, bool) {
	if sku := stringValue(meta["sku"]); sku != "" {
		return sku, true
	}
	if offers, ok := meta["offers"].(map[string]interface{}); ok {
		if sku := stringValue(offers["sku"]); sku != "" {
			return sku, true
		}
	}
	return "", false
}

// stringValue renders JSON-LD scalar values; numbers lose any trailing
// zeros so "1999.0" and 1999 come out the same.
func stringValue(v interface{}) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}
