package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-products/models"
)

// Header returns the Shopify bulk-import column header.
func Header() []string {
	return []string{
		"Handle", "Title", "Body (HTML)", "Vendor", "Standard Product Type", "Tags", "Published",
		"Option1 Name", "Option1 Value", "Variant SKU", "Variant Grams", "Variant Inventory Tracker",
		"Variant Inventory Policy", "Variant Fulfillment Service", "Variant Price", "Variant Compare At Price",
		"Variant Requires Shipping", "Variant Taxable", "Variant Weight Unit", "Image Src", "Image Position",
		"Image Alt Text", "SEO Title", "SEO Description", "Google Product Category",
	}
}

// ProductRows expands one product into Shopify import rows: a primary row
// with every column populated and the first image, then one row per extra
// image carrying only the handle, image URL and position.
func ProductRows(p *models.Product) [][]string {
	firstImage, firstPosition := "", ""
	if len(p.Images) > 0 {
		firstImage, firstPosition = p.Images[0], "1"
	}

	base := []string{
		p.Handle,
		p.Title,
		p.BodyHTML,
		p.Vendor,
		"", // Standard Product Type left blank; the Google category column carries the taxonomy
		strings.Join(p.Tags, ","),
		boolCell(p.Published),
		p.Option1Name,
		p.Option1Value,
		p.SKU,
		p.Grams,
		"shopify",
		"deny",
		"manual",
		p.Price,
		p.CompareAtPrice,
		boolCell(p.RequiresShipping),
		boolCell(p.Taxable),
		p.WeightUnit,
		firstImage,
		firstPosition,
		"",
		p.Title,
		seoDescription(p),
		p.ProductType,
	}
	rows := [][]string{base}

	if len(p.Images) > 1 {
		for i, image := range p.Images[1:] {
			row := make([]string, len(base))
			row[0] = p.Handle
			row[19] = image
			row[20] = strconv.Itoa(i + 2)
			rows = append(rows, row)
		}
	}

	return rows
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func seoDescription(p *models.Product) string {
	return fmt.Sprintf("Buy %s by %s – dual motor e-bike, fast shipping.", p.Title, p.Vendor)
}
