package parser

import (
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "prefers h1",
			html:     "<html><head><title>Page Title</title></head><body><h1> Falcon 60V </h1></body></html>",
			expected: "Falcon 60V",
		},
		{
			name:     "short h1 falls back to title",
			html:     "<html><head><title>Page Title</title></head><body><h1>ab</h1></body></html>",
			expected: "Page Title",
		},
		{
			name:     "no h1 uses title",
			html:     "<html><head><title> Forester 60V </title></head><body></body></html>",
			expected: "Forester 60V",
		},
		{
			name:     "nothing uses fallback",
			html:     "<html><body><p>no headings here</p></body></html>",
			expected: "Philodo Electric Bike",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(parseDoc(t, tt.html), "Philodo Electric Bike")
			if got != tt.expected {
				t.Errorf("Title() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	t.Run("prefers structured metadata", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><div class="product-description">container</div></body></html>`)
		meta := map[string]interface{}{"description": "Dual motor e-bike"}
		if got := Description(doc, meta); got != "<p>Dual motor e-bike</p>" {
			t.Errorf("Description() = %q", got)
		}
	})

	t.Run("falls back to class container", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><div class="other">skip</div><div class="Product-Desc"><p>From the page</p></div></body></html>`)
		got := Description(doc, map[string]interface{}{})
		if !strings.Contains(got, "From the page") {
			t.Errorf("Description() = %q, want container HTML", got)
		}
	})

	t.Run("rte class matches", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><div class="rte"><p>Shopify body</p></div></body></html>`)
		if got := Description(doc, map[string]interface{}{}); !strings.Contains(got, "Shopify body") {
			t.Errorf("Description() = %q", got)
		}
	})

	t.Run("empty when nothing matches", func(t *testing.T) {
		doc := parseDoc(t, `<html><body><div class="hero">banner</div></body></html>`)
		if got := Description(doc, map[string]interface{}{}); got != "" {
			t.Errorf("Description() = %q, want empty", got)
		}
	})
}

func TestSpecsBlock(t *testing.T) {
	t.Run("collects siblings until next heading", func(t *testing.T) {
		html := `<html><body>
<h2>Overview</h2><p>intro</p>
<h2>Specifications</h2>
<p>Motor: dual 1000W hub motors with serious torque</p>
<ul><li>Battery: 60V 21Ah removable</li></ul>
<h2>Reviews</h2><p>five stars</p>
</body></html>`
		block, ok := SpecsBlock(parseDoc(t, html), 12000)
		if !ok {
			t.Fatalf("expected a specs block")
		}
		if !strings.Contains(block, "Specifications") {
			t.Errorf("block missing heading: %q", block)
		}
		if !strings.Contains(block, "dual 1000W") || !strings.Contains(block, "60V 21Ah") {
			t.Errorf("block missing sibling content: %q", block)
		}
		if strings.Contains(block, "five stars") {
			t.Errorf("block leaked past next heading: %q", block)
		}
	})

	t.Run("feature heading matches", func(t *testing.T) {
		html := `<html><body><h3>Key Features</h3><p>Hydraulic brakes and a very long description of the drivetrain</p></body></html>`
		if _, ok := SpecsBlock(parseDoc(t, html), 12000); !ok {
			t.Fatalf("expected feature heading to match")
		}
	})

	t.Run("too short is dropped", func(t *testing.T) {
		html := `<html><body><h3>Specs</h3></body></html>`
		if block, ok := SpecsBlock(parseDoc(t, html), 12000); ok {
			t.Fatalf("expected no block, got %q", block)
		}
	})

	t.Run("no heading", func(t *testing.T) {
		html := `<html><body><p>nothing here</p></body></html>`
		if _, ok := SpecsBlock(parseDoc(t, html), 12000); ok {
			t.Fatalf("expected no block")
		}
	})

	t.Run("accumulation capped", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("<html><body><h2>Specifications</h2>")
		for i := 0; i < 100; i++ {
			b.WriteString("<p>")
			b.WriteString(strings.Repeat("x", 500))
			b.WriteString("</p>")
		}
		b.WriteString("</body></html>")
		block, ok := SpecsBlock(parseDoc(t, b.String()), 12000)
		if !ok {
			t.Fatalf("expected a specs block")
		}
		// one sibling may land after the threshold is crossed
		if len(block) > 13000 {
			t.Errorf("block length %d exceeds cap allowance", len(block))
		}
	})
}

func TestCleanHTMLText(t *testing.T) {
	input := "line one   \nline two\n\n\n\n<p>end</p>  "
	want := "line one\nline two\n<p>end</p>"
	if got := CleanHTMLText(input); got != want {
		t.Errorf("CleanHTMLText() = %q, want %q", got, want)
	}
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		vendor   string
		expected string
	}{
		{
			name:     "basic slug with vendor prefix",
			title:    "Falcon 60V Dual Motor",
			vendor:   "Philodo",
			expected: "philodo-falcon-60v-dual-motor",
		},
		{
			name:     "vendor already present",
			title:    "Philodo Forester 60V",
			vendor:   "Philodo",
			expected: "philodo-forester-60v",
		},
		{
			name:     "punctuation collapsed",
			title:    "Falcon!!! (60V) Fat Tire",
			vendor:   "Philodo",
			expected: "philodo-falcon-60v-fat-tire",
		},
		{
			name:     "existing hyphens survive",
			title:    "Falcon -- Fat Tire",
			vendor:   "Philodo",
			expected: "philodo-falcon----fat-tire",
		},
		{
			name:     "only punctuation",
			title:    "!!!",
			vendor:   "Philodo",
			expected: "philodo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Handle(tt.title, tt.vendor); got != tt.expected {
				t.Errorf("Handle(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestHandleShape(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]+$`)
	titles := []string{
		"Falcon 60V",
		"  Forester — Fat Tire!  ",
		"ÜBER bike ✓",
		"...",
		"H1000 / H2000",
	}
	for _, title := range titles {
		handle := Handle(title, "Philodo")
		if !valid.MatchString(handle) {
			t.Errorf("Handle(%q) = %q, contains invalid characters", title, handle)
		}
		if strings.HasPrefix(handle, "-") || strings.HasSuffix(handle, "-") {
			t.Errorf("Handle(%q) = %q, has leading/trailing hyphen", title, handle)
		}
		if !strings.Contains(handle, "philodo") {
			t.Errorf("Handle(%q) = %q, missing vendor", title, handle)
		}
	}
}

func TestValidateProduct(t *testing.T) {
	tests := []struct {
		name    string
		product *models.Product
		wantErr bool
	}{
		{
			name:    "valid",
			product: &models.Product{Handle: "philodo-falcon", Title: "Falcon"},
			wantErr: false,
		},
		{
			name:    "nil",
			product: nil,
			wantErr: true,
		},
		{
			name:    "missing handle",
			product: &models.Product{Title: "Falcon"},
			wantErr: true,
		},
		{
			name:    "missing title",
			product: &models.Product{Handle: "philodo-falcon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProduct(tt.product)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProduct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseProduct(t *testing.T) {
	cfg := config.DefaultConfig()
	html := `<html><head><title>Falcon | Philodo</title>
<script type="application/ld+json">{"@type":"Product","description":"Dual motor commuter","sku":"PH-FAL-60","offers":{"price":"1999.00","priceCurrency":"USD"}}</script>
</head><body>
<h1>Falcon 60V</h1>
<img src="https://cdn.example.com/falcon-front.jpg">
<img src="https://cdn.example.com/logo.png">
<img src="https://cdn.example.com/falcon-side.jpg">
<h2>Specifications</h2>
<ul><li>Motor: dual 1000W</li><li>Battery: 60V 21Ah</li></ul>
</body></html>`

	product := ParseProduct(parseDoc(t, html), "https://example.com/products/falcon", cfg)

	if product.Title != "Falcon 60V" {
		t.Errorf("Title = %q", product.Title)
	}
	if product.Handle != "philodo-falcon-60v" {
		t.Errorf("Handle = %q", product.Handle)
	}
	if !strings.Contains(product.BodyHTML, "<p>Dual motor commuter</p>") {
		t.Errorf("BodyHTML missing description: %q", product.BodyHTML)
	}
	if !strings.Contains(product.BodyHTML, "<h3>Specifications</h3>") {
		t.Errorf("BodyHTML missing specs subsection: %q", product.BodyHTML)
	}
	if product.Price != "1999.00" {
		t.Errorf("Price = %q", product.Price)
	}
	if product.SKU != "PH-FAL-60" {
		t.Errorf("SKU = %q", product.SKU)
	}
	if len(product.Images) != 2 {
		t.Fatalf("Images = %v, want 2 entries", product.Images)
	}
	if product.Images[0] != "https://cdn.example.com/falcon-front.jpg" {
		t.Errorf("Images[0] = %q", product.Images[0])
	}
	if product.Vendor != "Philodo" || !product.Published || product.Option1Value != "Default Title" {
		t.Errorf("defaults not applied: %+v", product)
	}
	if product.CompareAtPrice != "" || product.Grams != "" {
		t.Errorf("absent fields should stay empty: %+v", product)
	}
}

func TestParseProductDegradesToDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	product := ParseProduct(parseDoc(t, "<html><body></body></html>"), "https://example.com/x", cfg)

	if product.Title != cfg.DefaultTitle {
		t.Errorf("Title = %q, want default", product.Title)
	}
	if product.BodyHTML != cfg.DefaultDescription {
		t.Errorf("BodyHTML = %q, want default", product.BodyHTML)
	}
	if product.Price != "" || product.SKU != "" {
		t.Errorf("Price/SKU should be empty, got %q/%q", product.Price, product.SKU)
	}
	if len(product.Images) != 0 {
		t.Errorf("Images = %v, want none", product.Images)
	}
}
