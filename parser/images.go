package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Substrings that mark an image as chrome rather than product photography.
var imageSkipTokens = []string{"logo", "icon", "spinner", "placeholder", "svg"}

// Images collects product image URLs from <img> elements: src, data-src or
// data-original, whichever is present first. URLs containing a skip token
// are dropped. When a srcset is present the last listed candidate replaces
// the chosen URL. The result is deduplicated in first-seen order and capped
// at max entries.
func Images(doc *goquery.Document, max int) []string {
	seen := make(map[string]struct{})
	var urls []string

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := firstAttr(img, "src", "data-src", "data-original")
		if src == "" {
			return
		}
		lower := strings.ToLower(src)
		for _, token := range imageSkipTokens {
			if strings.Contains(lower, token) {
				return
			}
		}
		if srcset, ok := img.Attr("srcset"); ok {
			if candidate := lastSrcsetCandidate(srcset); candidate != "" {
				src = candidate
			}
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		urls = append(urls, src)
	})

	if len(urls) > max {
		urls = urls[:max]
	}
	return urls
}

func firstAttr(s *goquery.Selection, names ...string) string {
	for _, name := range names {
		if value, ok := s.Attr(name); ok && value != "" {
			return value
		}
	}
	return ""
}

// lastSrcsetCandidate returns the URL token of the last candidate in a
// srcset attribute, treated as the highest-resolution variant.
func lastSrcsetCandidate(srcset string) string {
	last := ""
	for _, candidate := range strings.Split(srcset, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if fields := strings.Fields(candidate); len(fields) > 0 {
			last = fields[0]
		}
	}
	return last
}
