package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	descriptionLimit = 200
	maxProducts      = 5
	defaultIndustry  = "Technology"
	defaultBizType   = "B2B"
)

type industry struct {
	name     string
	keywords []string
}

// industries is checked in order; the first category with any keyword present wins.
// Matching runs on lower-cased text, so the "IT" entry never fires.
var industries = []industry{
	{"Technology", []string{"software", "tech", "digital", "IT", "computer", "app", "platform"}},
	{"Healthcare", []string{"health", "medical", "hospital", "clinic", "pharmaceutical"}},
	{"Finance", []string{"financial", "banking", "investment", "fintech", "payment"}},
	{"Education", []string{"education", "learning", "school", "university", "training"}},
	{"Retail", []string{"retail", "ecommerce", "shopping", "store", "marketplace"}},
	{"Manufacturing", []string{"manufacturing", "production", "industrial", "factory"}},
	{"Consulting", []string{"consulting", "advisory", "strategy", "management"}},
	{"Marketing", []string{"marketing", "advertising", "promotion", "branding"}},
}

// Industries lists the category vocabulary in match order.
func Industries() []string {
	out := make([]string, 0, len(industries))
	for _, ind := range industries {
		out = append(out, ind.name)
	}
	return out
}

// CompanyName picks <meta name="company">, og:title, the first <h1>, then the
// first segment of <title> split on "|" and "-".
func CompanyName(doc *Document) string {
	if v := attr(doc.Find(`meta[name="company"]`).First(), "content"); v != "" {
		return v
	}
	if v := attr(doc.Find(`meta[property="og:title"]`).First(), "content"); v != "" {
		return v
	}
	if v := strings.TrimSpace(doc.Find("h1").First().Text()); v != "" {
		return v
	}
	return TitleSegment(doc.Find("title").First().Text())
}

// TitleSegment keeps the part of a page title before the first "|", then before the first "-".
func TitleSegment(title string) string {
	title, _, _ = strings.Cut(title, "|")
	title, _, _ = strings.Cut(title, "-")
	return strings.TrimSpace(title)
}

// Description returns the meta description, og:description or the first paragraph,
// capped at 200 characters.
func Description(doc *Document) string {
	if v := attr(doc.Find(`meta[name="description"]`).First(), "content"); v != "" {
		return truncateRunes(v, descriptionLimit)
	}
	if v := attr(doc.Find(`meta[property="og:description"]`).First(), "content"); v != "" {
		return truncateRunes(v, descriptionLimit)
	}
	return truncateRunes(strings.TrimSpace(doc.Find("p").First().Text()), descriptionLimit)
}

// Industry returns the first category whose keywords appear in the body text.
func Industry(doc *Document) string {
	text := doc.LowerText()
	for _, ind := range industries {
		for _, kw := range ind.keywords {
			if strings.Contains(text, kw) {
				return ind.name
			}
		}
	}
	return defaultIndustry
}

// BusinessType classifies the page as SaaS, B2B, B2C or E-commerce. Defaults to B2B.
func BusinessType(doc *Document) string {
	text := doc.LowerText()
	switch {
	case strings.Contains(text, "saas") || strings.Contains(text, "software as a service"):
		return "SaaS"
	case strings.Contains(text, "b2b"):
		return "B2B"
	case strings.Contains(text, "b2c"):
		return "B2C"
	case strings.Contains(text, "ecommerce") || strings.Contains(text, "e-commerce"):
		return "E-commerce"
	default:
		return defaultBizType
	}
}

// ProductsServices collects up to five h2/h3 texts longer than 3 and shorter than 50 characters.
func ProductsServices(doc *Document) []string {
	products := make([]string, 0, maxProducts)
	doc.Find("h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		n := utf8.RuneCountInString(text)
		if n > 3 && n < 50 && !strings.Contains(text, "©") {
			products = append(products, text)
		}
		return len(products) < maxProducts
	})
	return products
}
