package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const companyPage = `<html>
<head>
<title>Acme Widgets | Home</title>
<meta name="company" content="Acme Corp">
<meta property="og:title" content="Acme OG">
<meta name="description" content="Acme builds widgets">
</head>
<body>
<h1>Welcome to Acme</h1>
<h2>Widget Platform</h2>
<h3>API</h3>
<h3>Consulting Services</h3>
<p>We are a SaaS company with 150 employees. Founded 1999.</p>
<p>Contact sales@acme.com or support@acme.com or sales@acme.com. Call (555) 123-4567.</p>
<p>Annual revenue of $5M-$10M.</p>
<p>Visit us at 100 Main Street, Springfield, IL 62701</p>
<a href="https://linkedin.com/company/acme">LinkedIn</a>
<a href="https://x.com/acme">X</a>
<a href="https://twitter.com/acme-old">Twitter</a>
<a href="https://linkedin.com/company/other">Other</a>
</body>
</html>`

func TestExtractorsOnCompanyPage(t *testing.T) {
	doc := Parse(companyPage)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"company", CompanyName(doc), "Acme Corp"},
		{"description", Description(doc), "Acme builds widgets"},
		{"industry", Industry(doc), "Technology"},
		{"business type", BusinessType(doc), "SaaS"},
		{"employees", EmployeeCount(doc), "50-200"},
		{"revenue", Revenue(doc), "$5M-$10M"},
		{"founded", YearFounded(doc), "1999"},
		{"street", Street(doc), "100 Main Street"},
		{"city", City(doc), "Springfield"},
		{"state", State(doc), "IL"},
		{"zip", ZipCode(doc), "62701"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: expected %q, got %q", c.name, c.want, c.got)
		}
	}

	if diff := cmp.Diff([]string{"Widget Platform", "Consulting Services"}, ProductsServices(doc)); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}

	wantContacts := ContactInfo{
		Emails: []string{"sales@acme.com", "support@acme.com"},
		Phones: []string{"(555) 123-4567"},
	}
	if diff := cmp.Diff(wantContacts, Contacts(doc)); diff != "" {
		t.Fatalf("contacts mismatch (-want +got):\n%s", diff)
	}

	wantSocial := map[string]string{
		"linkedin": "https://linkedin.com/company/acme",
		"twitter":  "https://x.com/acme",
	}
	if diff := cmp.Diff(wantSocial, SocialLinks(doc)); diff != "" {
		t.Fatalf("social links mismatch (-want +got):\n%s", diff)
	}

	nbsp := Parse("<html><body><p>We are 150&nbsp;employees strong. Founded&nbsp;2012. Call (555)&nbsp;123-4567</p></body></html>")
	if got := EmployeeCount(nbsp); got != "50-200" {
		t.Fatalf("nbsp employees: got %q", got)
	}
	if got := YearFounded(nbsp); got != "2012" {
		t.Fatalf("nbsp founded: got %q", got)
	}
	if got := Contacts(nbsp).Phones; len(got) != 1 || got[0] != "(555) 123-4567" {
		t.Fatalf("nbsp phones: got %v", got)
	}
	address := Parse("<html><body><p>42&nbsp;Oak&nbsp;Avenue, Austin, TX&nbsp;73301</p></body></html>")
	if got := Street(address); got != "42 Oak Avenue" {
		t.Fatalf("nbsp street: got %q", got)
	}
	if got := State(address); got != "TX" {
		t.Fatalf("nbsp state: got %q", got)
	}
}

func TestCompanyNamePriority(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{"meta company beats h1", `<html><head><meta name="company" content="Meta Name"></head><body><h1>Heading Name</h1></body></html>`, "Meta Name"},
		{"og title beats h1", `<html><head><meta property="og:title" content="OG Name"></head><body><h1>Heading Name</h1></body></html>`, "OG Name"},
		{"h1 beats title", `<html><head><title>Title Name</title></head><body><h1> Heading Name </h1></body></html>`, "Heading Name"},
		{"title pipe", `<html><head><title>Acme Widgets | Home</title></head><body></body></html>`, "Acme Widgets"},
		{"title dash after pipe", `<html><head><title>Acme - Widgets | Home</title></head><body></body></html>`, "Acme"},
		{"nothing", `<html><body><p>hi</p></body></html>`, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CompanyName(Parse(c.html)); got != c.want {
				t.Fatalf("expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestEmployeeBuckets(t *testing.T) {
	cases := map[string]string{
		"We have 150 employees":                 "50-200",
		"Over 1000 employees worldwide":         "1000+",
		"A group of 10-49 staff":                "1-50",
		"About 250 people":                      "200-500",
		"Nearly 600 employees":                  "500-1000",
		"99999999999999999999999 employees":     "1000+",
		"We are 150&nbsp;employees strong":      "50-200",
		"We bake bread and nothing else counts": Unknown,
	}
	for text, want := range cases {
		doc := Parse("<html><body><p>" + text + "</p></body></html>")
		if got := EmployeeCount(doc); got != want {
			t.Fatalf("%q: expected %q, got %q", text, want, got)
		}
	}
}

func TestIndustry(t *testing.T) {
	cases := map[string]string{
		"Hello world. We bake bread.":   "Technology",
		"Our clinic serves patients.":   "Healthcare",
		"Trusted banking partner.":      "Finance",
		"A new kind of school.":         "Education",
		"Family owned factory.":         "Manufacturing",
		"Creative branding for brands.": "Marketing",
	}
	for text, want := range cases {
		if got := Industry(Parse("<html><body>" + text + "</body></html>")); got != want {
			t.Fatalf("%q: expected %q, got %q", text, want, got)
		}
	}
}

func TestBusinessType(t *testing.T) {
	cases := map[string]string{
		"Software as a Service for teams": "SaaS",
		"We sell B2C goods":               "B2C",
		"Your e-commerce shop":            "E-commerce",
		"We bake bread":                   "B2B",
	}
	for text, want := range cases {
		if got := BusinessType(Parse("<body>" + text + "</body>")); got != want {
			t.Fatalf("%q: expected %q, got %q", text, want, got)
		}
	}
}

func TestDescriptionFallbackTruncates(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := Description(Parse("<html><body><p>" + long + "</p><p>second</p></body></html>"))
	if got != strings.Repeat("é", 200) {
		t.Fatalf("expected 200 characters, got %d", len([]rune(got)))
	}
}

func TestSentinelsOnEmptyDocument(t *testing.T) {
	for _, raw := range []string{"", "<<<>>>", "<html><body></body></html>", "<div><p>unclosed"} {
		doc := Parse(raw)
		if EmployeeCount(doc) != Unknown || Revenue(doc) != Unknown || YearFounded(doc) != Unknown {
			t.Fatalf("%q: expected Unknown sentinels", raw)
		}
		if Industry(doc) != "Technology" || BusinessType(doc) != "B2B" {
			t.Fatalf("%q: expected defaults", raw)
		}
		contacts := Contacts(doc)
		if contacts.Emails == nil || contacts.Phones == nil || len(contacts.Emails) != 0 || len(contacts.Phones) != 0 {
			t.Fatalf("%q: expected empty non-nil contacts, got %+v", raw, contacts)
		}
		if links := SocialLinks(doc); links == nil || len(links) != 0 {
			t.Fatalf("%q: expected empty social links, got %v", raw, links)
		}
		if products := ProductsServices(doc); products == nil || len(products) != 0 {
			t.Fatalf("%q: expected empty products, got %v", raw, products)
		}
		if Street(doc) != "" || City(doc) != "" || State(doc) != "" || ZipCode(doc) != "" {
			t.Fatalf("%q: expected empty address parts", raw)
		}
	}
}

func TestProductsCapAndCopyright(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><h2>© 2024 Acme</h2>")
	for _, h := range []string{"One product", "Two product", "Three product", "Four product", "Five product", "Six product"} {
		b.WriteString("<h3>" + h + "</h3>")
	}
	b.WriteString("</body></html>")

	want := []string{"One product", "Two product", "Three product", "Four product", "Five product"}
	if diff := cmp.Diff(want, ProductsServices(Parse(b.String()))); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractorsAreIdempotent(t *testing.T) {
	doc := Parse(companyPage)
	run := func() []any {
		return []any{
			CompanyName(doc), Description(doc), Industry(doc), BusinessType(doc),
			EmployeeCount(doc), Revenue(doc), YearFounded(doc), Street(doc), City(doc),
			State(doc), ZipCode(doc), ProductsServices(doc), Contacts(doc), SocialLinks(doc),
		}
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
}

func TestSearchHits(t *testing.T) {
	page := `<html><body>
<div class="g"><a href="https://acme.com"><h3>Acme | Widgets</h3></a><div class="VwiC3b"> Widgets for all </div></div>
<div class="g"><a href="https://www.google.com/maps"><h3>Maps</h3></a></div>
<div class="g"><a href="/relative"><h3>No link</h3></a></div>
<div class="g"><a href="https://beta.io"><h3>Beta - Home</h3></a></div>
</body></html>`
	doc := Parse(page)

	want := []SearchHit{
		{Title: "Acme | Widgets", Link: "https://acme.com", Snippet: "Widgets for all"},
		{Title: "Beta - Home", Link: "https://beta.io"},
	}
	if diff := cmp.Diff(want, SearchHits(doc, 10)); diff != "" {
		t.Fatalf("hits mismatch (-want +got):\n%s", diff)
	}
	if got := SearchHits(doc, 1); len(got) != 1 || got[0].Link != "https://acme.com" {
		t.Fatalf("expected limit to cap hits, got %+v", got)
	}
}

func TestLinkedInProfile(t *testing.T) {
	page := `<html><body>
<h1 class="text-heading-xlarge"> Jordan Lee </h1>
<div class="text-body-medium break-words">Head of Growth</div>
<span class="text-body-small inline t-black--light break-words">Acme Corp</span>
<span class="text-body-small inline t-black--light break-words">Austin, Texas</span>
<span class="t-bold">500+</span>
<section class="pv-about-section"><p class="pv-about__summary-text">Builds teams.</p></section>
</body></html>`

	want := Profile{
		Name:        "Jordan Lee",
		Title:       "Head of Growth",
		Company:     "Acme Corp",
		Location:    "Austin, Texas",
		Connections: "500+",
		Summary:     "Builds teams.",
	}
	if diff := cmp.Diff(want, LinkedInProfile(Parse(page))); diff != "" {
		t.Fatalf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdown(t *testing.T) {
	md := Parse("<html><body><h1>Acme</h1><p>We build widgets.</p></body></html>").Markdown()
	if !strings.Contains(md, "# Acme") || !strings.Contains(md, "We build widgets.") {
		t.Fatalf("unexpected markdown %q", md)
	}
}
