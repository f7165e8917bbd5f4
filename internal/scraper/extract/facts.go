package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	maxEmails = 3
	maxPhones = 2
)

var (
	employeePattern = regexp.MustCompile(`(?i)(\d+)[-,\s]?(\d+)?\s*(employees?|staff|people|team)`)
	revenuePattern  = regexp.MustCompile(`(?i)\$(\d+(?:\.\d+)?)[MBK]?[-,\s]?(\$(\d+(?:\.\d+)?)[MBK]?)?`)
	foundedPattern  = regexp.MustCompile(`(?i)(?:founded|established|since)\s*(\d{4})`)

	streetPattern = regexp.MustCompile(`(?i)\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Circle|Cir|Court|Ct)`)
	cityPattern   = regexp.MustCompile(`(?i)\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Circle|Cir|Court|Ct),?\s*([A-Za-z\s]+),?\s*[A-Z]{2}`)
	statePattern  = regexp.MustCompile(`(?i)([A-Z]{2})\s*\d{5}`)
	zipPattern    = regexp.MustCompile(`\d{5}(?:-\d{4})?`)

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
)

// ContactInfo holds the deduplicated emails and phones found in the body text.
type ContactInfo struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// EmployeeCount buckets the upper bound of the first "<n>[-<m>] employees" mention.
func EmployeeCount(doc *Document) string {
	m := employeePattern.FindStringSubmatch(doc.Text())
	if m == nil {
		return Unknown
	}
	upper := m[1]
	if m[2] != "" {
		upper = m[2]
	}
	n, err := strconv.Atoi(upper)
	if err != nil {
		// only overflow gets here; the pattern guarantees digits
		return "1000+"
	}
	return employeeBucket(n)
}

func employeeBucket(n int) string {
	switch {
	case n < 50:
		return "1-50"
	case n < 200:
		return "50-200"
	case n < 500:
		return "200-500"
	case n < 1000:
		return "500-1000"
	default:
		return "1000+"
	}
}

// Revenue returns the first currency token or range, verbatim.
func Revenue(doc *Document) string {
	if m := revenuePattern.FindString(doc.Text()); m != "" {
		return m
	}
	return Unknown
}

// YearFounded returns the year following "founded", "established" or "since".
func YearFounded(doc *Document) string {
	if m := foundedPattern.FindStringSubmatch(doc.Text()); m != nil {
		return m[1]
	}
	return Unknown
}

// Street returns the first "<number> <words> <street suffix>" run.
func Street(doc *Document) string {
	return streetPattern.FindString(doc.Text())
}

// City returns the words following a street match and preceding a two-letter code.
func City(doc *Document) string {
	if m := cityPattern.FindStringSubmatch(doc.Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// State returns the two letters preceding the first five-digit run.
func State(doc *Document) string {
	if m := statePattern.FindStringSubmatch(doc.Text()); m != nil {
		return m[1]
	}
	return ""
}

// ZipCode returns the first five-digit (optionally ZIP+4) token.
func ZipCode(doc *Document) string {
	return zipPattern.FindString(doc.Text())
}

// Contacts scans the body text for up to 3 distinct emails and 2 distinct phone numbers.
func Contacts(doc *Document) ContactInfo {
	text := doc.Text()
	return ContactInfo{
		Emails: firstDistinct(emailPattern.FindAllString(text, -1), maxEmails),
		Phones: firstDistinct(phonePattern.FindAllString(text, -1), maxPhones),
	}
}

func firstDistinct(values []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

var socialSelectors = []struct {
	platform string
	selector string
}{
	{"linkedin", `a[href*="linkedin.com"]`},
	{"twitter", `a[href*="twitter.com"], a[href*="x.com"]`},
	{"facebook", `a[href*="facebook.com"]`},
}

// SocialLinks maps linkedin/twitter/facebook to the first matching anchor href.
// Platforms without a link are absent.
func SocialLinks(doc *Document) map[string]string {
	links := make(map[string]string, len(socialSelectors))
	for _, s := range socialSelectors {
		if href := attr(doc.Find(s.selector).First(), "href"); href != "" {
			links[s.platform] = href
		}
	}
	return links
}
