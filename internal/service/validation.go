package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup

	// ErrInvalidEmail is returned for addresses that fail the syntax or MX checks.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidStatus is returned for statuses outside the lead pipeline.
	ErrInvalidStatus = errors.New("invalid lead status")
	// ErrCompanyRequired is returned when a lead has no company name.
	ErrCompanyRequired = errors.New("company is required")
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	mxLookupTimeout    = 3 * time.Second
)

var allowedSocialDomains = map[string]string{
	"linkedin.com": "linkedin",
	"twitter.com":  "twitter",
	"x.com":        "twitter",
	"facebook.com": "facebook",
}

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// LeadNormalizer cleans contact fields before a lead is written.
type LeadNormalizer struct {
	DefaultRegion string
	dnsResolver   DNSResolver
}

// NormalizerOption configures optional dependencies.
type NormalizerOption func(*LeadNormalizer)

// WithDNSResolver enables MX verification of email domains.
func WithDNSResolver(resolver DNSResolver) NormalizerOption {
	return func(n *LeadNormalizer) {
		n.dnsResolver = resolver
	}
}

// WithSystemResolver enables MX verification through the host resolver.
func WithSystemResolver() NormalizerOption {
	return WithDNSResolver(net.DefaultResolver)
}

// NewLeadNormalizer builds a normalizer; phones without a country code are read in defaultRegion.
func NewLeadNormalizer(defaultRegion string, opts ...NormalizerOption) *LeadNormalizer {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	n := &LeadNormalizer{DefaultRegion: region}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize rewrites the non-nil fields of input in place.
// Contacts and socials of a scraped record fill email, phone and linkedin when those are absent.
func (n *LeadNormalizer) Normalize(ctx context.Context, input *dto.LeadInput) error {
	if input.Email == nil && input.ContactInfo != nil {
		if email := n.firstValidEmail(ctx, input.ContactInfo.Emails); email != "" {
			input.Email = &email
		}
	}
	if input.Phone == nil && input.ContactInfo != nil && len(input.ContactInfo.Phones) > 0 {
		phone := input.ContactInfo.Phones[0]
		input.Phone = &phone
	}
	if input.LinkedIn == nil {
		if link, ok := input.SocialLinks["linkedin"]; ok && link != "" {
			input.LinkedIn = &link
		}
	}
	input.ContactInfo = nil
	input.SocialLinks = nil

	if input.Company != nil {
		trimmed := strings.TrimSpace(*input.Company)
		if trimmed == "" {
			return ErrCompanyRequired
		}
		input.Company = &trimmed
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !entity.ValidLeadStatus(status) {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *input.Status)
		}
		input.Status = &status
	}
	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		email, err := n.NormalizeEmail(ctx, *input.Email)
		if err != nil {
			return err
		}
		input.Email = &email
	}
	if input.Phone != nil {
		phone := n.NormalizePhone(*input.Phone)
		input.Phone = &phone
	}
	if input.Website != nil {
		website := NormalizeWebURL(*input.Website)
		input.Website = &website
	}
	if input.LinkedIn != nil {
		linkedin := NormalizeWebURL(*input.LinkedIn)
		if linkedin != "" {
			if u, err := url.Parse(linkedin); err != nil || socialPlatform(u.Hostname()) != "linkedin" {
				linkedin = ""
			}
		}
		input.LinkedIn = &linkedin
	}
	return nil
}

// NormalizeEmail lowercases raw and checks its syntax, IDNA domain and, when enabled, MX records.
func (n *LeadNormalizer) NormalizeEmail(ctx context.Context, raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !isDomainValid(domain) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}
	if n.dnsResolver != nil && !n.hasMXRecord(ctx, asciiDomain) {
		return "", fmt.Errorf("%w: no mail exchanger for %s", ErrInvalidEmail, asciiDomain)
	}
	return email, nil
}

// NormalizePhone formats raw as E.164 when it parses as a valid number; otherwise it returns raw trimmed.
func (n *LeadNormalizer) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, n.DefaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func (n *LeadNormalizer) firstValidEmail(ctx context.Context, emails []string) string {
	for _, raw := range emails {
		if email, err := n.NormalizeEmail(ctx, raw); err == nil {
			return email
		}
	}
	return ""
}

func (n *LeadNormalizer) hasMXRecord(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := n.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

// NormalizeWebURL defaults the scheme to https, converts the host to its ASCII form and strips utm_* parameters.
// Values that do not parse as a URL with a host are returned trimmed.
func NormalizeWebURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := sanitizeURL(raw)
	if err != nil {
		return raw
	}
	stripTracking(u)
	return u.String()
}

func sanitizeURL(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	host, err := idnaProfile.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}
	if port := u.Port(); port != "" {
		host = net.JoinHostPort(host, port)
	}
	u.Host = host
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	return u, nil
}

func stripTracking(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func socialPlatform(host string) string {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	for domain, platform := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform
		}
	}
	return ""
}

func isDomainValid(domain string) bool {
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
