package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/llm"
	"github.com/octobees/leads-scraper/internal/scraper/extract"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
)

const (
	defaultEmailType       = "cold-outreach"
	defaultFollowUpType    = "gentle-reminder"
	defaultMessageType     = "connection-request"
	defaultVariationCount  = 3
	maxVariationCount      = 10
	websiteExcerptMaxRunes = 2000

	emailSystemPrompt    = "You are an expert sales copywriter specializing in B2B outreach emails. Create compelling, personalized emails that drive engagement and conversions."
	followUpSystemPrompt = "You are an expert sales copywriter specializing in follow-up emails. Create compelling follow-up emails that maintain engagement and drive conversions."
	linkedInSystemPrompt = "You are an expert LinkedIn networking specialist. Create compelling LinkedIn messages that build professional relationships."
	revenueSystemPrompt  = "You are a business analyst expert at estimating company revenues based on available data points."
)

var (
	ErrOutreachUnavailable   = errors.New("ai provider not configured")
	ErrLeadDataRequired      = errors.New("lead data is required")
	ErrPreviousEmailRequired = errors.New("lead data and previous email are required")
	ErrCompanyDataRequired   = errors.New("company data is required")
	ErrInvalidVariationCount = fmt.Errorf("variation count must be between 1 and %d", maxVariationCount)
	placeholderPattern       = regexp.MustCompile(`\{(\w+)\}`)
	subjectLinePattern       = regexp.MustCompile(`(?i)subject:.*\n`)
	subjectPrefixPattern     = regexp.MustCompile(`(?i)subject:\s*`)
	fallbackRevenueEstimate  = dto.RevenueEstimate{
		MinRevenue: 1000000,
		MaxRevenue: 5000000,
		Confidence: "Medium",
		Reasoning:  "Based on industry standards and company size",
		Factors:    []string{"Industry", "Employee count", "Location"},
	}
)

// OutreachService writes outreach copy with a language model and bills it in credits.
type OutreachService struct {
	provider llm.Provider
	credits  *CreditService
	fetcher  fetch.Fetcher
	logger   *zap.Logger
}

// OutreachOption configures an OutreachService.
type OutreachOption func(*OutreachService)

// WithPageFetcher lets revenue estimates read the company website for context.
func WithPageFetcher(f fetch.Fetcher) OutreachOption {
	return func(s *OutreachService) {
		s.fetcher = f
	}
}

// NewOutreachService builds an OutreachService. A nil provider makes every call fail with ErrOutreachUnavailable.
func NewOutreachService(provider llm.Provider, credits *CreditService, logger *zap.Logger, opts ...OutreachOption) *OutreachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OutreachService{provider: provider, credits: credits, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Email generates one personalised email for a lead.
func (s *OutreachService) Email(ctx context.Context, userID uuid.UUID, req dto.EmailRequest) (dto.EmailResponse, error) {
	if req.LeadData == nil {
		return dto.EmailResponse{}, ErrLeadDataRequired
	}
	if s.provider == nil {
		return dto.EmailResponse{}, ErrOutreachUnavailable
	}
	if _, err := s.credits.Require(ctx, userID, CostEmail); err != nil {
		return dto.EmailResponse{}, err
	}

	email, err := s.generateEmail(ctx, req.LeadData, emailTypeOrDefault(req.EmailType), req.CustomPrompt)
	if err != nil {
		return dto.EmailResponse{}, err
	}
	remaining, err := s.credits.Debit(ctx, userID, CostEmail)
	if err != nil {
		return dto.EmailResponse{}, err
	}
	return dto.EmailResponse{GeneratedEmail: email, CreditsUsed: CostEmail, RemainingCredits: remaining}, nil
}

// Variations generates count alternative emails, one model call each, billed count credits.
func (s *OutreachService) Variations(ctx context.Context, userID uuid.UUID, req dto.EmailVariationsRequest) (dto.EmailVariationsResponse, error) {
	if req.LeadData == nil {
		return dto.EmailVariationsResponse{}, ErrLeadDataRequired
	}
	count := req.Count
	if count == 0 {
		count = defaultVariationCount
	}
	if count < 1 || count > maxVariationCount {
		return dto.EmailVariationsResponse{}, ErrInvalidVariationCount
	}
	if s.provider == nil {
		return dto.EmailVariationsResponse{}, ErrOutreachUnavailable
	}
	if _, err := s.credits.Require(ctx, userID, count); err != nil {
		return dto.EmailVariationsResponse{}, err
	}

	emailType := emailTypeOrDefault(req.EmailType)
	variations := make([]dto.GeneratedEmail, 0, count)
	for i := 0; i < count; i++ {
		email, err := s.generateEmail(ctx, req.LeadData, emailType, "")
		if err != nil {
			return dto.EmailVariationsResponse{}, err
		}
		email.Variation = i + 1
		variations = append(variations, email)
	}

	remaining, err := s.credits.Debit(ctx, userID, count)
	if err != nil {
		return dto.EmailVariationsResponse{}, err
	}
	return dto.EmailVariationsResponse{Variations: variations, CreditsUsed: count, RemainingCredits: remaining}, nil
}

// FollowUp writes a follow-up to a previously sent email.
func (s *OutreachService) FollowUp(ctx context.Context, userID uuid.UUID, req dto.FollowUpRequest) (dto.EmailResponse, error) {
	if req.LeadData == nil || req.PreviousEmail == nil {
		return dto.EmailResponse{}, ErrPreviousEmailRequired
	}
	if s.provider == nil {
		return dto.EmailResponse{}, ErrOutreachUnavailable
	}
	if _, err := s.credits.Require(ctx, userID, CostFollowUp); err != nil {
		return dto.EmailResponse{}, err
	}

	followUpType := req.FollowUpType
	if followUpType == "" {
		followUpType = defaultFollowUpType
	}
	content, err := s.provider.Complete(ctx, llm.Request{
		System:      followUpSystemPrompt,
		Prompt:      buildFollowUpPrompt(req.LeadData, req.PreviousEmail, followUpType),
		MaxTokens:   400,
		Temperature: 0.7,
	})
	if err != nil {
		return dto.EmailResponse{}, fmt.Errorf("follow-up email generation: %w", err)
	}
	email := splitEmail(content, "Following up - "+req.LeadData.Company)
	email.FollowUpType = followUpType

	remaining, err := s.credits.Debit(ctx, userID, CostFollowUp)
	if err != nil {
		return dto.EmailResponse{}, err
	}
	return dto.EmailResponse{GeneratedEmail: email, CreditsUsed: CostFollowUp, RemainingCredits: remaining}, nil
}

// LinkedInMessage writes a short LinkedIn message.
func (s *OutreachService) LinkedInMessage(ctx context.Context, userID uuid.UUID, req dto.LinkedInMessageRequest) (dto.LinkedInMessageResponse, error) {
	if req.LeadData == nil {
		return dto.LinkedInMessageResponse{}, ErrLeadDataRequired
	}
	if s.provider == nil {
		return dto.LinkedInMessageResponse{}, ErrOutreachUnavailable
	}
	if _, err := s.credits.Require(ctx, userID, CostLinkedInMessage); err != nil {
		return dto.LinkedInMessageResponse{}, err
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = defaultMessageType
	}
	content, err := s.provider.Complete(ctx, llm.Request{
		System:      linkedInSystemPrompt,
		Prompt:      buildLinkedInPrompt(req.LeadData, messageType),
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return dto.LinkedInMessageResponse{}, fmt.Errorf("linkedin message generation: %w", err)
	}
	message := strings.TrimSpace(content)

	remaining, err := s.credits.Debit(ctx, userID, CostLinkedInMessage)
	if err != nil {
		return dto.LinkedInMessageResponse{}, err
	}
	return dto.LinkedInMessageResponse{
		LinkedInMessage: dto.LinkedInMessage{
			Message:        message,
			CharacterCount: len([]rune(message)),
			MessageType:    messageType,
		},
		CreditsUsed:      CostLinkedInMessage,
		RemainingCredits: remaining,
	}, nil
}

// RevenueEstimate asks the model for a revenue range. It is free and falls back to a fixed estimate
// when the answer cannot be read as JSON.
func (s *OutreachService) RevenueEstimate(ctx context.Context, req dto.RevenueEstimateRequest) (dto.RevenueEstimate, error) {
	if req.CompanyData == nil {
		return dto.RevenueEstimate{}, ErrCompanyDataRequired
	}
	if s.provider == nil {
		return dto.RevenueEstimate{}, ErrOutreachUnavailable
	}

	prompt := buildRevenuePrompt(req.CompanyData, s.websiteExcerpt(ctx, req.CompanyData.Website))
	content, err := s.provider.Complete(ctx, llm.Request{
		System:      revenueSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		return dto.RevenueEstimate{}, fmt.Errorf("revenue estimation: %w", err)
	}

	estimate, err := parseRevenueEstimate(content)
	if err != nil {
		s.logger.Warn("revenue estimate unreadable, using fallback", zap.Error(err))
		return fallbackEstimate(), nil
	}
	return estimate, nil
}

func (s *OutreachService) generateEmail(ctx context.Context, lead *dto.LeadContext, emailType, customPrompt string) (dto.GeneratedEmail, error) {
	content, err := s.provider.Complete(ctx, llm.Request{
		System:      emailSystemPrompt,
		Prompt:      buildEmailPrompt(lead, emailType, customPrompt),
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return dto.GeneratedEmail{}, fmt.Errorf("email generation: %w", err)
	}
	email := splitEmail(content, "Quick question about "+lead.Company)
	email.PersonalizationScore = PersonalizationScore(email.Body, lead)
	return email, nil
}

// websiteExcerpt renders the company site as markdown; any failure just omits the context.
func (s *OutreachService) websiteExcerpt(ctx context.Context, website string) string {
	if s.fetcher == nil || strings.TrimSpace(website) == "" {
		return ""
	}
	url := fetch.NormalizeURL(website)
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("website context unavailable", zap.String("url", url), zap.Error(err))
		return ""
	}
	markdown := strings.TrimSpace(extract.Parse(html).Markdown())
	if runes := []rune(markdown); len(runes) > websiteExcerptMaxRunes {
		markdown = string(runes[:websiteExcerptMaxRunes])
	}
	return markdown
}

// splitEmail separates a "Subject:" line from the body of a model answer.
func splitEmail(content, defaultSubject string) dto.GeneratedEmail {
	subject := ""
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(strings.ToLower(line), "subject:") {
			loc := subjectPrefixPattern.FindStringIndex(line)
			subject = strings.TrimSpace(line[:loc[0]] + line[loc[1]:])
			break
		}
	}
	if subject == "" {
		subject = defaultSubject
	}

	body := content
	if loc := subjectLinePattern.FindStringIndex(body); loc != nil {
		body = body[:loc[0]] + body[loc[1]:]
	}
	body = strings.TrimSpace(body)

	return dto.GeneratedEmail{
		Subject:   subject,
		Body:      body,
		WordCount: len(strings.Split(body, " ")),
	}
}

// PersonalizationScore rewards a body that mentions the lead's own details, capped at 100.
func PersonalizationScore(body string, lead *dto.LeadContext) int {
	lower := strings.ToLower(body)
	score := 0
	if mentions(lower, strings.ToLower(lead.Company)) {
		score += 30
	}
	if mentions(lower, strings.ToLower(lead.Industry)) {
		score += 25
	}
	if mentions(lower, strings.ToLower(lead.City)) {
		score += 20
	}
	if mentions(body, lead.Website) {
		score += 15
	}
	if mentions(body, lead.EmployeeCount) {
		score += 10
	}
	return min(score, 100)
}

func mentions(text, value string) bool {
	return value != "" && strings.Contains(text, value)
}

func parseRevenueEstimate(content string) (dto.RevenueEstimate, error) {
	content = strings.TrimSpace(content)
	var estimate dto.RevenueEstimate
	if err := json.Unmarshal([]byte(content), &estimate); err == nil {
		return estimate, nil
	}
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return dto.RevenueEstimate{}, fmt.Errorf("repair revenue json: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &estimate); err != nil {
		return dto.RevenueEstimate{}, fmt.Errorf("decode revenue json: %w", err)
	}
	return estimate, nil
}

func fallbackEstimate() dto.RevenueEstimate {
	estimate := fallbackRevenueEstimate
	estimate.Factors = append([]string(nil), fallbackRevenueEstimate.Factors...)
	return estimate
}

func emailTypeOrDefault(emailType string) string {
	if emailType == "" {
		return defaultEmailType
	}
	return emailType
}

func leadFields(lead *dto.LeadContext) map[string]string {
	return map[string]string{
		"company":          lead.Company,
		"name":             lead.Name,
		"title":            lead.Title,
		"website":          lead.Website,
		"industry":         lead.Industry,
		"employeeCount":    lead.EmployeeCount,
		"revenue":          lead.Revenue,
		"yearFounded":      lead.YearFounded,
		"city":             lead.City,
		"state":            lead.State,
		"productsServices": strings.Join(lead.ProductsServices, ", "),
	}
}

func buildEmailPrompt(lead *dto.LeadContext, emailType, customPrompt string) string {
	if customPrompt != "" {
		fields := leadFields(lead)
		return placeholderPattern.ReplaceAllStringFunc(customPrompt, func(match string) string {
			if value := fields[match[1:len(match)-1]]; value != "" {
				return value
			}
			return match
		})
	}

	products := "Not specified"
	if len(lead.ProductsServices) > 0 {
		products = strings.Join(lead.ProductsServices, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a personalized %s email for this B2B lead:\n\n", emailType)
	b.WriteString("Lead Information:\n")
	fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	fmt.Fprintf(&b, "Industry: %s\n", lead.Industry)
	fmt.Fprintf(&b, "Website: %s\n", lead.Website)
	fmt.Fprintf(&b, "Location: %s, %s\n", lead.City, lead.State)
	fmt.Fprintf(&b, "Employee Count: %s\n", lead.EmployeeCount)
	fmt.Fprintf(&b, "Revenue: %s\n", lead.Revenue)
	fmt.Fprintf(&b, "Year Founded: %s\n", lead.YearFounded)
	fmt.Fprintf(&b, "Products/Services: %s\n\n", products)
	b.WriteString(`Email Requirements:
1. Professional and personalized tone
2. Reference specific company details
3. Provide clear value proposition
4. Include a compelling call-to-action
5. Keep it concise (under 200 words)
6. Avoid generic phrases

Format the response as:
Subject: [compelling subject line]
Body: [email body]`)
	return b.String()
}

func buildFollowUpPrompt(lead *dto.LeadContext, previous *dto.PreviousEmail, followUpType string) string {
	var b strings.Builder
	b.WriteString("Generate a follow-up email based on this previous email and lead information:\n\n")
	b.WriteString("Previous Email:\n")
	fmt.Fprintf(&b, "Subject: %s\n", previous.Subject)
	fmt.Fprintf(&b, "Body: %s\n\n", previous.Body)
	b.WriteString("Lead Information:\n")
	fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	fmt.Fprintf(&b, "Industry: %s\n", lead.Industry)
	fmt.Fprintf(&b, "Website: %s\n", lead.Website)
	fmt.Fprintf(&b, "Location: %s, %s\n\n", lead.City, lead.State)
	fmt.Fprintf(&b, "Follow-up Type: %s\n\n", followUpType)
	b.WriteString(`Create a professional follow-up email that:
1. References the previous email subtly
2. Provides additional value
3. Maintains a professional tone
4. Includes a clear call-to-action
5. Is personalized to their business

Format the response as:
Subject: [subject line]
Body: [email body]`)
	return b.String()
}

func buildLinkedInPrompt(lead *dto.LeadContext, messageType string) string {
	name := lead.Name
	if name == "" {
		name = "Professional"
	}
	title := lead.Title
	if title == "" {
		title = "Professional"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a LinkedIn %s message for this lead:\n\n", messageType)
	b.WriteString("Lead Information:\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Industry: %s\n", lead.Industry)
	fmt.Fprintf(&b, "Location: %s, %s\n\n", lead.City, lead.State)
	fmt.Fprintf(&b, "Message Type: %s\n\n", messageType)
	b.WriteString(`Create a professional LinkedIn message that:
1. Is personalized and relevant
2. Provides value
3. Is concise (under 300 characters)
4. Includes a clear call-to-action
5. Maintains a professional tone

Generate the message content:`)
	return b.String()
}

func buildRevenuePrompt(company *dto.LeadContext, websiteExcerpt string) string {
	var b strings.Builder
	b.WriteString("Estimate the annual revenue for this company based on available data:\n\n")
	b.WriteString("Company Information:\n")
	fmt.Fprintf(&b, "Company: %s\n", company.Company)
	fmt.Fprintf(&b, "Industry: %s\n", company.Industry)
	fmt.Fprintf(&b, "Employee Count: %s\n", company.EmployeeCount)
	fmt.Fprintf(&b, "Website: %s\n", company.Website)
	fmt.Fprintf(&b, "Location: %s, %s\n", company.City, company.State)
	fmt.Fprintf(&b, "Year Founded: %s\n\n", company.YearFounded)
	if websiteExcerpt != "" {
		b.WriteString("Website Excerpt:\n")
		b.WriteString(websiteExcerpt)
		b.WriteString("\n\n")
	}
	b.WriteString(`Provide a revenue estimate with:
1. Estimated annual revenue range
2. Confidence level (High/Medium/Low)
3. Reasoning for the estimate
4. Key factors considered

Format as JSON with fields: minRevenue, maxRevenue, confidence, reasoning, factors`)
	return b.String()
}
