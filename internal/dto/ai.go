package dto

// LeadContext describes the prospect an outreach message is written for.
type LeadContext struct {
	Company          string   `json:"company"`
	Name             string   `json:"name,omitempty"`
	Title            string   `json:"title,omitempty"`
	Website          string   `json:"website,omitempty"`
	Industry         string   `json:"industry,omitempty"`
	EmployeeCount    string   `json:"employeeCount,omitempty"`
	Revenue          string   `json:"revenue,omitempty"`
	YearFounded      string   `json:"yearFounded,omitempty"`
	City             string   `json:"city,omitempty"`
	State            string   `json:"state,omitempty"`
	ProductsServices []string `json:"productsServices,omitempty"`
}

// EmailRequest asks for a personalised email.
type EmailRequest struct {
	LeadData     *LeadContext `json:"leadData"`
	EmailType    string       `json:"emailType,omitempty"`
	CustomPrompt string       `json:"customPrompt,omitempty"`
}

// EmailVariationsRequest asks for several alternative emails.
type EmailVariationsRequest struct {
	LeadData  *LeadContext `json:"leadData"`
	Count     int          `json:"count,omitempty"`
	EmailType string       `json:"emailType,omitempty"`
}

// PreviousEmail is the message a follow-up refers to.
type PreviousEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// FollowUpRequest asks for a follow-up to a previous email.
type FollowUpRequest struct {
	LeadData      *LeadContext   `json:"leadData"`
	PreviousEmail *PreviousEmail `json:"previousEmail"`
	FollowUpType  string         `json:"followUpType,omitempty"`
}

// LinkedInMessageRequest asks for a short LinkedIn message.
type LinkedInMessageRequest struct {
	LeadData    *LeadContext `json:"leadData"`
	MessageType string       `json:"messageType,omitempty"`
}

// RevenueEstimateRequest asks for a revenue estimate of a company.
type RevenueEstimateRequest struct {
	CompanyData *LeadContext `json:"companyData"`
}

// GeneratedEmail is one email produced by the model.
type GeneratedEmail struct {
	Subject              string `json:"subject"`
	Body                 string `json:"body"`
	WordCount            int    `json:"wordCount"`
	PersonalizationScore int    `json:"personalizationScore,omitempty"`
	FollowUpType         string `json:"followUpType,omitempty"`
	Variation            int    `json:"variation,omitempty"`
}

// LinkedInMessage is a generated LinkedIn message.
type LinkedInMessage struct {
	Message        string `json:"message"`
	CharacterCount int    `json:"characterCount"`
	MessageType    string `json:"messageType"`
}

// RevenueEstimate is the parsed model answer.
type RevenueEstimate struct {
	MinRevenue float64  `json:"minRevenue"`
	MaxRevenue float64  `json:"maxRevenue"`
	Confidence string   `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Factors    []string `json:"factors"`
}

// EmailResponse is a generated email plus the credit movement.
type EmailResponse struct {
	GeneratedEmail
	CreditsUsed      int `json:"creditsUsed"`
	RemainingCredits int `json:"remainingCredits"`
}

// EmailVariationsResponse lists alternative emails in generation order.
type EmailVariationsResponse struct {
	Variations       []GeneratedEmail `json:"variations"`
	CreditsUsed      int              `json:"creditsUsed"`
	RemainingCredits int              `json:"remainingCredits"`
}

// LinkedInMessageResponse is a generated message plus the credit movement.
type LinkedInMessageResponse struct {
	LinkedInMessage
	CreditsUsed      int `json:"creditsUsed"`
	RemainingCredits int `json:"remainingCredits"`
}
