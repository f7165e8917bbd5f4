package scraper

import "github.com/octobees/leads-scraper/internal/scraper/extract"

type sample struct {
	company, website, linkedin, email, phone         string
	industry, businessType, employees, revenue, year string
	rating, street, city, state, zip, description    string
	products                                         []string
}

var sampleCatalogue = []sample{
	{"TechCorp Solutions", "https://techcorp.com", "https://linkedin.com/company/techcorp", "contact@techcorp.com", "+1-555-0123",
		"Technology", "B2B Software", "50-200", "$5M-$10M", "2018",
		"A+", "123 Tech Street", "San Francisco", "CA", "94105", "Leading provider of enterprise software solutions",
		[]string{"SaaS Platform", "API Integration", "Cloud Services"}},
	{"HealthTech Innovations", "https://healthtech.com", "https://linkedin.com/company/healthtech", "info@healthtech.com", "+1-555-0456",
		"Healthcare", "Medical Technology", "200-500", "$10M-$25M", "2015",
		"A", "456 Health Ave", "Boston", "MA", "02108", "Revolutionary healthcare technology solutions",
		[]string{"Telemedicine", "Health Records", "Patient Monitoring"}},
	{"FinanceFlow Systems", "https://financeflow.com", "https://linkedin.com/company/financeflow", "sales@financeflow.com", "+1-555-0789",
		"Finance", "Fintech", "100-200", "$25M-$50M", "2017",
		"A+", "789 Finance Blvd", "New York", "NY", "10001", "Next-generation financial technology platform",
		[]string{"Payment Processing", "Financial Analytics", "Trading Platform"}},
	{"EduTech Learning", "https://edutech.com", "https://linkedin.com/company/edutech", "hello@edutech.com", "+1-555-0321",
		"Education", "EdTech", "50-100", "$2M-$5M", "2019",
		"A", "321 Education St", "Austin", "TX", "73301", "Innovative educational technology solutions",
		[]string{"Online Learning", "Student Management", "Assessment Tools"}},
	{"RetailMax Solutions", "https://retailmax.com", "https://linkedin.com/company/retailmax", "support@retailmax.com", "+1-555-0654",
		"Retail", "E-commerce", "200-500", "$50M-$100M", "2016",
		"A+", "654 Retail Way", "Seattle", "WA", "98101", "Complete retail management and e-commerce solutions",
		[]string{"E-commerce Platform", "Inventory Management", "Customer Analytics"}},
	{"ManufacturingPro", "https://manufacturingpro.com", "https://linkedin.com/company/manufacturingpro", "info@manufacturingpro.com", "+1-555-0987",
		"Manufacturing", "Industrial", "500-1000", "$100M-$500M", "2012",
		"A", "987 Industrial Dr", "Detroit", "MI", "48201", "Advanced manufacturing and industrial automation",
		[]string{"Automation Systems", "Quality Control", "Supply Chain"}},
	{"ConsultingExperts", "https://consultingexperts.com", "https://linkedin.com/company/consultingexperts", "contact@consultingexperts.com", "+1-555-0147",
		"Consulting", "Professional Services", "100-200", "$10M-$25M", "2014",
		"A+", "147 Business Ave", "Chicago", "IL", "60601", "Strategic consulting and business transformation services",
		[]string{"Business Strategy", "Digital Transformation", "Process Optimization"}},
	{"MarketingGenius", "https://marketinggenius.com", "https://linkedin.com/company/marketinggenius", "team@marketinggenius.com", "+1-555-0258",
		"Marketing", "Digital Marketing", "50-100", "$5M-$10M", "2020",
		"A", "258 Marketing St", "Los Angeles", "CA", "90001", "Full-service digital marketing and advertising agency",
		[]string{"Digital Marketing", "SEO Services", "Social Media Management"}},
}

// DefaultSampleCompanies returns a fresh copy of the built-in demo catalogue.
func DefaultSampleCompanies() []CompanyRecord {
	out := make([]CompanyRecord, 0, len(sampleCatalogue))
	for _, s := range sampleCatalogue {
		out = append(out, CompanyRecord{
			Company:          s.company,
			Website:          s.website,
			Description:      s.description,
			Industry:         s.industry,
			BusinessType:     s.businessType,
			EmployeeCount:    s.employees,
			Revenue:          s.revenue,
			YearFounded:      s.year,
			BBBRating:        s.rating,
			Address:          s.street,
			Street:           s.street,
			City:             s.city,
			State:            s.state,
			ZipCode:          s.zip,
			Country:          "USA",
			ProductsServices: append([]string(nil), s.products...),
			ContactInfo:      extract.ContactInfo{Emails: []string{s.email}, Phones: []string{s.phone}},
			SocialLinks:      map[string]string{"linkedin": s.linkedin},
		})
	}
	return out
}
