package extract

import "strings"

// Profile is the public part of a LinkedIn profile page.
type Profile struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Connections string `json:"connections"`
	Summary     string `json:"summary"`
}

const profileMetaSelector = ".text-body-small.inline.t-black--light.break-words"

// LinkedInProfile reads the profile header fields. Missing fields stay empty.
func LinkedInProfile(doc *Document) Profile {
	name := strings.TrimSpace(doc.Find("h1.text-heading-xlarge").First().Text())
	if name == "" {
		name = strings.TrimSpace(doc.Find(".text-heading-xlarge").First().Text())
	}
	meta := doc.Find(profileMetaSelector)
	return Profile{
		Name:        name,
		Title:       strings.TrimSpace(doc.Find(".text-body-medium.break-words").First().Text()),
		Company:     strings.TrimSpace(meta.Eq(0).Text()),
		Location:    strings.TrimSpace(meta.Eq(1).Text()),
		Connections: strings.TrimSpace(doc.Find(".t-bold").First().Text()),
		Summary:     strings.TrimSpace(doc.Find(".pv-about-section .pv-about__summary-text").Text()),
	}
}
