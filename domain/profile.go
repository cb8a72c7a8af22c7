package domain

import "time"

// HeroStats are the headline numbers on the landing section.
type HeroStats struct {
	Projects     string `json:"projects,omitempty"`
	Experience   string `json:"experience,omitempty"`
	Satisfaction string `json:"satisfaction,omitempty"`
}

// Personal is the singleton identity block for the public site.
type Personal struct {
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Bio             string    `json:"bio"`
	Description     string    `json:"description,omitempty"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	ResumeFile      string    `json:"resumeFile,omitempty"`
	TypewriterTexts []string  `json:"typewriterTexts,omitempty"`
	HeroStats       HeroStats `json:"heroStats"`
}

// WorkExperience is an embedded, manually ordered entry in the about section.
type WorkExperience struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Duration         string   `json:"duration"`
	Location         string   `json:"location"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	Order            int      `json:"order"`
}

// Education is an embedded, manually ordered entry in the about section.
type Education struct {
	ID          string `json:"id"`
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Duration    string `json:"duration"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// Certification is an embedded entry in the about section.
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Link   string `json:"link,omitempty"`
	Image  string `json:"image,omitempty"`
}

// About is the singleton biography document.
type About struct {
	Description    string           `json:"description"`
	WorkExperience []WorkExperience `json:"workExperience,omitempty"`
	Education      []Education      `json:"education,omitempty"`
	Certifications []Certification  `json:"certifications,omitempty"`
}

// SocialLink is a single entry in the contact block.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
}

// Contact is the singleton contact-details document.
type Contact struct {
	Email       string       `json:"email"`
	Phone       string       `json:"phone"`
	Location    string       `json:"location,omitempty"`
	Whatsapp    string       `json:"whatsapp,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
}

// Message is a contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Theme holds the public site color palette.
type Theme struct {
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	AccentColor    string `json:"accentColor,omitempty"`
}

// SEO holds the head metadata for the public site.
type SEO struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	OGImage     string `json:"ogImage,omitempty"`
}

// Settings is the singleton site configuration document.
type Settings struct {
	Theme             Theme  `json:"theme"`
	SEO               SEO    `json:"seo"`
	GoogleAnalyticsID string `json:"googleAnalyticsId,omitempty"`
	MaintenanceMode   bool   `json:"maintenanceMode"`
	CustomCSS         string `json:"customCSS,omitempty"`
	CustomJS          string `json:"customJS,omitempty"`
	FooterText        string `json:"footerText,omitempty"`
}
