package domain

import "time"

// Project categories accepted on create and update.
var ProjectCategories = []string{"Web Development", "UI/UX Design", "Mobile App"}

// Project is a portfolio entry shown on the public site and managed from the
// admin dashboard. Order determines its rank within the projects scope.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	ProjectLink  string    `json:"projectLink"`
	GithubLink   string    `json:"githubLink,omitempty"`
	Technologies []string  `json:"technologies,omitempty"`
	Featured     bool      `json:"featured,omitempty"`
	Order        int       `json:"order"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// ValidCategory reports whether c is one of the accepted project categories.
func ValidCategory(c string) bool {
	for _, v := range ProjectCategories {
		if v == c {
			return true
		}
	}
	return false
}
