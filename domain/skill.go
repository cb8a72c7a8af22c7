package domain

import "time"

// Skill is a single proficiency bar. Skills are globally ordered; the category
// only filters what the public site renders together.
type Skill struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Percentage int       `json:"percentage"`
	Icon       string    `json:"icon"`
	Category   string    `json:"category"`
	Order      int       `json:"order"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// SkillCategory groups skills for display. Names are unique; a category in use
// by any skill cannot be deleted.
type SkillCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// AdditionalTech is the singleton list of technologies rendered below the
// skill bars.
type AdditionalTech struct {
	Technologies []string `json:"technologies"`
}
