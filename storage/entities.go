package storage

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"portfolio-api/domain"
)

// Each collection lives in its own table under a fixed partition key.
const (
	partProjects   = "projects"
	partSkills     = "skills"
	partCategories = "skill-categories"
	partContent    = "content"
	partMessages   = "messages"
	partVisitors   = "visitors"
	partUsers      = "users"
)

// Row keys for the singleton content documents.
const (
	rowPersonal       = "personal"
	rowAbout          = "about"
	rowContact        = "contact"
	rowSettings       = "settings"
	rowAdditionalTech = "additional-tech"
)

// escapeFilterValue doubles single quotes for use inside OData filter literals.
func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

// Table Storage has no array column type; string slices are stored as JSON.
func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

type projectEntity struct {
	aztables.Entity
	Name         string `json:"Name"`
	Description  string `json:"Description"`
	Category     string `json:"Category"`
	Image        string `json:"Image"`
	ProjectLink  string `json:"ProjectLink"`
	GithubLink   string `json:"GithubLink"`
	Technologies string `json:"Technologies"`
	Featured     bool   `json:"Featured"`
	Order        int    `json:"Order"`
	CreatedAt    int64  `json:"CreatedAt"`
}

func projectToEntity(p domain.Project) projectEntity {
	return projectEntity{
		Entity:       aztables.Entity{PartitionKey: partProjects, RowKey: p.ID},
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Image:        p.Image,
		ProjectLink:  p.ProjectLink,
		GithubLink:   p.GithubLink,
		Technologies: encodeStrings(p.Technologies),
		Featured:     p.Featured,
		Order:        p.Order,
		CreatedAt:    p.CreatedAt.UnixMilli(),
	}
}

func projectFromEntity(e projectEntity) domain.Project {
	return domain.Project{
		ID:           e.RowKey,
		Name:         e.Name,
		Description:  e.Description,
		Category:     e.Category,
		Image:        e.Image,
		ProjectLink:  e.ProjectLink,
		GithubLink:   e.GithubLink,
		Technologies: decodeStrings(e.Technologies),
		Featured:     e.Featured,
		Order:        e.Order,
		CreatedAt:    time.UnixMilli(e.CreatedAt).UTC(),
	}
}

type skillEntity struct {
	aztables.Entity
	Name       string `json:"Name"`
	Percentage int    `json:"Percentage"`
	Icon       string `json:"Icon"`
	Category   string `json:"Category"`
	Order      int    `json:"Order"`
	CreatedAt  int64  `json:"CreatedAt"`
}

func skillToEntity(sk domain.Skill) skillEntity {
	return skillEntity{
		Entity:     aztables.Entity{PartitionKey: partSkills, RowKey: sk.ID},
		Name:       sk.Name,
		Percentage: sk.Percentage,
		Icon:       sk.Icon,
		Category:   sk.Category,
		Order:      sk.Order,
		CreatedAt:  sk.CreatedAt.UnixMilli(),
	}
}

func skillFromEntity(e skillEntity) domain.Skill {
	return domain.Skill{
		ID:         e.RowKey,
		Name:       e.Name,
		Percentage: e.Percentage,
		Icon:       e.Icon,
		Category:   e.Category,
		Order:      e.Order,
		CreatedAt:  time.UnixMilli(e.CreatedAt).UTC(),
	}
}

type categoryEntity struct {
	aztables.Entity
	Name      string `json:"Name"`
	Icon      string `json:"Icon"`
	Order     int    `json:"Order"`
	CreatedAt int64  `json:"CreatedAt"`
}

func categoryToEntity(c domain.SkillCategory) categoryEntity {
	return categoryEntity{
		Entity:    aztables.Entity{PartitionKey: partCategories, RowKey: c.ID},
		Name:      c.Name,
		Icon:      c.Icon,
		Order:     c.Order,
		CreatedAt: c.CreatedAt.UnixMilli(),
	}
}

func categoryFromEntity(e categoryEntity) domain.SkillCategory {
	return domain.SkillCategory{
		ID:        e.RowKey,
		Name:      e.Name,
		Icon:      e.Icon,
		Order:     e.Order,
		CreatedAt: time.UnixMilli(e.CreatedAt).UTC(),
	}
}

// contentEntity stores a singleton document as one JSON blob; the nested
// structures do not map onto flat table columns.
type contentEntity struct {
	aztables.Entity
	Data string `json:"Data"`
}

type messageEntity struct {
	aztables.Entity
	Name      string `json:"Name"`
	Email     string `json:"Email"`
	Subject   string `json:"Subject"`
	Message   string `json:"Message"`
	IsRead    bool   `json:"IsRead"`
	CreatedAt int64  `json:"CreatedAt"`
}

func messageToEntity(m domain.Message) messageEntity {
	return messageEntity{
		Entity:    aztables.Entity{PartitionKey: partMessages, RowKey: m.ID},
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
}

func messageFromEntity(e messageEntity) domain.Message {
	return domain.Message{
		ID:        e.RowKey,
		Name:      e.Name,
		Email:     e.Email,
		Subject:   e.Subject,
		Message:   e.Message,
		IsRead:    e.IsRead,
		CreatedAt: time.UnixMilli(e.CreatedAt).UTC(),
	}
}

type visitorEntity struct {
	aztables.Entity
	IP        string `json:"IP"`
	UserAgent string `json:"UserAgent"`
	Browser   string `json:"Browser"`
	OS        string `json:"OS"`
	Device    string `json:"Device"`
	Referrer  string `json:"Referrer"`
	Time      int64  `json:"Time"`
}

func visitorToEntity(v domain.Visitor) visitorEntity {
	return visitorEntity{
		Entity:    aztables.Entity{PartitionKey: partVisitors, RowKey: v.ID},
		IP:        v.IP,
		UserAgent: v.UserAgent,
		Browser:   v.Browser,
		OS:        v.OS,
		Device:    v.Device,
		Referrer:  v.Referrer,
		Time:      v.Time.UnixMilli(),
	}
}

func visitorFromEntity(e visitorEntity) domain.Visitor {
	return domain.Visitor{
		ID:        e.RowKey,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		Browser:   e.Browser,
		OS:        e.OS,
		Device:    e.Device,
		Referrer:  e.Referrer,
		Time:      time.UnixMilli(e.Time).UTC(),
	}
}

type userEntity struct {
	aztables.Entity
	Name         string `json:"Name"`
	Email        string `json:"Email"`
	PasswordHash string `json:"PasswordHash"`
	CreatedAt    int64  `json:"CreatedAt"`
}

func userToEntity(u domain.AdminUser) userEntity {
	return userEntity{
		Entity:       aztables.Entity{PartitionKey: partUsers, RowKey: u.ID},
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UnixMilli(),
	}
}

func userFromEntity(e userEntity) domain.AdminUser {
	return domain.AdminUser{
		ID:           e.RowKey,
		Name:         e.Name,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		CreatedAt:    time.UnixMilli(e.CreatedAt).UTC(),
	}
}
