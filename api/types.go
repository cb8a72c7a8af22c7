package api

import (
	"context"

	"portfolio-api/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	FetchProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (domain.Project, error)
	InsertProject(ctx context.Context, p domain.Project) error
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ReorderProjects(ctx context.Context, updates []domain.OrderUpdate) (int, error)

	FetchSkills(ctx context.Context) ([]domain.Skill, error)
	InsertSkill(ctx context.Context, sk domain.Skill) error
	UpdateSkill(ctx context.Context, sk domain.Skill) (domain.Skill, error)
	DeleteSkill(ctx context.Context, id string) error
	ReorderSkills(ctx context.Context, updates []domain.OrderUpdate) (int, error)
	CountSkillsInCategory(ctx context.Context, name string) (int, error)
	RenameSkillCategory(ctx context.Context, oldName, newName string) (int, error)

	FetchCategories(ctx context.Context) ([]domain.SkillCategory, error)
	CategoryNameExists(ctx context.Context, name, excludeID string) (bool, error)
	GetCategory(ctx context.Context, id string) (domain.SkillCategory, error)
	InsertCategory(ctx context.Context, c domain.SkillCategory) error
	UpdateCategory(ctx context.Context, c domain.SkillCategory) (domain.SkillCategory, error)
	DeleteCategory(ctx context.Context, id string) error
	ReorderCategories(ctx context.Context, updates []domain.OrderUpdate) (int, error)

	FetchAdditionalTech(ctx context.Context) (domain.AdditionalTech, error)
	UpsertAdditionalTech(ctx context.Context, at domain.AdditionalTech) error
	FetchPersonal(ctx context.Context) (domain.Personal, error)
	UpsertPersonal(ctx context.Context, p domain.Personal) error
	FetchAbout(ctx context.Context) (domain.About, error)
	UpsertAbout(ctx context.Context, a domain.About) error
	FetchContact(ctx context.Context) (domain.Contact, error)
	UpsertContact(ctx context.Context, c domain.Contact) error
	FetchSettings(ctx context.Context) (domain.Settings, error)
	UpsertSettings(ctx context.Context, st domain.Settings) error

	FetchMessages(ctx context.Context) ([]domain.Message, error)
	InsertMessage(ctx context.Context, m domain.Message) error
	MarkMessageRead(ctx context.Context, id string) error
	DeleteMessage(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (domain.AdminUser, error)
	GetUserByEmail(ctx context.Context, email string) (domain.AdminUser, error)
	InsertUser(ctx context.Context, u domain.AdminUser) error
	CountUsers(ctx context.Context) (int, error)

	EnqueueVisit(ctx context.Context, v domain.Visit) error
	FetchVisitors(ctx context.Context) ([]domain.Visitor, error)
	FetchVisitorStats(ctx context.Context) (domain.VisitorStats, error)
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Deduper suppresses repeat visits from the same client within a window.
type Deduper interface {
	// Add records the key and returns true if it was newly added.
	Add(ctx context.Context, key string) (bool, error)
	// Remove deletes a previously added key, used when downstream processing fails.
	Remove(ctx context.Context, key string) error
}
