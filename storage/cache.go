package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio-api/domain"
)

// Cache keys, one per public read scope.
const (
	keyProjects       = "projects"
	keySkills         = "skills"
	keyCategories     = "skill-categories"
	keyAdditionalTech = "additional-tech"
	keyPersonal       = "personal"
	keyAbout          = "about"
	keyContact        = "contact"
	keySettings       = "settings"
)

type backend interface {
	FetchProjects(ctx context.Context) ([]domain.Project, error)
	InsertProject(ctx context.Context, p domain.Project) error
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ReorderProjects(ctx context.Context, updates []domain.OrderUpdate) (int, error)

	FetchSkills(ctx context.Context) ([]domain.Skill, error)
	InsertSkill(ctx context.Context, sk domain.Skill) error
	UpdateSkill(ctx context.Context, sk domain.Skill) (domain.Skill, error)
	DeleteSkill(ctx context.Context, id string) error
	ReorderSkills(ctx context.Context, updates []domain.OrderUpdate) (int, error)
	RenameSkillCategory(ctx context.Context, oldName, newName string) (int, error)

	FetchCategories(ctx context.Context) ([]domain.SkillCategory, error)
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
}

// Cache wraps a Storage instance with Redis-backed caching for the public read
// endpoints. Every write path evicts the affected key so the next read comes
// from the store.
type Cache struct {
	*Storage
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching Storage wrapper using the provided Redis client
// and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	c := &Cache{base: base, redis: client, ttl: ttl}
	if s, ok := base.(*Storage); ok {
		c.Storage = s
	}
	return c
}

func cacheLoad[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var out T
	if c.redis == nil {
		return out, false
	}
	data, err := c.redis.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, cacheKey(key)).Err()
		}
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		_ = c.redis.Del(ctx, cacheKey(key)).Err()
		return out, false
	}
	return out, true
}

func cacheStore[T any](ctx context.Context, c *Cache, key string, value T) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(key), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, keys ...string) {
	if c.redis == nil {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = cacheKey(k)
	}
	_, _ = c.redis.Del(ctx, full...).Result()
}

func cacheKey(scope string) string {
	return "cache:" + scope
}

func cachedFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := cacheLoad[T](ctx, c, key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	cacheStore(ctx, c, key, v)
	return v, nil
}

func (c *Cache) FetchProjects(ctx context.Context) ([]domain.Project, error) {
	return cachedFetch(ctx, c, keyProjects, c.base.FetchProjects)
}

func (c *Cache) InsertProject(ctx context.Context, p domain.Project) error {
	if err := c.base.InsertProject(ctx, p); err != nil {
		return err
	}
	c.evict(ctx, keyProjects)
	return nil
}

func (c *Cache) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	updated, err := c.base.UpdateProject(ctx, p)
	if err != nil {
		return domain.Project{}, err
	}
	c.evict(ctx, keyProjects)
	return updated, nil
}

func (c *Cache) DeleteProject(ctx context.Context, id string) error {
	if err := c.base.DeleteProject(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, keyProjects)
	return nil
}

func (c *Cache) ReorderProjects(ctx context.Context, updates []domain.OrderUpdate) (int, error) {
	matched, err := c.base.ReorderProjects(ctx, updates)
	if err != nil {
		return matched, err
	}
	c.evict(ctx, keyProjects)
	return matched, nil
}

func (c *Cache) FetchSkills(ctx context.Context) ([]domain.Skill, error) {
	return cachedFetch(ctx, c, keySkills, c.base.FetchSkills)
}

func (c *Cache) InsertSkill(ctx context.Context, sk domain.Skill) error {
	if err := c.base.InsertSkill(ctx, sk); err != nil {
		return err
	}
	c.evict(ctx, keySkills)
	return nil
}

func (c *Cache) UpdateSkill(ctx context.Context, sk domain.Skill) (domain.Skill, error) {
	updated, err := c.base.UpdateSkill(ctx, sk)
	if err != nil {
		return domain.Skill{}, err
	}
	c.evict(ctx, keySkills)
	return updated, nil
}

func (c *Cache) DeleteSkill(ctx context.Context, id string) error {
	if err := c.base.DeleteSkill(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, keySkills)
	return nil
}

func (c *Cache) ReorderSkills(ctx context.Context, updates []domain.OrderUpdate) (int, error) {
	matched, err := c.base.ReorderSkills(ctx, updates)
	if err != nil {
		return matched, err
	}
	c.evict(ctx, keySkills)
	return matched, nil
}

func (c *Cache) RenameSkillCategory(ctx context.Context, oldName, newName string) (int, error) {
	changed, err := c.base.RenameSkillCategory(ctx, oldName, newName)
	if err != nil {
		return changed, err
	}
	if changed > 0 {
		c.evict(ctx, keySkills)
	}
	return changed, nil
}

func (c *Cache) FetchCategories(ctx context.Context) ([]domain.SkillCategory, error) {
	return cachedFetch(ctx, c, keyCategories, c.base.FetchCategories)
}

func (c *Cache) InsertCategory(ctx context.Context, cat domain.SkillCategory) error {
	if err := c.base.InsertCategory(ctx, cat); err != nil {
		return err
	}
	c.evict(ctx, keyCategories)
	return nil
}

func (c *Cache) UpdateCategory(ctx context.Context, cat domain.SkillCategory) (domain.SkillCategory, error) {
	updated, err := c.base.UpdateCategory(ctx, cat)
	if err != nil {
		return domain.SkillCategory{}, err
	}
	// A rename can affect how skills group on the public site.
	c.evict(ctx, keyCategories, keySkills)
	return updated, nil
}

func (c *Cache) DeleteCategory(ctx context.Context, id string) error {
	if err := c.base.DeleteCategory(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, keyCategories)
	return nil
}

func (c *Cache) ReorderCategories(ctx context.Context, updates []domain.OrderUpdate) (int, error) {
	matched, err := c.base.ReorderCategories(ctx, updates)
	if err != nil {
		return matched, err
	}
	c.evict(ctx, keyCategories)
	return matched, nil
}

func (c *Cache) FetchAdditionalTech(ctx context.Context) (domain.AdditionalTech, error) {
	return cachedFetch(ctx, c, keyAdditionalTech, c.base.FetchAdditionalTech)
}

func (c *Cache) UpsertAdditionalTech(ctx context.Context, at domain.AdditionalTech) error {
	if err := c.base.UpsertAdditionalTech(ctx, at); err != nil {
		return err
	}
	c.evict(ctx, keyAdditionalTech)
	return nil
}

func (c *Cache) FetchPersonal(ctx context.Context) (domain.Personal, error) {
	return cachedFetch(ctx, c, keyPersonal, c.base.FetchPersonal)
}

func (c *Cache) UpsertPersonal(ctx context.Context, p domain.Personal) error {
	if err := c.base.UpsertPersonal(ctx, p); err != nil {
		return err
	}
	c.evict(ctx, keyPersonal)
	return nil
}

func (c *Cache) FetchAbout(ctx context.Context) (domain.About, error) {
	return cachedFetch(ctx, c, keyAbout, c.base.FetchAbout)
}

func (c *Cache) UpsertAbout(ctx context.Context, a domain.About) error {
	if err := c.base.UpsertAbout(ctx, a); err != nil {
		return err
	}
	c.evict(ctx, keyAbout)
	return nil
}

func (c *Cache) FetchContact(ctx context.Context) (domain.Contact, error) {
	return cachedFetch(ctx, c, keyContact, c.base.FetchContact)
}

func (c *Cache) UpsertContact(ctx context.Context, contact domain.Contact) error {
	if err := c.base.UpsertContact(ctx, contact); err != nil {
		return err
	}
	c.evict(ctx, keyContact)
	return nil
}

func (c *Cache) FetchSettings(ctx context.Context) (domain.Settings, error) {
	return cachedFetch(ctx, c, keySettings, c.base.FetchSettings)
}

func (c *Cache) UpsertSettings(ctx context.Context, st domain.Settings) error {
	if err := c.base.UpsertSettings(ctx, st); err != nil {
		return err
	}
	c.evict(ctx, keySettings)
	return nil
}
