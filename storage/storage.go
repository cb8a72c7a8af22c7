package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"portfolio-api/domain"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("storage: not found")

// Tables names the Azure Storage tables and queues used by the service.
type Tables struct {
	Projects   string
	Skills     string
	Categories string
	Content    string
	Messages   string
	Visitors   string
	Users      string
	VisitQueue string
}

// Storage provides access to the underlying persistence mechanisms.
type Storage struct {
	projects   *aztables.Client
	skills     *aztables.Client
	categories *aztables.Client
	content    *aztables.Client
	messages   *aztables.Client
	visitors   *aztables.Client
	users      *aztables.Client
	visitQueue *azqueue.QueueClient
}

// New creates a Storage instance from the given connection string.
func New(connStr string, t Tables) (*Storage, error) {
	tablesClientOptions := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &tablesClientOptions)
	if err != nil {
		return nil, err
	}
	queueClientOptions := azqueue.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    5,
				TryTimeout:    time.Minute * 5,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 60,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	vq, err := azqueue.NewQueueClientFromConnectionString(connStr, t.VisitQueue, &queueClientOptions)
	if err != nil {
		return nil, err
	}
	return &Storage{
		projects:   svc.NewClient(t.Projects),
		skills:     svc.NewClient(t.Skills),
		categories: svc.NewClient(t.Categories),
		content:    svc.NewClient(t.Content),
		messages:   svc.NewClient(t.Messages),
		visitors:   svc.NewClient(t.Visitors),
		users:      svc.NewClient(t.Users),
		visitQueue: vq,
	}, nil
}

func isNotFound(err error) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == 404
}

func listEntities[E any](ctx context.Context, table *aztables.Client, pk string) ([]E, error) {
	filter := "PartitionKey eq '" + pk + "'"
	pager := table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	out := []E{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range resp.Entities {
			var ent E
			if err := json.Unmarshal(raw, &ent); err != nil {
				return nil, err
			}
			out = append(out, ent)
		}
	}
	return out, nil
}

func insertEntity(ctx context.Context, table *aztables.Client, ent any) error {
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = table.AddEntity(ctx, payload, nil)
	return err
}

func replaceEntity(ctx context.Context, table *aztables.Client, ent any) error {
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeReplace})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func deleteEntity(ctx context.Context, table *aztables.Client, pk, rk string) error {
	_, err := table.DeleteEntity(ctx, pk, rk, nil)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func getEntity[E any](ctx context.Context, table *aztables.Client, pk, rk string) (*E, error) {
	resp, err := table.GetEntity(ctx, pk, rk, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var ent E
	if err := json.Unmarshal(resp.Value, &ent); err != nil {
		return nil, err
	}
	return &ent, nil
}

// orderPatch carries only the keys and the new rank so a merge update leaves
// every other column untouched.
type orderPatch struct {
	aztables.Entity
	Order int `json:"Order"`
}

// bulkSetOrder applies each rank update as an independent merge by id. Unknown
// ids are skipped. There is no atomicity across the batch: an error part way
// through leaves earlier updates applied, which is safe because the batch is
// idempotent and retryable.
func bulkSetOrder(ctx context.Context, table *aztables.Client, pk string, updates []domain.OrderUpdate) (int, error) {
	matched := 0
	for _, u := range updates {
		patch := orderPatch{Entity: aztables.Entity{PartitionKey: pk, RowKey: u.ID}, Order: u.Order}
		payload, err := json.Marshal(patch)
		if err != nil {
			return matched, err
		}
		et := azcore.ETagAny
		_, err = table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return matched, err
		}
		matched++
	}
	return matched, nil
}

// FetchProjects returns every project ascending by order, then creation time.
func (s *Storage) FetchProjects(ctx context.Context) ([]domain.Project, error) {
	ents, err := listEntities[projectEntity](ctx, s.projects, partProjects)
	if err != nil {
		return nil, err
	}
	projects := make([]domain.Project, 0, len(ents))
	for _, e := range ents {
		projects = append(projects, projectFromEntity(e))
	}
	domain.SortByOrder(projects, func(p domain.Project) (int, int64) { return p.Order, p.CreatedAt.UnixMilli() })
	return projects, nil
}

func (s *Storage) GetProject(ctx context.Context, id string) (domain.Project, error) {
	ent, err := getEntity[projectEntity](ctx, s.projects, partProjects, id)
	if err != nil {
		return domain.Project{}, err
	}
	return projectFromEntity(*ent), nil
}

func (s *Storage) InsertProject(ctx context.Context, p domain.Project) error {
	return insertEntity(ctx, s.projects, projectToEntity(p))
}

func (s *Storage) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	existing, err := getEntity[projectEntity](ctx, s.projects, partProjects, p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	p.CreatedAt = time.UnixMilli(existing.CreatedAt).UTC()
	if err := replaceEntity(ctx, s.projects, projectToEntity(p)); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.projects, partProjects, id)
}

// ReorderProjects writes the submitted ranks and reports how many records
// matched.
func (s *Storage) ReorderProjects(ctx context.Context, updates []domain.OrderUpdate) (int, error) {
	return bulkSetOrder(ctx, s.projects, partProjects, updates)
}

// FetchSkills returns every skill ascending by order, then creation time.
func (s *Storage) FetchSkills(ctx context.Context) ([]domain.Skill, error) {
	ents, err := listEntities[skillEntity](ctx, s.skills, partSkills)
	if err != nil {
		return nil, err
	}
	skills := make([]domain.Skill, 0, len(ents))
	for _, e := range ents {
		skills = append(skills, skillFromEntity(e))
	}
	domain.SortByOrder(skills, func(sk domain.Skill) (int, int64) { return sk.Order, sk.CreatedAt.UnixMilli() })
	return skills, nil
}

func (s *Storage) InsertSkill(ctx context.Context, sk domain.Skill) error {
	return insertEntity(ctx, s.skills, skillToEntity(sk))
}

func (s *Storage) UpdateSkill(ctx context.Context, sk domain.Skill) (domain.Skill, error) {
	existing, err := getEntity[skillEntity](ctx, s.skills, partSkills, sk.ID)
	if err != nil {
		return domain.Skill{}, err
	}
	sk.CreatedAt = time.UnixMilli(existing.CreatedAt).UTC()
	if err := replaceEntity(ctx, s.skills, skillToEntity(sk)); err != nil {
		return domain.Skill{}, err
	}
	return sk, nil
}

func (s *Storage) DeleteSkill(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.skills, partSkills, id)
}

func (s *Storage) ReorderSkills(ctx context.Context, updates []domain.OrderUpdate) (int, error) {
	return bulkSetOrder(ctx, s.skills, partSkills, updates)
}

// categoryPatch carries only the keys and the new category name so a merge
// update leaves every other column untouched.
type categoryPatch struct {
	aztables.Entity
	Category string `json:"Category"`
}

// RenameSkillCategory rewrites the Category column of every skill referencing
// oldName. Without it a rename strands skills under a name no category
// carries. Each skill is patched independently, so a partial failure is
// retryable.
func (s *Storage) RenameSkillCategory(ctx context.Context, oldName, newName string) (int, error) {
	if oldName == newName {
		return 0, nil
	}
	filter := "PartitionKey eq '" + partSkills + "' and Category eq '" + escapeFilterValue(oldName) + "'"
	pager := s.skills.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	changed := 0
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return changed, err
		}
		for _, raw := range resp.Entities {
			var ent skillEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return changed, err
			}
			patch := categoryPatch{Entity: aztables.Entity{PartitionKey: partSkills, RowKey: ent.RowKey}, Category: newName}
			payload, err := json.Marshal(patch)
			if err != nil {
				return changed, err
			}
			et := azcore.ETagAny
			if _, err := s.skills.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge}); err != nil {
				if isNotFound(err) {
					continue
				}
				return changed, err
			}
			changed++
		}
	}
	return changed, nil
}

// CountSkillsInCategory reports how many skills reference the named category.
func (s *Storage) CountSkillsInCategory(ctx context.Context, name string) (int, error) {
	filter := "PartitionKey eq '" + partSkills + "' and Category eq '" + escapeFilterValue(name) + "'"
	pager := s.skills.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	count := 0
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		count += len(resp.Entities)
	}
	return count, nil
}

// FetchCategories returns every skill category ascending by order, then
// creation time.
func (s *Storage) FetchCategories(ctx context.Context) ([]domain.SkillCategory, error) {
	ents, err := listEntities[categoryEntity](ctx, s.categories, partCategories)
	if err != nil {
		return nil, err
	}
	categories := make([]domain.SkillCategory, 0, len(ents))
	for _, e := range ents {
		categories = append(categories, categoryFromEntity(e))
	}
	domain.SortByOrder(categories, func(c domain.SkillCategory) (int, int64) { return c.Order, c.CreatedAt.UnixMilli() })
	return categories, nil
}

// CategoryNameExists reports whether a category with the given name exists,
// excluding the record identified by excludeID.
func (s *Storage) CategoryNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	filter := "PartitionKey eq '" + partCategories + "' and Name eq '" + escapeFilterValue(name) + "'"
	pager := s.categories.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return false, err
		}
		for _, raw := range resp.Entities {
			var ent categoryEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return false, err
			}
			if ent.RowKey != excludeID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Storage) GetCategory(ctx context.Context, id string) (domain.SkillCategory, error) {
	ent, err := getEntity[categoryEntity](ctx, s.categories, partCategories, id)
	if err != nil {
		return domain.SkillCategory{}, err
	}
	return categoryFromEntity(*ent), nil
}

func (s *Storage) InsertCategory(ctx context.Context, c domain.SkillCategory) error {
	return insertEntity(ctx, s.categories, categoryToEntity(c))
}

func (s *Storage) UpdateCategory(ctx context.Context, c domain.SkillCategory) (domain.SkillCategory, error) {
	existing, err := getEntity[categoryEntity](ctx, s.categories, partCategories, c.ID)
	if err != nil {
		return domain.SkillCategory{}, err
	}
	c.CreatedAt = time.UnixMilli(existing.CreatedAt).UTC()
	if err := replaceEntity(ctx, s.categories, categoryToEntity(c)); err != nil {
		return domain.SkillCategory{}, err
	}
	return c, nil
}

func (s *Storage) DeleteCategory(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.categories, partCategories, id)
}

func (s *Storage) ReorderCategories(ctx context.Context, updates []domain.OrderUpdate) (int, error) {
	return bulkSetOrder(ctx, s.categories, partCategories, updates)
}

func (s *Storage) fetchContent(ctx context.Context, rowKey string, out any) error {
	ent, err := getEntity[contentEntity](ctx, s.content, partContent, rowKey)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(ent.Data), out)
}

func (s *Storage) upsertContent(ctx context.Context, rowKey string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	ent := contentEntity{
		Entity: aztables.Entity{PartitionKey: partContent, RowKey: rowKey},
		Data:   string(data),
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	_, err = s.content.UpsertEntity(ctx, payload, nil)
	return err
}

func (s *Storage) FetchPersonal(ctx context.Context) (domain.Personal, error) {
	var p domain.Personal
	err := s.fetchContent(ctx, rowPersonal, &p)
	return p, err
}

func (s *Storage) UpsertPersonal(ctx context.Context, p domain.Personal) error {
	return s.upsertContent(ctx, rowPersonal, p)
}

func (s *Storage) FetchAbout(ctx context.Context) (domain.About, error) {
	var a domain.About
	err := s.fetchContent(ctx, rowAbout, &a)
	return a, err
}

func (s *Storage) UpsertAbout(ctx context.Context, a domain.About) error {
	return s.upsertContent(ctx, rowAbout, a)
}

func (s *Storage) FetchContact(ctx context.Context) (domain.Contact, error) {
	var c domain.Contact
	err := s.fetchContent(ctx, rowContact, &c)
	return c, err
}

func (s *Storage) UpsertContact(ctx context.Context, c domain.Contact) error {
	return s.upsertContent(ctx, rowContact, c)
}

func (s *Storage) FetchSettings(ctx context.Context) (domain.Settings, error) {
	var st domain.Settings
	err := s.fetchContent(ctx, rowSettings, &st)
	return st, err
}

func (s *Storage) UpsertSettings(ctx context.Context, st domain.Settings) error {
	return s.upsertContent(ctx, rowSettings, st)
}

func (s *Storage) FetchAdditionalTech(ctx context.Context) (domain.AdditionalTech, error) {
	var at domain.AdditionalTech
	err := s.fetchContent(ctx, rowAdditionalTech, &at)
	return at, err
}

func (s *Storage) UpsertAdditionalTech(ctx context.Context, at domain.AdditionalTech) error {
	return s.upsertContent(ctx, rowAdditionalTech, at)
}

// FetchMessages returns contact-form submissions, newest first.
func (s *Storage) FetchMessages(ctx context.Context) ([]domain.Message, error) {
	ents, err := listEntities[messageEntity](ctx, s.messages, partMessages)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(ents))
	for _, e := range ents {
		messages = append(messages, messageFromEntity(e))
	}
	domain.SortByOrder(messages, func(m domain.Message) (int, int64) { return 0, -m.CreatedAt.UnixMilli() })
	return messages, nil
}

func (s *Storage) InsertMessage(ctx context.Context, m domain.Message) error {
	return insertEntity(ctx, s.messages, messageToEntity(m))
}

// MarkMessageRead flips the read flag without touching other columns.
func (s *Storage) MarkMessageRead(ctx context.Context, id string) error {
	patch := struct {
		aztables.Entity
		IsRead bool `json:"IsRead"`
	}{Entity: aztables.Entity{PartitionKey: partMessages, RowKey: id}, IsRead: true}
	payload, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.messages.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (s *Storage) DeleteMessage(ctx context.Context, id string) error {
	return deleteEntity(ctx, s.messages, partMessages, id)
}

func (s *Storage) GetUser(ctx context.Context, id string) (domain.AdminUser, error) {
	ent, err := getEntity[userEntity](ctx, s.users, partUsers, id)
	if err != nil {
		return domain.AdminUser{}, err
	}
	return userFromEntity(*ent), nil
}

// GetUserByEmail scans the users partition for a matching email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (domain.AdminUser, error) {
	filter := "PartitionKey eq '" + partUsers + "' and Email eq '" + escapeFilterValue(email) + "'"
	pager := s.users.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return domain.AdminUser{}, err
		}
		for _, raw := range resp.Entities {
			var ent userEntity
			if err := json.Unmarshal(raw, &ent); err != nil {
				return domain.AdminUser{}, err
			}
			return userFromEntity(ent), nil
		}
	}
	return domain.AdminUser{}, ErrNotFound
}

func (s *Storage) InsertUser(ctx context.Context, u domain.AdminUser) error {
	return insertEntity(ctx, s.users, userToEntity(u))
}

// CountUsers reports how many admin accounts exist.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	ents, err := listEntities[userEntity](ctx, s.users, partUsers)
	if err != nil {
		return 0, err
	}
	return len(ents), nil
}
