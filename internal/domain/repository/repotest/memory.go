// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"showcase/internal/common"
	"showcase/internal/domain/model"
	"showcase/internal/domain/repository"
)

var (
	_ repository.AdminRepository        = (*AdminRepo)(nil)
	_ repository.CreatorRepository      = (*CreatorRepo)(nil)
	_ repository.ProjectRepository      = (*ProjectRepo)(nil)
	_ repository.CollaboratorRepository = (*CollaboratorRepo)(nil)
	_ repository.RatingRepository       = (*RatingRepo)(nil)
	_ repository.ContactRepository      = (*ContactRepo)(nil)
	_ repository.MessageRepository      = (*MessageRepo)(nil)
)

type AdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.Admin
}

func NewAdminRepo() *AdminRepo {
	return &AdminRepo{admins: map[string]*model.Admin{}}
}

func (f *AdminRepo) Create(_ context.Context, a *model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.admins {
		if strings.EqualFold(existing.Email, a.Email) {
			return common.ErrConflict
		}
	}
	cp := *a
	f.admins[a.ID] = &cp
	return nil
}

func (f *AdminRepo) FindByEmail(_ context.Context, email string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *AdminRepo) FindByID(_ context.Context, id string) (*model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *AdminRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return common.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

type CreatorRepo struct {
	mu       sync.Mutex
	creators map[string]*model.Creator
}

func NewCreatorRepo(creators ...model.Creator) *CreatorRepo {
	f := &CreatorRepo{creators: map[string]*model.Creator{}}
	for i := range creators {
		c := creators[i]
		f.creators[c.ID] = &c
	}
	return f
}

func (f *CreatorRepo) Create(_ context.Context, c *model.Creator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.creators {
		if strings.EqualFold(existing.Email, c.Email) {
			return common.ErrConflict
		}
	}
	cp := *c
	f.creators[c.ID] = &cp
	return nil
}

func (f *CreatorRepo) FindByEmail(_ context.Context, email string) (*model.Creator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.creators {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *CreatorRepo) FindByID(_ context.Context, id string) (*model.Creator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creators[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *CreatorRepo) UpdateProfile(_ context.Context, c *model.Creator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.creators[c.ID]
	if !ok {
		return common.ErrNotFound
	}
	existing.DisplayName = c.DisplayName
	existing.Bio = c.Bio
	existing.AvatarURL = c.AvatarURL
	existing.SocialLinks = c.SocialLinks
	return nil
}

func (f *CreatorRepo) SetTermsAccepted(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creators[id]
	if !ok {
		return common.ErrNotFound
	}
	c.TermsAcceptedAt = &at
	return nil
}

func (f *CreatorRepo) ListPublic(_ context.Context, limit, offset int) ([]model.Creator, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := []model.Creator{}
	for _, c := range f.creators {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, limit, offset), len(all), nil
}

type ProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*model.Project
	Creates  int
	FailSlug bool // Every Create conflicts
}

func NewProjectRepo(projects ...model.Project) *ProjectRepo {
	f := &ProjectRepo{projects: map[string]*model.Project{}}
	for i := range projects {
		p := projects[i]
		f.projects[p.ID] = &p
	}
	return f
}

func (f *ProjectRepo) Create(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Creates++
	if f.FailSlug {
		return common.ErrConflict
	}
	for _, existing := range f.projects {
		if existing.Slug == p.Slug {
			return common.ErrConflict
		}
	}
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *ProjectRepo) Update(_ context.Context, p *model.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[p.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *ProjectRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *ProjectRepo) FindByID(_ context.Context, id string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *ProjectRepo) FindBySlug(_ context.Context, slug string) (*model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *ProjectRepo) List(_ context.Context, filter repository.ProjectFilter, limit, offset int) ([]model.Project, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Project{}
	for _, p := range f.projects {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if filter.Tag != "" && !containsString(p.Tags, filter.Tag) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, limit, offset), len(out), nil
}

func (f *ProjectRepo) ListForCreator(_ context.Context, creatorID string) ([]model.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Project{}
	for _, p := range f.projects {
		if p.CreatorID == creatorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *ProjectRepo) mutate(id string, fn func(p *model.Project)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(p)
	return nil
}

func (f *ProjectRepo) SetStatus(_ context.Context, id string, status model.ProjectStatus) error {
	return f.mutate(id, func(p *model.Project) { p.Status = status })
}

func (f *ProjectRepo) SetFeatured(_ context.Context, id string, featured bool) error {
	return f.mutate(id, func(p *model.Project) { p.Featured = featured })
}

func (f *ProjectRepo) SetTermsAccepted(_ context.Context, id string, at time.Time) error {
	return f.mutate(id, func(p *model.Project) { p.TermsAcceptedAt = &at })
}

func (f *ProjectRepo) SetOwner(_ context.Context, _ *sql.Tx, id, creatorID string) error {
	return f.mutate(id, func(p *model.Project) { p.CreatorID = creatorID })
}

type CollaboratorRepo struct {
	mu      sync.Mutex
	members map[string]map[string]bool
}

func NewCollaboratorRepo() *CollaboratorRepo {
	return &CollaboratorRepo{members: map[string]map[string]bool{}}
}

func (f *CollaboratorRepo) Add(_ context.Context, _ *sql.Tx, projectID, creatorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[projectID][creatorID] {
		return common.ErrConflict
	}
	if f.members[projectID] == nil {
		f.members[projectID] = map[string]bool{}
	}
	f.members[projectID][creatorID] = true
	return nil
}

func (f *CollaboratorRepo) Remove(_ context.Context, _ *sql.Tx, projectID, creatorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.members[projectID][creatorID] {
		return common.ErrNotFound
	}
	delete(f.members[projectID], creatorID)
	return nil
}

func (f *CollaboratorRepo) IsCollaborator(_ context.Context, projectID, creatorID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[projectID][creatorID], nil
}

func (f *CollaboratorRepo) ListByProject(_ context.Context, projectID string) ([]model.Collaborator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Collaborator{}
	for id := range f.members[projectID] {
		out = append(out, model.Collaborator{ProjectID: projectID, CreatorID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatorID < out[j].CreatorID })
	return out, nil
}

type ContactRepo struct {
	mu       sync.Mutex
	contacts map[string]*model.Contact
}

func NewContactRepo() *ContactRepo {
	return &ContactRepo{contacts: map[string]*model.Contact{}}
}

func (f *ContactRepo) Create(_ context.Context, c *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.CreatedAt = time.Now()
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *ContactRepo) FindByID(_ context.Context, id string) (*model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *ContactRepo) List(_ context.Context, status model.ContactStatus, limit, offset int) ([]model.Contact, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Contact{}
	for _, c := range f.contacts {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return paginate(out, limit, offset), len(out), nil
}

func (f *ContactRepo) SetStatus(_ context.Context, id string, status model.ContactStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return common.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *ContactRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.contacts, id)
	return nil
}

type MessageRepo struct {
	mu       sync.Mutex
	Messages map[string]*model.Message
}

func NewMessageRepo() *MessageRepo {
	return &MessageRepo{Messages: map[string]*model.Message{}}
}

func (f *MessageRepo) Create(_ context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.Messages[m.ID] = &cp
	return nil
}

func (f *MessageRepo) ListForCreator(_ context.Context, creatorID string, limit, offset int) ([]model.Message, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Message{}
	for _, m := range f.Messages {
		if m.CreatorID == creatorID {
			out = append(out, *m)
		}
	}
	return paginate(out, limit, offset), len(out), nil
}

func (f *MessageRepo) List(_ context.Context, limit, offset int) ([]model.Message, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Message{}
	for _, m := range f.Messages {
		out = append(out, *m)
	}
	return paginate(out, limit, offset), len(out), nil
}

func (f *MessageRepo) MarkRead(_ context.Context, id, creatorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.Messages[id]
	if !ok || m.CreatorID != creatorID {
		return common.ErrNotFound
	}
	m.Read = true
	return nil
}

func (f *MessageRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Messages[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.Messages, id)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type RatingRepo struct {
	mu      sync.Mutex
	Ratings []model.Rating
}

func NewRatingRepo() *RatingRepo {
	return &RatingRepo{}
}

// Create enforces UNIQUE(ip_hash, day_bucket) like the real table.
func (f *RatingRepo) Create(_ context.Context, r *model.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.Ratings {
		if existing.IPHash == r.IPHash && existing.DayBucket == r.DayBucket {
			return common.ErrConflict
		}
	}
	f.Ratings = append(f.Ratings, *r)
	return nil
}

func (f *RatingRepo) ExistsSince(_ context.Context, hash string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Ratings {
		if r.IPHash == hash && !r.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *RatingRepo) List(_ context.Context, limit, offset int) ([]model.Rating, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return paginate(f.Ratings, limit, offset), len(f.Ratings), nil
}

func (f *RatingRepo) Summary(context.Context) (*model.RatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &model.RatingSummary{Histogram: map[int]int{}}
	for v := model.MinRating; v <= model.MaxRating; v++ {
		s.Histogram[v] = 0
	}
	sum := 0
	for _, r := range f.Ratings {
		s.Histogram[r.Rating]++
		s.Count++
		sum += r.Rating
	}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s, nil
}

func (f *RatingRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.Ratings {
		if r.ID == id {
			f.Ratings = append(f.Ratings[:i], f.Ratings[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}
