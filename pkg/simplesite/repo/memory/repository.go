package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/simple-site/pkg/simplesite"
)

type state struct {
	content     map[string]*simplesite.ContentEntry
	projects    map[int64]*simplesite.Project
	media       map[int64]*simplesite.Media
	nextProject int64
	nextMedia   int64
}

func newState() *state {
	return &state{
		content:     make(map[string]*simplesite.ContentEntry),
		projects:    make(map[int64]*simplesite.Project),
		media:       make(map[int64]*simplesite.Media),
		nextProject: 1,
		nextMedia:   1,
	}
}

func (s *state) clone() *state {
	c := &state{
		content:     make(map[string]*simplesite.ContentEntry, len(s.content)),
		projects:    make(map[int64]*simplesite.Project, len(s.projects)),
		media:       make(map[int64]*simplesite.Media, len(s.media)),
		nextProject: s.nextProject,
		nextMedia:   s.nextMedia,
	}
	for k, v := range s.content {
		cp := *v
		c.content[k] = &cp
	}
	for k, v := range s.projects {
		cp := *v
		c.projects[k] = &cp
	}
	for k, v := range s.media {
		cp := *v
		c.media[k] = &cp
	}
	return c
}

var (
	_ simplesite.Repository     = (*Repository)(nil)
	_ simplesite.ContentBatcher = (*Repository)(nil)
)

// Repository implements simplesite.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	state *state
	inTx  bool
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{state: newState()}
}

// WithTx runs fn against a copy of the data and keeps the copy only when fn
// succeeds. Other callers are blocked until the transaction finishes.
func (r *Repository) WithTx(ctx context.Context, fn func(simplesite.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &Repository{state: r.state.clone(), inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

// UpsertContentBatch applies every upsert or none of them
func (r *Repository) UpsertContentBatch(ctx context.Context, upserts []simplesite.ContentUpsert) error {
	return r.WithTx(ctx, func(tx simplesite.Repository) error {
		for _, u := range upserts {
			if _, err := tx.UpsertContent(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

// Content operations

func (r *Repository) ListContent(ctx context.Context) ([]*simplesite.ContentEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simplesite.ContentEntry, 0, len(r.state.content))
	for _, e := range r.state.content {
		cp := *e
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func (r *Repository) GetContent(ctx context.Context, key string) (*simplesite.ContentEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.state.content[key]
	if !exists {
		return nil, simplesite.ErrContentNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *Repository) UpsertContent(ctx context.Context, upsert simplesite.ContentUpsert) (*simplesite.ContentEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	row := upsert.Apply(r.state.content[upsert.Key])
	r.state.content[upsert.Key] = &row

	cp := row
	return &cp, nil
}

func (r *Repository) ClearContentMedia(ctx context.Context, mediaID *int64, url string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	for _, e := range r.state.content {
		byMedia := mediaID != nil && e.MediaID != nil && *e.MediaID == *mediaID
		byURL := url != "" && e.Value == url
		if byMedia || byURL {
			e.Value = ""
			e.MediaID = nil
			cleared++
		}
	}
	return cleared, nil
}

// Project operations

func (r *Repository) ListProjects(ctx context.Context, query simplesite.ProjectQuery) ([]*simplesite.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplesite.Project
	for _, p := range r.state.projects {
		if query.Featured != nil && p.IsFeatured != *query.Featured {
			continue
		}
		if query.PublishedOnly && !p.Published {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}

	// Sort by sort_order ascending, then newest first
	sort.Slice(result, func(i, j int) bool {
		if result[i].SortOrder != result[j].SortOrder {
			return result[i].SortOrder < result[j].SortOrder
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if query.Offset > 0 {
		if query.Offset >= len(result) {
			return []*simplesite.Project{}, nil
		}
		result = result[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(result) {
		result = result[:query.Limit]
	}
	if result == nil {
		result = []*simplesite.Project{}
	}
	return result, nil
}

func (r *Repository) GetProject(ctx context.Context, id int64) (*simplesite.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, exists := r.state.projects[id]
	if !exists {
		return nil, simplesite.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Repository) CreateProject(ctx context.Context, project *simplesite.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTaken(project.Slug, 0) {
		return simplesite.ErrDuplicateSlug
	}

	project.ID = r.state.nextProject
	r.state.nextProject++

	cp := *project
	r.state.projects[project.ID] = &cp
	return nil
}

func (r *Repository) UpdateProject(ctx context.Context, project *simplesite.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.state.projects[project.ID]
	if !exists {
		return simplesite.ErrProjectNotFound
	}
	if r.slugTaken(project.Slug, project.ID) {
		return simplesite.ErrDuplicateSlug
	}

	cp := *project
	cp.CreatedAt = existing.CreatedAt
	r.state.projects[project.ID] = &cp
	return nil
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.state.projects[id]; !exists {
		return 0, nil
	}
	delete(r.state.projects, id)
	return 1, nil
}

func (r *Repository) slugTaken(slug *string, exceptID int64) bool {
	if slug == nil {
		return false
	}
	for id, p := range r.state.projects {
		if id != exceptID && p.Slug != nil && *p.Slug == *slug {
			return true
		}
	}
	return false
}

// Media operations

func (r *Repository) CreateMedia(ctx context.Context, media *simplesite.Media) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	media.ID = r.state.nextMedia
	r.state.nextMedia++

	cp := *media
	r.state.media[media.ID] = &cp
	return nil
}

func (r *Repository) GetMediaByURL(ctx context.Context, url string) (*simplesite.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m := r.findMedia(url); m != nil {
		cp := *m
		return &cp, nil
	}
	return nil, simplesite.ErrMediaNotFound
}

func (r *Repository) DeleteMediaByURL(ctx context.Context, url string) (*simplesite.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.findMedia(url)
	if m == nil {
		return nil, simplesite.ErrMediaNotFound
	}
	delete(r.state.media, m.ID)
	cp := *m
	return &cp, nil
}

// findMedia returns the oldest media row for url
func (r *Repository) findMedia(url string) *simplesite.Media {
	var found *simplesite.Media
	for _, m := range r.state.media {
		if m.URL == url && (found == nil || m.ID < found.ID) {
			found = m
		}
	}
	return found
}
