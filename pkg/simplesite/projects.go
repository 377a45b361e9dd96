package simplesite

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultProjectPageSize is used when a listing does not ask for a limit
	DefaultProjectPageSize = 10

	// MaxProjectPageSize caps a single listing page
	MaxProjectPageSize = 100

	maxProjectTitleLength = 200
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func (s *service) ListProjects(ctx context.Context) ([]*Project, error) {
	projects, err := s.repository.ListProjects(ctx, ProjectQuery{})
	if err != nil {
		return nil, &ProjectError{Op: "list", Err: err}
	}
	return projects, nil
}

func (s *service) ListFeaturedProjects(ctx context.Context) ([]*Project, error) {
	projects, err := s.repository.ListProjects(ctx, ProjectQuery{Featured: boolPtr(true), PublishedOnly: true})
	if err != nil {
		return nil, &ProjectError{Op: "list_featured", Err: err}
	}
	return projects, nil
}

// ListProjectsPage returns one page of projects ordered by sort order, then
// newest first
func (s *service) ListProjectsPage(ctx context.Context, opts ProjectListOptions) ([]*Project, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultProjectPageSize
	}
	if limit > MaxProjectPageSize {
		limit = MaxProjectPageSize
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	projects, err := s.repository.ListProjects(ctx, ProjectQuery{
		Featured:      opts.Featured,
		PublishedOnly: opts.PublishedOnly,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, &ProjectError{Op: "list", Err: err}
	}
	return projects, nil
}

func (s *service) GetProject(ctx context.Context, id int64) (*Project, error) {
	project, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return nil, &ProjectError{ID: id, Op: "get", Err: err}
	}
	return project, nil
}

func (s *service) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	now := s.timestamp()
	project := &Project{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Details:     req.Details,
		ImageURL:    emptyToNil(req.ImageURL),
		Slug:        emptyToNil(req.Slug),
		Published:   true,
		IsFeatured:  req.IsFeatured,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Published != nil {
		project.Published = *req.Published
	}

	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.repository.CreateProject(ctx, project); err != nil {
		return nil, &ProjectError{Op: "create", Err: err}
	}
	return project, nil
}

func (s *service) UpdateProject(ctx context.Context, id int64, req UpdateProjectRequest) (*Project, error) {
	project, err := s.repository.GetProject(ctx, id)
	if err != nil {
		return nil, &ProjectError{ID: id, Op: "update", Err: err}
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Details != nil {
		project.Details = req.Details
	}
	if req.ImageURL != nil {
		project.ImageURL = emptyToNil(req.ImageURL)
	}
	if req.Slug != nil {
		project.Slug = emptyToNil(req.Slug)
	}
	if req.Published != nil {
		project.Published = *req.Published
	}
	if req.IsFeatured != nil {
		project.IsFeatured = *req.IsFeatured
	}
	if req.SortOrder != nil {
		project.SortOrder = *req.SortOrder
	}

	if err := validateProject(project); err != nil {
		return nil, err
	}

	project.UpdatedAt = s.timestamp()
	if err := s.repository.UpdateProject(ctx, project); err != nil {
		return nil, &ProjectError{ID: id, Op: "update", Err: err}
	}
	return project, nil
}

func (s *service) DeleteProject(ctx context.Context, id int64) (*DeleteResult, error) {
	rows, err := s.repository.DeleteProject(ctx, id)
	if err != nil {
		return nil, &ProjectError{ID: id, Op: "delete", Err: err}
	}
	if rows == 0 {
		return nil, &ProjectError{ID: id, Op: "delete", Err: ErrProjectNotFound}
	}
	return &DeleteResult{Success: true, RowsAffected: rows}, nil
}

func validateProject(p *Project) error {
	verr := &ValidationError{}
	switch {
	case p.Title == "":
		verr.Add("title", "title is required")
	case utf8.RuneCountInString(p.Title) > maxProjectTitleLength:
		verr.Add("title", "title must be at most 200 characters")
	}
	if p.SortOrder < 0 {
		verr.Add("sort_order", "sort order must not be negative")
	}
	if p.ImageURL != nil {
		if err := ValidateImageURL(*p.ImageURL); err != nil {
			verr.Add("image_url", err.Error())
		}
	}
	if p.Slug != nil && !slugPattern.MatchString(*p.Slug) {
		verr.Add("slug", "slug may contain lowercase letters, digits and single dashes")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// IsNotFound reports whether err means the requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrMediaNotFound) ||
		errors.Is(err, ErrImageNotFound)
}
