package simplesite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/repo/memory"
	memorystorage "github.com/tendant/simple-site/pkg/simplesite/storage/memory"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestService(t *testing.T, opts ...simplesite.Option) (simplesite.Service, *memory.Repository) {
	t.Helper()
	repo := memory.New()
	options := append([]simplesite.Option{
		simplesite.WithRepository(repo),
		simplesite.WithImageStore(memorystorage.New()),
		simplesite.WithClock(fixedClock),
	}, opts...)
	svc, err := simplesite.New(options...)
	require.NoError(t, err)
	return svc, repo
}

func TestServiceCreation(t *testing.T) {
	tests := []struct {
		name        string
		options     []simplesite.Option
		expectError bool
	}{
		{
			name:        "no options should fail",
			options:     []simplesite.Option{},
			expectError: true,
		},
		{
			name:        "with repository should succeed",
			options:     []simplesite.Option{simplesite.WithRepository(memory.New())},
			expectError: false,
		},
		{
			name: "with repository and image store should succeed",
			options: []simplesite.Option{
				simplesite.WithRepository(memory.New()),
				simplesite.WithImageStore(memorystorage.New()),
				simplesite.WithPublicBaseURL("https://cdn.example.com/"),
				simplesite.WithMaxImageSize(1 << 20),
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := simplesite.New(tt.options...)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestUpdateContent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	results := svc.UpdateContent(ctx, map[string]simplesite.ContentFieldUpdate{
		"hero_title":     {Value: "Build better"},
		"Bad Key":        {Value: "x"},
		"hero_image_url": {Value: "javascript:alert(1)"},
		"about_text":     {Value: `{"type":"doc"}`},
	})
	require.Len(t, results, 4)

	byKey := make(map[string]simplesite.UpdateResult)
	for _, r := range results {
		byKey[r.Key] = r
	}
	assert.True(t, byKey["hero_title"].Success)
	assert.True(t, byKey["about_text"].Success)
	assert.False(t, byKey["Bad Key"].Success)
	assert.NotEmpty(t, byKey["Bad Key"].Error)
	assert.False(t, byKey["hero_image_url"].Success)

	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].Key, results[i].Key)
	}

	content := svc.GetAllContent(ctx)
	assert.Equal(t, map[string]string{
		"hero_title": "Build better",
		"about_text": `{"type":"doc"}`,
	}, content)

	failed := simplesite.FailedKeys(results)
	assert.Len(t, failed, 2)
	assert.Error(t, simplesite.FirstFailure(results))

	first, err := repo.GetContent(ctx, "hero_title")
	require.NoError(t, err)
	assert.Equal(t, fixedNow, first.UpdatedAt)
	assert.Equal(t, simplesite.DefaultContentPage, first.Page)
	assert.Equal(t, simplesite.DefaultContentType, first.Type)

	results = svc.UpdateContentValues(ctx, map[string]string{"hero_title": "Build better"})
	require.NoError(t, simplesite.FirstFailure(results))

	second, err := repo.GetContent(ctx, "hero_title")
	require.NoError(t, err)
	assert.Equal(t, "Build better", second.Value)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at must advance on rewrite")
}

func TestUpdateContent_Empty(t *testing.T) {
	svc, _ := newTestService(t)
	results := svc.UpdateContent(context.Background(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.NoError(t, simplesite.FirstFailure(results))
}

// flakyRepository fails every batch write and the single writes for the keys
// in failKeys
type flakyRepository struct {
	*memory.Repository
	failKeys map[string]bool
}

func (r *flakyRepository) UpsertContentBatch(ctx context.Context, upserts []simplesite.ContentUpsert) error {
	return errors.New("batch unavailable")
}

func (r *flakyRepository) UpsertContent(ctx context.Context, upsert simplesite.ContentUpsert) (*simplesite.ContentEntry, error) {
	if r.failKeys[upsert.Key] {
		return nil, errors.New("disk full")
	}
	return r.Repository.UpsertContent(ctx, upsert)
}

func TestUpdateContent_FallsBackToSingleWrites(t *testing.T) {
	repo := &flakyRepository{Repository: memory.New(), failKeys: map[string]bool{"about_title": true}}
	svc, err := simplesite.New(simplesite.WithRepository(repo), simplesite.WithClock(fixedClock))
	require.NoError(t, err)
	ctx := context.Background()

	results := svc.UpdateContentValues(ctx, map[string]string{
		"about_title": "About us",
		"hero_title":  "Hello",
	})
	require.Equal(t, []simplesite.UpdateResult{
		{Key: "about_title", Success: false, Error: "failed to save"},
		{Key: "hero_title", Success: true},
	}, results)

	content := svc.GetAllContent(ctx)
	assert.Equal(t, map[string]string{"hero_title": "Hello"}, content)
}

func TestReorderSections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ids, err := svc.ReorderSections(ctx, " about , hero ")
	require.NoError(t, err)
	assert.Equal(t, []simplesite.SectionID{simplesite.SectionAbout, simplesite.SectionHero}, ids)
	assert.Equal(t, "about,hero", svc.GetAllContent(ctx)[simplesite.SectionOrderKey])

	tests := []struct {
		name  string
		order string
	}{
		{name: "unknown section", order: "hero,gallery"},
		{name: "duplicate section", order: "hero,hero"},
		{name: "empty", order: " , "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReorderSections(ctx, tt.order)
			var verr *simplesite.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, simplesite.SectionOrderKey)
		})
	}

	assert.Equal(t, "about,hero", svc.GetAllContent(ctx)[simplesite.SectionOrderKey])
}

func TestSeedDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.UpdateContentValues(ctx, map[string]string{simplesite.SectionOrderKey: "contact,hero"})

	result, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hero_title", "hero_subtitle"}, result.Written)
	assert.Equal(t, "Successfully seeded 2 missing content items.", result.Message)

	content := svc.GetAllContent(ctx)
	assert.Equal(t, simplesite.DefaultHeroTitle, content["hero_title"])
	assert.Equal(t, "contact,hero", content[simplesite.SectionOrderKey], "existing values are kept")

	result, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Written)
	assert.Equal(t, "Default content already exists. No action taken.", result.Message)
}

func TestLoadHome(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.UpdateContentValues(ctx, map[string]string{
		"hero_title":       "Homes built to last",
		"meta_title":       "Lush | Builders",
		"contact_headline": "Call us",
	})

	published := false
	_, err := svc.CreateProject(ctx, simplesite.CreateProjectRequest{Title: "Featured", IsFeatured: true})
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, simplesite.CreateProjectRequest{Title: "Plain"})
	require.NoError(t, err)
	_, err = svc.CreateProject(ctx, simplesite.CreateProjectRequest{Title: "Draft", IsFeatured: true, Published: &published})
	require.NoError(t, err)

	home := svc.LoadHome(ctx)
	require.NotNil(t, home)
	assert.Equal(t, "Lush | Builders", home.Meta.Title)
	assert.Equal(t, simplesite.DefaultMetaDescription, home.Meta.Description)

	ids := make([]simplesite.SectionID, len(home.Sections))
	for i, b := range home.Sections {
		ids[i] = b.ID
	}
	assert.Equal(t, []simplesite.SectionID{simplesite.SectionHero, simplesite.SectionProjects, simplesite.SectionContact}, ids)

	projects, ok := home.Sections[1].Props.(simplesite.ProjectsProps)
	require.True(t, ok)
	require.Len(t, projects.Projects, 1)
	assert.Equal(t, "Featured", projects.Projects[0].Title)

	contact, ok := home.Sections[2].Props.(simplesite.ContactProps)
	require.True(t, ok)
	assert.Equal(t, "Call us", contact.Headline)
	assert.Equal(t, simplesite.DefaultContactPhone, contact.Phone)
}

// unavailableRepository fails every read
type unavailableRepository struct {
	*memory.Repository
}

func (r *unavailableRepository) ListContent(ctx context.Context) ([]*simplesite.ContentEntry, error) {
	return nil, errors.New("connection refused")
}

func (r *unavailableRepository) ListProjects(ctx context.Context, query simplesite.ProjectQuery) ([]*simplesite.Project, error) {
	return nil, errors.New("connection refused")
}

func TestLoadHome_StorageUnavailable(t *testing.T) {
	svc, err := simplesite.New(simplesite.WithRepository(&unavailableRepository{Repository: memory.New()}))
	require.NoError(t, err)
	ctx := context.Background()

	content := svc.GetAllContent(ctx)
	assert.NotNil(t, content)
	assert.Empty(t, content)

	home := svc.LoadHome(ctx)
	require.Len(t, home.Sections, 1)
	assert.Equal(t, simplesite.SectionContact, home.Sections[0].ID)
	assert.Equal(t, simplesite.DefaultMetaTitle, home.Meta.Title)

	_, err = svc.ListContentEntries(ctx)
	var cerr *simplesite.ContentError
	assert.ErrorAs(t, err, &cerr)

	_, err = svc.SeedDefaults(ctx)
	assert.Error(t, err)
}

func TestProjects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		negative := -1
		badURL := "ftp://example.com/x.png"
		badSlug := "Not A Slug"
		_, err := svc.CreateProject(ctx, simplesite.CreateProjectRequest{
			Title:     "   ",
			ImageURL:  &badURL,
			Slug:      &badSlug,
			SortOrder: negative,
		})
		var verr *simplesite.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "title")
		assert.Contains(t, verr.Fields, "image_url")
		assert.Contains(t, verr.Fields, "slug")
		assert.Contains(t, verr.Fields, "sort_order")
	})

	empty := ""
	slug := "kitchen-reno"
	created, err := svc.CreateProject(ctx, simplesite.CreateProjectRequest{
		Title:    "  Kitchen reno ",
		ImageURL: &empty,
		Slug:     &slug,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Kitchen reno", created.Title)
	assert.True(t, created.Published)
	assert.Nil(t, created.ImageURL)
	assert.Equal(t, fixedNow, created.CreatedAt)

	_, err = svc.CreateProject(ctx, simplesite.CreateProjectRequest{Title: "Other", Slug: &slug})
	assert.ErrorIs(t, err, simplesite.ErrDuplicateSlug)

	title := "Kitchen renovation"
	featured := true
	updated, err := svc.UpdateProject(ctx, created.ID, simplesite.UpdateProjectRequest{Title: &title, IsFeatured: &featured})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen renovation", updated.Title)
	assert.True(t, updated.IsFeatured)
	require.NotNil(t, updated.Slug)
	assert.Equal(t, "kitchen-reno", *updated.Slug)

	got, err := svc.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen renovation", got.Title)

	featuredList, err := svc.ListFeaturedProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, featuredList, 1)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateProject(ctx, simplesite.CreateProjectRequest{Title: "Filler", SortOrder: i + 1})
		require.NoError(t, err)
	}
	page, err := svc.ListProjectsPage(ctx, simplesite.ProjectListOptions{Limit: 2, Offset: -5})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, created.ID, page[0].ID)

	all, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	res, err := svc.DeleteProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, &simplesite.DeleteResult{Success: true, RowsAffected: 1}, res)

	_, err = svc.DeleteProject(ctx, created.ID)
	assert.True(t, simplesite.IsNotFound(err))

	_, err = svc.GetProject(ctx, created.ID)
	assert.True(t, simplesite.IsNotFound(err))

	_, err = svc.UpdateProject(ctx, created.ID, simplesite.UpdateProjectRequest{Title: &title})
	assert.True(t, simplesite.IsNotFound(err))
}
