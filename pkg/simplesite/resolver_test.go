package simplesite_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/richtext"
)

func blockIDs(blocks []simplesite.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = string(b.ID)
	}
	return ids
}

func fullContent() map[string]string {
	return map[string]string{
		"hero_title":           "A",
		"services_intro_title": "B",
		"about_title":          "C",
	}
}

func featured() []*simplesite.Project {
	return []*simplesite.Project{{ID: 1, Title: "Deck", IsFeatured: true, Published: true}}
}

func TestResolve_EmptyContentFallsBack(t *testing.T) {
	blocks := simplesite.Resolve(map[string]string{}, nil)
	require.Equal(t, []string{"contact"}, blockIDs(blocks))

	props, ok := blocks[0].Props.(simplesite.ContactProps)
	require.True(t, ok)
	assert.Equal(t, simplesite.DefaultContactHeadline, props.Headline)
	assert.Equal(t, richtext.KindPlain, props.Intro.Kind)
	assert.Equal(t, simplesite.DefaultContactIntro, props.Intro.Plain)
	assert.Equal(t, simplesite.DefaultContactAddress, props.Address)
	assert.Equal(t, simplesite.DefaultContactPhone, props.Phone)
	assert.Equal(t, simplesite.DefaultContactEmail, props.Email)
	assert.Equal(t, simplesite.DefaultContactHours, props.Hours)
	assert.Equal(t, simplesite.DefaultContactABN, props.ABN)
	assert.Equal(t, simplesite.DefaultContactACN, props.ACN)
	assert.Equal(t, simplesite.DefaultContactLicense, props.License)
	assert.Equal(t, simplesite.DefaultContactInstagram, props.Instagram)
	assert.Equal(t, simplesite.ThemeLight, blocks[0].Theme)
}

func TestResolve_EverySectionHasDefaults(t *testing.T) {
	// One unrelated field per section makes it present while every other
	// field is left to its fallback.
	content := map[string]string{
		"hero_image_url":  "/x.jpg",
		"service_4_image": "/y.jpg",
		"about_image_url": "/z.jpg",
	}
	blocks := simplesite.Resolve(content, featured())
	require.Equal(t, []string{"hero", "services", "projects", "about", "contact"}, blockIDs(blocks))

	hero := blocks[0].Props.(simplesite.HeroProps)
	assert.Equal(t, simplesite.DefaultHeroTitle, hero.Title)
	assert.Equal(t, simplesite.DefaultHeroSubtitle, hero.Subtitle.Plain)
	assert.Equal(t, "/x.jpg", hero.ImageURL)

	services := blocks[1].Props.(simplesite.ServicesProps)
	assert.Equal(t, simplesite.DefaultServicesIntroTitle, services.IntroTitle)
	assert.Equal(t, simplesite.DefaultServicesIntroText, services.IntroText.Plain)
	require.Len(t, services.Services, 4)
	assert.Equal(t, "Kitchens", services.Services[0].Title)
	assert.Equal(t, "/assets/pic09-By9toE8x.png", services.Services[0].Image)
	assert.Equal(t, "Renovations", services.Services[3].Title)
	assert.Equal(t, "/y.jpg", services.Services[3].Image)
	for _, card := range services.Services {
		assert.Equal(t, "#contact", card.Link)
	}

	projects := blocks[2].Props.(simplesite.ProjectsProps)
	assert.Equal(t, simplesite.DefaultProjectsIntroTitle, projects.IntroTitle)
	assert.Equal(t, simplesite.DefaultProjectsIntroText, projects.IntroText.Plain)
	require.Len(t, projects.Projects, 1)
	assert.Equal(t, "Deck", projects.Projects[0].Title)

	about := blocks[3].Props.(simplesite.AboutProps)
	assert.Equal(t, simplesite.DefaultAboutTitle, about.Title)
	assert.Equal(t, simplesite.DefaultAboutText, about.Text.Plain)
	assert.Equal(t, "/z.jpg", about.ImageURL)
}

func TestResolve_Order(t *testing.T) {
	allPresent := fullContent()

	tests := []struct {
		name     string
		order    string
		projects []*simplesite.Project
		expected []string
	}{
		{
			name:     "stored order is kept and omitted sections are dropped",
			order:    "about,contact,hero",
			projects: featured(),
			expected: []string{"about", "contact", "hero"},
		},
		{
			name:     "unknown ids are ignored",
			order:    "hero,bogus,contact",
			projects: featured(),
			expected: []string{"hero", "contact"},
		},
		{
			name:     "duplicates collapse to the first occurrence",
			order:    "hero,hero,contact",
			projects: featured(),
			expected: []string{"hero", "contact"},
		},
		{
			name:     "projects without projects is absent",
			order:    "projects,hero,contact",
			projects: nil,
			expected: []string{"hero", "contact"},
		},
		{
			name:     "whitespace around ids is trimmed",
			order:    " contact , hero ",
			projects: nil,
			expected: []string{"contact", "hero"},
		},
		{
			name:     "json array encoding",
			order:    `["services","hero"]`,
			projects: nil,
			expected: []string{"services", "hero"},
		},
		{
			name:     "empty order uses the default",
			order:    "",
			projects: featured(),
			expected: []string{"hero", "services", "projects", "about", "contact"},
		},
		{
			name:     "order of only unusable ids uses the default",
			order:    "bogus,projects",
			projects: nil,
			expected: []string{"hero", "services", "about", "contact"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := map[string]string{}
			for k, v := range allPresent {
				content[k] = v
			}
			content[simplesite.SectionOrderKey] = tt.order

			blocks := simplesite.Resolve(content, tt.projects)
			assert.Equal(t, tt.expected, blockIDs(blocks))
		})
	}
}

func TestResolve_FullContentDefaultOrder(t *testing.T) {
	blocks := simplesite.Resolve(fullContent(), featured())
	assert.Equal(t, []string{"hero", "services", "projects", "about", "contact"}, blockIDs(blocks))

	hero := blocks[0].Props.(simplesite.HeroProps)
	assert.Equal(t, "A", hero.Title)
	services := blocks[1].Props.(simplesite.ServicesProps)
	assert.Equal(t, "B", services.IntroTitle)
	about := blocks[3].Props.(simplesite.AboutProps)
	assert.Equal(t, "C", about.Title)
}

func TestResolve_AbsentSectionsAreSkipped(t *testing.T) {
	blocks := simplesite.Resolve(map[string]string{"about_text": "hi"}, nil)
	assert.Equal(t, []string{"about", "contact"}, blockIDs(blocks))
}

func TestResolve_RichTextFields(t *testing.T) {
	content := map[string]string{
		"hero_title":    "Title",
		"hero_subtitle": `{"root":{"children":[]}}`,
		"about_text":    "plain words",
	}
	blocks := simplesite.Resolve(content, nil)
	require.Equal(t, []string{"hero", "about", "contact"}, blockIDs(blocks))

	hero := blocks[0].Props.(simplesite.HeroProps)
	assert.Equal(t, richtext.KindRichText, hero.Subtitle.Kind)
	assert.JSONEq(t, `{"root":{"children":[]}}`, string(hero.Subtitle.Data))

	about := blocks[1].Props.(simplesite.AboutProps)
	assert.Equal(t, richtext.KindPlain, about.Text.Kind)
	assert.Equal(t, "plain words", about.Text.Plain)
}

func TestResolve_Themes(t *testing.T) {
	content := map[string]string{
		"hero_title":          "Title",
		"hero_title_theme":    "dark",
		"about_title":         "About",
		"about_title_theme":   "purple",
		"contact_title_theme": "light",
	}
	blocks := simplesite.Resolve(content, nil)
	require.Equal(t, []string{"hero", "about", "contact"}, blockIDs(blocks))
	assert.Equal(t, simplesite.ThemeDark, blocks[0].Theme)
	assert.Equal(t, simplesite.ThemeLight, blocks[1].Theme)
	assert.Equal(t, simplesite.ThemeLight, blocks[2].Theme)
}

func TestResolve_DoesNotShareProjectSlice(t *testing.T) {
	projects := featured()
	blocks := simplesite.Resolve(map[string]string{}, projects)
	require.Equal(t, []string{"projects", "contact"}, blockIDs(blocks))

	projects[0] = &simplesite.Project{ID: 2, Title: "Other"}
	props := blocks[0].Props.(simplesite.ProjectsProps)
	assert.Equal(t, "Deck", props.Projects[0].Title)
}

func TestResolveHome(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		home := simplesite.ResolveHome(nil, nil)
		assert.Equal(t, simplesite.DefaultMetaTitle, home.Meta.Title)
		assert.Equal(t, simplesite.DefaultMetaDescription, home.Meta.Description)
		assert.Equal(t, []string{"contact"}, blockIDs(home.Sections))
	})

	t.Run("stored meta", func(t *testing.T) {
		home := simplesite.ResolveHome(map[string]string{
			"meta_title":       "Lush",
			"meta_description": "Builders",
		}, nil)
		assert.Equal(t, "Lush", home.Meta.Title)
		assert.Equal(t, "Builders", home.Meta.Description)
	})

	t.Run("json shape", func(t *testing.T) {
		home := simplesite.ResolveHome(map[string]string{"hero_title": "T"}, nil)
		b, err := json.Marshal(home)
		require.NoError(t, err)

		var decoded struct {
			Meta     map[string]string `json:"meta"`
			Sections []struct {
				ID    string                     `json:"id"`
				Theme string                     `json:"theme"`
				Props map[string]json.RawMessage `json:"props"`
			} `json:"sections"`
		}
		require.NoError(t, json.Unmarshal(b, &decoded))
		require.Len(t, decoded.Sections, 2)
		assert.Equal(t, "hero", decoded.Sections[0].ID)
		assert.JSONEq(t, `"T"`, string(decoded.Sections[0].Props["title"]))
		assert.JSONEq(t, `{"kind":"plain","data":"Your trusted partner in construction and renovation."}`,
			string(decoded.Sections[0].Props["subtitle"]))
	})
}
