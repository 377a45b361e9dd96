package simplesite

import (
	"fmt"

	"github.com/tendant/simple-site/pkg/simplesite/richtext"
)

// Block is one resolved home-page section
type Block struct {
	ID    SectionID `json:"id"`
	Theme string    `json:"theme"`
	Props any       `json:"props"`
}

// HeroProps are the resolved fields of the hero section
type HeroProps struct {
	Title    string        `json:"title"`
	Subtitle richtext.Text `json:"subtitle"`
	ImageURL string        `json:"image_url"`
}

// ServiceCard is one entry of the services grid
type ServiceCard struct {
	Title string `json:"title"`
	Image string `json:"image"`
	Link  string `json:"link"`
}

// ServicesProps are the resolved fields of the services section
type ServicesProps struct {
	IntroTitle string        `json:"intro_title"`
	IntroText  richtext.Text `json:"intro_text"`
	Services   []ServiceCard `json:"services"`
}

// ProjectsProps are the resolved fields of the projects section
type ProjectsProps struct {
	IntroTitle string        `json:"intro_title"`
	IntroText  richtext.Text `json:"intro_text"`
	Projects   []*Project    `json:"projects"`
}

// AboutProps are the resolved fields of the about section
type AboutProps struct {
	Title    string        `json:"title"`
	Text     richtext.Text `json:"text"`
	ImageURL string        `json:"image_url"`
}

// ContactProps are the resolved fields of the contact section
type ContactProps struct {
	Headline  string        `json:"headline"`
	Intro     richtext.Text `json:"intro"`
	Address   string        `json:"address"`
	Phone     string        `json:"phone"`
	Email     string        `json:"email"`
	Hours     string        `json:"hours"`
	ABN       string        `json:"abn"`
	ACN       string        `json:"acn"`
	License   string        `json:"license"`
	Instagram string        `json:"instagram"`
}

// PageMeta holds the document title and description of the home page
type PageMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HomePage is everything the front end needs to paint the home page
type HomePage struct {
	Meta     PageMeta `json:"meta"`
	Sections []Block  `json:"sections"`
}

// ResolveHome resolves page metadata and the ordered section list
func ResolveHome(content map[string]string, projects []*Project) *HomePage {
	return &HomePage{
		Meta:     ResolvePageMeta(content),
		Sections: Resolve(content, projects),
	}
}

// ResolvePageMeta returns the page title and description with fallbacks
func ResolvePageMeta(content map[string]string) PageMeta {
	return PageMeta{
		Title:       valueOr(content, MetaTitleKey, DefaultMetaTitle),
		Description: valueOr(content, MetaDescriptionKey, DefaultMetaDescription),
	}
}

// Resolve decides which sections render, in what order, and with what props.
//
// A section is present when any of its fields holds a non-empty value. The
// projects section is present only when projects is non-empty and contact is
// always present. The stored order keeps ids that are canonical and present,
// first occurrence winning; sections it leaves out are not rendered. Without
// a usable stored order the default order applies. Resolve never fails: the
// result always contains at least one section.
func Resolve(content map[string]string, projects []*Project) []Block {
	present := make(map[SectionID]bool, 5)
	for _, id := range DefaultSectionOrder() {
		present[id] = isPresent(id, content, projects)
	}

	var order []string
	if raw := content[SectionOrderKey]; raw != "" {
		order = ParseSectionOrder(raw)
	}
	if len(order) == 0 {
		order = defaultOrderIDs()
	}

	blocks := orderedBlocks(order, present, content, projects)

	// A stored order naming only unknown or absent sections falls back to
	// the default order.
	if len(blocks) == 0 {
		blocks = orderedBlocks(defaultOrderIDs(), present, content, projects)
	}
	return blocks
}

func orderedBlocks(order []string, present map[SectionID]bool, content map[string]string, projects []*Project) []Block {
	blocks := make([]Block, 0, len(present))
	seen := make(map[SectionID]bool, len(present))
	for _, raw := range order {
		id := SectionID(raw)
		if !IsSectionID(raw) || !present[id] || seen[id] {
			continue
		}
		seen[id] = true
		blocks = append(blocks, resolveBlock(id, content, projects))
	}
	return blocks
}

func defaultOrderIDs() []string {
	ids := DefaultSectionOrder()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func isPresent(id SectionID, content map[string]string, projects []*Project) bool {
	switch id {
	case SectionProjects:
		return len(projects) > 0
	case SectionContact:
		return true
	}
	schema, ok := SchemaFor(id)
	if !ok {
		return false
	}
	for _, f := range schema.Fields {
		if content[f.Key] != "" {
			return true
		}
	}
	return false
}

func resolveBlock(id SectionID, content map[string]string, projects []*Project) Block {
	block := Block{ID: id, Theme: ThemeLight}
	if schema, ok := SchemaFor(id); ok {
		block.Theme = resolveTheme(content[schema.ThemeKey])
	}

	switch id {
	case SectionHero:
		block.Props = HeroProps{
			Title:    valueOr(content, "hero_title", DefaultHeroTitle),
			Subtitle: textOr(content, "hero_subtitle", DefaultHeroSubtitle),
			ImageURL: valueOr(content, "hero_image_url", DefaultHeroImageURL),
		}
	case SectionServices:
		defaults := DefaultServiceCards()
		cards := make([]ServiceCard, len(defaults))
		for i, d := range defaults {
			cards[i] = ServiceCard{
				Title: valueOr(content, fmt.Sprintf("service_%d_title", i+1), d.Title),
				Image: valueOr(content, fmt.Sprintf("service_%d_image", i+1), d.Image),
				Link:  DefaultServiceLink,
			}
		}
		block.Props = ServicesProps{
			IntroTitle: valueOr(content, "services_intro_title", DefaultServicesIntroTitle),
			IntroText:  textOr(content, "services_intro_text", DefaultServicesIntroText),
			Services:   cards,
		}
	case SectionProjects:
		list := make([]*Project, len(projects))
		copy(list, projects)
		block.Props = ProjectsProps{
			IntroTitle: valueOr(content, "projects_intro_title", DefaultProjectsIntroTitle),
			IntroText:  textOr(content, "projects_intro_text", DefaultProjectsIntroText),
			Projects:   list,
		}
	case SectionAbout:
		block.Props = AboutProps{
			Title:    valueOr(content, "about_title", DefaultAboutTitle),
			Text:     textOr(content, "about_text", DefaultAboutText),
			ImageURL: valueOr(content, "about_image_url", DefaultAboutImageURL),
		}
	case SectionContact:
		block.Props = ContactProps{
			Headline:  valueOr(content, "contact_headline", DefaultContactHeadline),
			Intro:     textOr(content, "contact_intro", DefaultContactIntro),
			Address:   valueOr(content, "contact_address", DefaultContactAddress),
			Phone:     valueOr(content, "contact_phone", DefaultContactPhone),
			Email:     valueOr(content, "contact_email", DefaultContactEmail),
			Hours:     valueOr(content, "contact_hours", DefaultContactHours),
			ABN:       valueOr(content, "contact_abn", DefaultContactABN),
			ACN:       valueOr(content, "contact_acn", DefaultContactACN),
			License:   valueOr(content, "contact_license", DefaultContactLicense),
			Instagram: valueOr(content, "contact_instagram", DefaultContactInstagram),
		}
	}
	return block
}

func resolveTheme(v string) string {
	if v == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func valueOr(content map[string]string, key, fallback string) string {
	if v := content[key]; v != "" {
		return v
	}
	return fallback
}

// textOr resolves a rich-text field; the fallback is always plain text
func textOr(content map[string]string, key, fallback string) richtext.Text {
	if v := content[key]; v != "" {
		return richtext.Resolve(v)
	}
	return richtext.Plain(fallback)
}
