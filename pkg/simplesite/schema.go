package simplesite

// InputType tells the admin panel which editor to render for a field
type InputType string

const (
	InputText     InputType = "text"
	InputRichText InputType = "richtext"
	InputImage    InputType = "image"
)

// FieldSchema describes one editable content key
type FieldSchema struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	InputType InputType `json:"input_type"`
}

// SectionSchema lists the editable fields of a home-page section
type SectionSchema struct {
	ID       SectionID     `json:"id"`
	Label    string        `json:"label"`
	ThemeKey string        `json:"theme_key"`
	Fields   []FieldSchema `json:"fields"`
}

var sectionSchemas = []SectionSchema{
	{
		ID:       SectionHero,
		Label:    "Hero",
		ThemeKey: "hero_title_theme",
		Fields: []FieldSchema{
			{Key: "hero_title", Label: "Hero Title", InputType: InputText},
			{Key: "hero_subtitle", Label: "Hero Subtitle", InputType: InputRichText},
			{Key: "hero_image_url", Label: "Hero Image", InputType: InputImage},
		},
	},
	{
		ID:       SectionServices,
		Label:    "Services",
		ThemeKey: "services_intro_title_theme",
		Fields: []FieldSchema{
			{Key: "services_intro_title", Label: "Intro Title", InputType: InputText},
			{Key: "services_intro_text", Label: "Intro Text", InputType: InputRichText},
			{Key: "service_1_title", Label: "Service 1 Title", InputType: InputText},
			{Key: "service_1_image", Label: "Service 1 Image", InputType: InputImage},
			{Key: "service_2_title", Label: "Service 2 Title", InputType: InputText},
			{Key: "service_2_image", Label: "Service 2 Image", InputType: InputImage},
			{Key: "service_3_title", Label: "Service 3 Title", InputType: InputText},
			{Key: "service_3_image", Label: "Service 3 Image", InputType: InputImage},
			{Key: "service_4_title", Label: "Service 4 Title", InputType: InputText},
			{Key: "service_4_image", Label: "Service 4 Image", InputType: InputImage},
		},
	},
	{
		ID:       SectionProjects,
		Label:    "Projects",
		ThemeKey: "projects_intro_title_theme",
		Fields: []FieldSchema{
			{Key: "projects_intro_title", Label: "Intro Title", InputType: InputText},
			{Key: "projects_intro_text", Label: "Intro Text", InputType: InputRichText},
		},
	},
	{
		ID:       SectionAbout,
		Label:    "About",
		ThemeKey: "about_title_theme",
		Fields: []FieldSchema{
			{Key: "about_title", Label: "Title", InputType: InputText},
			{Key: "about_text", Label: "Text", InputType: InputRichText},
			{Key: "about_image_url", Label: "Image", InputType: InputImage},
		},
	},
	{
		ID:       SectionContact,
		Label:    "Contact",
		ThemeKey: "contact_title_theme",
		Fields: []FieldSchema{
			{Key: "contact_headline", Label: "Headline", InputType: InputText},
			{Key: "contact_intro", Label: "Intro Text", InputType: InputRichText},
			{Key: "contact_address", Label: "Address", InputType: InputText},
			{Key: "contact_phone", Label: "Phone", InputType: InputText},
			{Key: "contact_email", Label: "Email", InputType: InputText},
			{Key: "contact_hours", Label: "Hours", InputType: InputText},
			{Key: "contact_abn", Label: "ABN", InputType: InputText},
			{Key: "contact_acn", Label: "ACN", InputType: InputText},
			{Key: "contact_license", Label: "License", InputType: InputText},
			{Key: "contact_instagram", Label: "Instagram", InputType: InputText},
		},
	},
}

// SectionSchemas returns the static schemas in default section order
func SectionSchemas() []SectionSchema {
	out := make([]SectionSchema, len(sectionSchemas))
	for i, s := range sectionSchemas {
		s.Fields = append([]FieldSchema(nil), s.Fields...)
		out[i] = s
	}
	return out
}

// SchemaFor returns the schema of a section
func SchemaFor(id SectionID) (SectionSchema, bool) {
	for _, s := range sectionSchemas {
		if s.ID == id {
			return s, true
		}
	}
	return SectionSchema{}, false
}
