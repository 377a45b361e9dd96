package simplesite

// Static fallbacks used by the resolver when a content key is absent or empty
const (
	DefaultHeroTitle    = "Building Dreams, Creating Spaces"
	DefaultHeroSubtitle = "Your trusted partner in construction and renovation."
	DefaultHeroImageURL = "/assets/rozelle.jpg"

	DefaultServicesIntroTitle = "Our Services"
	DefaultServicesIntroText  = "We offer a wide range of construction services."
	DefaultServiceLink        = "#contact"

	DefaultProjectsIntroTitle = "Recent Projects"
	DefaultProjectsIntroText  = "Take a look at some of our recent work."

	DefaultAboutTitle    = "About Us"
	DefaultAboutText     = "Learn more about our company and values."
	DefaultAboutImageURL = "/assets/rozelle.jpg"

	DefaultContactHeadline  = "Ready to Start Your Project?"
	DefaultContactIntro     = "From concept to completion, we're here to help bring your vision to life. Our expert team specializes in turning your ideas into stunning reality."
	DefaultContactAddress   = "PO BOX 821\nMarrickville, NSW 2204"
	DefaultContactPhone     = "0404 289 437"
	DefaultContactEmail     = "contact@lushconstructions.com"
	DefaultContactHours     = "Monday - Friday: 7am - 5pm\nSaturday: By appointment"
	DefaultContactABN       = "99 652 947 528"
	DefaultContactACN       = "141 565 746"
	DefaultContactLicense   = "4632530"
	DefaultContactInstagram = "https://www.instagram.com/lushconstructions"

	DefaultMetaTitle       = "Lush Constructions"
	DefaultMetaDescription = "High-Quality Solutions for Home & Office Improvement"
)

// ServiceCardDefault is the fallback title and image of one service card
type ServiceCardDefault struct {
	Title string
	Image string
}

// DefaultServiceCards returns the fallbacks for service_1 to service_4
func DefaultServiceCards() []ServiceCardDefault {
	return []ServiceCardDefault{
		{Title: "Kitchens", Image: "/assets/pic09-By9toE8x.png"},
		{Title: "Bathrooms", Image: "/assets/pic06-BnCQnmx7.png"},
		{Title: "Roofing", Image: "/assets/pic13-C3BImLY9.png"},
		{Title: "Renovations", Image: "/assets/pic04-CxD2NUJX.png"},
	}
}

// seedContent is written by SeedDefaults for keys that are missing or empty
var seedContent = map[string]string{
	"hero_title":    DefaultHeroTitle,
	"hero_subtitle": DefaultHeroSubtitle,
	SectionOrderKey: "hero,services,projects,about,contact",
}
