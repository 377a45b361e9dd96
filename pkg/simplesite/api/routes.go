package api

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts the public API at /api/v1, the admin API at /api/v1/admin
// and uploaded images at /assets
func Register(r chi.Router, site *SiteHandler, admin *AdminHandler) {
	r.Mount("/api/v1/admin", admin.Routes())
	r.Mount("/api/v1", site.Routes())
	r.Mount("/assets", site.AssetRoutes())
}
