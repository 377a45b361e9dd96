package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-site/pkg/simplesite"
)

// SiteHandler serves the public read API and uploaded images
type SiteHandler struct {
	service simplesite.Service
}

// NewSiteHandler creates a new public site handler
func NewSiteHandler(service simplesite.Service) *SiteHandler {
	return &SiteHandler{service: service}
}

// Routes returns the public API routes
func (h *SiteHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/home", h.GetHome)
	r.Get("/projects", h.ListProjects)
	r.Get("/projects/{projectID}", h.GetProject)
	r.Get("/sections", h.ListSections)

	return r
}

// AssetRoutes returns the routes serving uploaded images, meant to be mounted
// at /assets
func (h *SiteHandler) AssetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/images/{name}", h.GetImage)
	r.Head("/images/{name}", h.GetImage)
	return r
}

// GetHome returns the resolved home page. It never fails; missing content
// falls back to defaults.
func (h *SiteHandler) GetHome(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LoadHome(r.Context()))
}

// ListProjects returns one page of published projects
func (h *SiteHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	opts, err := parseProjectListOptions(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	opts.PublishedOnly = true

	projects, err := h.service.ListProjectsPage(r.Context(), opts)
	if err != nil {
		slog.Error("Failed to list projects", "err", err)
		projects = []*simplesite.Project{}
	}
	render.JSON(w, r, projects)
}

// GetProject returns a single published project
func (h *SiteHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to get project", err)
		return
	}
	if !project.Published {
		writeError(w, r, "Project not published", simplesite.ErrProjectNotFound)
		return
	}
	render.JSON(w, r, project)
}

// ListSections returns the editable section schemas
func (h *SiteHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, simplesite.SectionSchemas())
}

// GetImage streams an uploaded image from the image store
func (h *SiteHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	objectKey := simplesite.ImageKeyPrefix + chi.URLParam(r, "name")

	rc, meta, err := h.service.OpenImage(r.Context(), objectKey)
	if err != nil {
		if errors.Is(err, simplesite.ErrImageNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to open image", "object_key", objectKey, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if meta.ETag != "" {
		w.Header().Set("ETag", `"`+meta.ETag+`"`)
	}
	// object keys are unique per upload
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Failed to stream image", "object_key", objectKey, "err", err)
	}
}

func parseProjectListOptions(r *http.Request) (simplesite.ProjectListOptions, error) {
	var opts simplesite.ProjectListOptions
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("limit must be an integer")
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("offset must be an integer")
		}
		opts.Offset = n
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("featured must be true or false")
		}
		opts.Featured = &b
	}
	return opts, nil
}

func projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "projectID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		slog.Warn("Invalid project ID", "project_id", idStr)
		badRequest(w, r, "Invalid project ID")
		return 0, false
	}
	return id, true
}
