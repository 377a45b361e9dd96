package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/session"
)

// Content intents accepted by POST /content
const (
	IntentUpdateTextContent = "updateTextContent"
	IntentReorderSections   = "reorderSections"
)

const maxFormMemory = 1 << 20

// AdminHandler serves the authenticated content management API
type AdminHandler struct {
	service     simplesite.Service
	signer      *session.Signer
	credentials session.Credentials
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service simplesite.Service, signer *session.Signer, credentials session.Credentials) *AdminHandler {
	return &AdminHandler{
		service:     service,
		signer:      signer,
		credentials: credentials,
	}
}

// Routes returns the admin routes. Everything except login and logout
// requires a session.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(session.RequireSession(h.signer))

		r.Get("/session", h.GetSession)

		r.Get("/content", h.GetContent)
		r.Post("/content", h.UpdateContent)

		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{projectID}", h.GetProject)
		r.Put("/projects/{projectID}", h.UpdateProject)
		r.Delete("/projects/{projectID}", h.DeleteProject)

		r.Get("/images", h.ListImages)
		r.Post("/images", h.UploadImage)
		r.Post("/images/select", h.SelectImage)
		r.Delete("/images/{name}", h.DeleteImage)

		r.Post("/seed", h.Seed)
	})

	return r
}

// SuccessResponse is the body of a successful admin mutation
type SuccessResponse struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message,omitempty"`
	Results []simplesite.UpdateResult `json:"results,omitempty"`
}

// LoginRequest is the login form
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks the admin credentials and sets the session cookie
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if isJSON(r) {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			badRequest(w, r, "Invalid request body")
			return
		}
	} else {
		if err := parseForm(r); err != nil {
			badRequest(w, r, "Invalid form data")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if !h.signer.IsEnabled() {
		slog.Error("Login attempted without a session secret configured")
	}
	if err := h.credentials.Check(req.Username, req.Password); err != nil || !h.signer.IsEnabled() {
		slog.Warn("Admin login failed", "username", req.Username)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Invalid credentials"})
		return
	}

	token, err := h.signer.Issue(req.Username)
	if err != nil {
		slog.Error("Failed to issue session", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to start session"})
		return
	}

	http.SetCookie(w, session.NewCookie(token, h.signer.MaxAge()))
	slog.Info("Admin logged in", "username", req.Username)
	render.JSON(w, r, SuccessResponse{Success: true, Message: "Logged in."})
}

// Logout clears the session cookie
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.ClearCookie())
	render.JSON(w, r, SuccessResponse{Success: true, Message: "You have been logged out."})
}

// GetSession reports the logged-in admin
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"success":  true,
		"username": session.UsernameFromContext(r.Context()),
	})
}

// GetContent returns every content entry keyed by content key
func (h *AdminHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListContentEntries(r.Context())
	if err != nil {
		writeError(w, r, "Failed to list content", err)
		return
	}

	content := make(map[string]*simplesite.ContentEntry, len(entries))
	for _, e := range entries {
		content[e.Key] = e
	}
	render.JSON(w, r, content)
}

// ContentRequest is the JSON form of POST /content. Content holds value-only
// writes; Updates may also set the classification columns and wins over
// Content for the same key.
type ContentRequest struct {
	Intent            string                                   `json:"intent"`
	Content           map[string]string                        `json:"content,omitempty"`
	Updates           map[string]simplesite.ContentFieldUpdate `json:"updates,omitempty"`
	HomeSectionsOrder *string                                  `json:"home_sections_order,omitempty"`
}

// UpdateContent dispatches on intent: updateTextContent saves fields,
// reorderSections stores the home-page section order
func (h *AdminHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeContentRequest(w, r)
	if !ok {
		return
	}

	switch req.Intent {
	case IntentReorderSections:
		h.reorderSections(w, r, req)
	case IntentUpdateTextContent, "":
		h.updateTextContent(w, r, req)
	default:
		badRequest(w, r, fmt.Sprintf("Unknown intent %q", req.Intent))
	}
}

func (h *AdminHandler) reorderSections(w http.ResponseWriter, r *http.Request, req ContentRequest) {
	if req.HomeSectionsOrder == nil {
		badRequest(w, r, "Invalid section order data.")
		return
	}

	ids, err := h.service.ReorderSections(r.Context(), *req.HomeSectionsOrder)
	if err != nil {
		writeError(w, r, "Failed to save section order", err)
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Section order saved.",
		"order":   ids,
	})
}

func (h *AdminHandler) updateTextContent(w http.ResponseWriter, r *http.Request, req ContentRequest) {
	updates := make(map[string]simplesite.ContentFieldUpdate, len(req.Content)+len(req.Updates))
	for k, v := range req.Content {
		updates[k] = simplesite.ContentFieldUpdate{Value: v}
	}
	for k, u := range req.Updates {
		updates[k] = u
	}

	if len(updates) == 0 {
		if req.Intent == IntentUpdateTextContent {
			render.JSON(w, r, SuccessResponse{Success: true, Message: "No text content changed."})
			return
		}
		badRequest(w, r, "No valid operation specified.")
		return
	}

	results := h.service.UpdateContent(r.Context(), updates)
	failed := simplesite.FailedKeys(results)
	if len(failed) > 0 {
		status := http.StatusInternalServerError
		msg := "Failed to save content."
		for _, reason := range failed {
			if reason != simplesite.SaveFailedMessage {
				status = http.StatusBadRequest
				msg = "Validation failed."
				break
			}
		}
		slog.Warn("Content update had failures", "failed", len(failed), "total", len(results))
		render.Status(r, status)
		render.JSON(w, r, ErrorResponse{Error: msg, Errors: failed, Results: results})
		return
	}

	msg := "Text content saved."
	if len(results) == 1 {
		msg = fmt.Sprintf("Saved changes for '%s'.", results[0].Key)
	}
	render.JSON(w, r, SuccessResponse{Success: true, Message: msg, Results: results})
}

func decodeContentRequest(w http.ResponseWriter, r *http.Request) (ContentRequest, bool) {
	var req ContentRequest
	if isJSON(r) {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			badRequest(w, r, "Invalid request body")
			return req, false
		}
		return req, true
	}

	if err := parseForm(r); err != nil {
		badRequest(w, r, "Invalid form data")
		return req, false
	}
	req.Intent = r.PostForm.Get("intent")
	if req.Intent == IntentReorderSections {
		if values, ok := r.PostForm[simplesite.SectionOrderKey]; ok && len(values) > 0 {
			req.HomeSectionsOrder = &values[0]
		}
		return req, true
	}

	req.Content = make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if key == "intent" || len(values) == 0 {
			continue
		}
		req.Content[key] = values[0]
	}
	return req, true
}

// ListProjects returns every project including unpublished ones
func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		writeError(w, r, "Failed to list projects", err)
		return
	}
	render.JSON(w, r, projects)
}

// CreateProject creates a project from a JSON body
func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req simplesite.CreateProjectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	project, err := h.service.CreateProject(r.Context(), req)
	if err != nil {
		writeError(w, r, "Failed to create project", err)
		return
	}

	slog.Info("Project created", "project_id", project.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, project)
}

// GetProject returns a project whether or not it is published
func (h *AdminHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to get project", err)
		return
	}
	render.JSON(w, r, project)
}

// UpdateProject applies a partial update from a JSON body
func (h *AdminHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	var req simplesite.UpdateProjectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, "Invalid request body")
		return
	}

	project, err := h.service.UpdateProject(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "Failed to update project", err)
		return
	}

	slog.Info("Project updated", "project_id", id)
	render.JSON(w, r, project)
}

// DeleteProject hard-deletes a project
func (h *AdminHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	result, err := h.service.DeleteProject(r.Context(), id)
	if err != nil {
		writeError(w, r, "Failed to delete project", err)
		return
	}

	slog.Info("Project deleted", "project_id", id)
	render.JSON(w, r, result)
}

// ListImages returns the image library
func (h *AdminHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.ListImages(r.Context())
	if err != nil {
		writeError(w, r, "Failed to list images", err)
		return
	}
	render.JSON(w, r, images)
}

// UploadImage accepts a multipart form with an "image" file and an optional
// content "key" to attach it to
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	maxSize := h.service.MaxImageSize()
	invalid := simplesite.NewInvalidImageError(maxSize).Error()

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+maxFormMemory)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			badRequest(w, r, invalid)
			return
		}
		badRequest(w, r, "Invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequest(w, r, invalid)
		return
	}
	defer file.Close()

	result, err := h.service.UploadImage(r.Context(), simplesite.UploadImageRequest{
		Key:         strings.TrimSpace(r.FormValue("key")),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		writeError(w, r, "Failed to upload image", err)
		return
	}

	slog.Info("Image uploaded", "object_key", result.ObjectKey, "key", result.Key)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]any{
		"success":    true,
		"url":        result.URL,
		"key":        result.Key,
		"object_key": result.ObjectKey,
		"media_id":   result.MediaID,
	})
}

// SelectImageRequest points a content key at a library image
type SelectImageRequest struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// SelectImage attaches an existing image to a content key
func (h *AdminHandler) SelectImage(w http.ResponseWriter, r *http.Request) {
	var req SelectImageRequest
	if isJSON(r) {
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			badRequest(w, r, "Invalid request body")
			return
		}
	} else {
		if err := parseForm(r); err != nil {
			badRequest(w, r, "Invalid form data")
			return
		}
		req.Key = r.PostForm.Get("key")
		req.URL = r.PostForm.Get("url")
	}

	result, err := h.service.SelectImage(r.Context(), strings.TrimSpace(req.Key), strings.TrimSpace(req.URL))
	if err != nil {
		writeError(w, r, "Failed to select image", err)
		return
	}
	render.JSON(w, r, map[string]any{
		"success":  true,
		"key":      result.Key,
		"url":      result.URL,
		"media_id": result.MediaID,
	})
}

// DeleteImage removes an image and clears the content that used it
func (h *AdminHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	objectKey := simplesite.ImageKeyPrefix + chi.URLParam(r, "name")
	if err := h.service.DeleteImage(r.Context(), objectKey); err != nil {
		writeError(w, r, "Failed to delete image", err)
		return
	}
	render.JSON(w, r, SuccessResponse{Success: true, Message: "Image deleted."})
}

// Seed writes default content for missing keys
func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SeedDefaults(r.Context())
	if err != nil {
		writeError(w, r, "Failed to seed content", err)
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": result.Message,
		"written": result.Written,
	})
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}
