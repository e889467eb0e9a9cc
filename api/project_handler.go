package api

import (
	"net/http"
	"strconv"

	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	content     *services.ContentService
	interaction *services.InteractionService
	maxUpload   int64
}

func newProjectHandler(content *services.ContentService, interaction *services.InteractionService, maxUpload int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		content:     content,
		interaction: interaction,
		maxUpload:   maxUpload,
	}
}

// ProjectCollection represents a list of projects
type ProjectCollection struct {
	Projects []*models.Project `json:"projects"`
	Total    int               `json:"total"`
}

func newProjectCollection(projects []*models.Project) ProjectCollection {
	if projects == nil {
		projects = []*models.Project{}
	}
	return ProjectCollection{Projects: projects, Total: len(projects)}
}

// CommentCollection represents the comments on a project
type CommentCollection struct {
	Comments []services.CommentView `json:"comments"`
	Total    int                    `json:"total"`
}

// CommentRequest is the body of a new comment
type CommentRequest struct {
	Content string `json:"content"`
}

// getPublishedProjects lists published projects, optionally filtered by category
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param category query string false "Exact category"
// @Success 200 {object} ProjectCollection
// @Router /projects [get]
func (h projectHandler) getPublishedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.content.ListPublishedProjects(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectCollection(projects))
	}
}

// getFeaturedProjects lists featured published projects
// @Summary List featured projects
// @Tags Projects
// @Produce json
// @Param limit query int false "Maximum number of projects (1-50, default 3)"
// @Success 200 {object} ProjectCollection
// @Router /projects/featured [get]
func (h projectHandler) getFeaturedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				h.responder.WriteValidationError(w, "limit", "limit must be a number")
				return
			}
			limit = n
		}

		projects, err := h.content.ListFeaturedProjects(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectCollection(projects))
	}
}

func (h projectHandler) getCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.content.ListCategories(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if categories == nil {
			categories = []string{}
		}
		h.responder.WriteJSON(w, map[string][]string{"categories": categories})
	}
}

// getProject returns a published project page with its counters and the caller's like state
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.ProjectDetail
// @Failure 400 {object} ErrorResponse "Invalid projectID"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		detail, err := h.content.GetPublishedProject(r.Context(), ctxGetIdentity(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

// getComments lists a project's comments, newest first
// @Summary List comments
// @Tags Interaction
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} CommentCollection
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID}/comments [get]
func (h projectHandler) getComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comments, err := h.interaction.ListComments(r.Context(), ctxGetIdentity(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if comments == nil {
			comments = []services.CommentView{}
		}
		h.responder.WriteJSON(w, CommentCollection{Comments: comments, Total: len(comments)})
	}
}

// addComment posts a comment as the caller
// @Summary Add comment
// @Tags Interaction
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param comment body CommentRequest true "Comment"
// @Success 201 {object} services.CommentView
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Login required"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID}/comments [post]
func (h projectHandler) addComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in CommentRequest
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.interaction.AddComment(r.Context(), ctxGetIdentity(r.Context()), projectID, in.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, comment)
	}
}

// toggleLike likes or unlikes a project for the caller
// @Summary Toggle like
// @Tags Interaction
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.LikeResult
// @Failure 401 {object} ErrorResponse "Login required"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{projectID}/like [post]
func (h projectHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		res, err := h.interaction.ToggleLike(r.Context(), ctxGetIdentity(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, res)
	}
}

// getAllProjects lists every project, drafts included
// @Summary List all projects (owner)
// @Tags Admin
// @Produce json
// @Success 200 {object} ProjectCollection
// @Failure 403 {object} ErrorResponse "Owner only"
// @Router /admin/projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.content.ListAllProjects(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newProjectCollection(projects))
	}
}

func (h projectHandler) getAnyProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.content.GetProject(r.Context(), ctxGetIdentity(r.Context()), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project
// @Summary Create project
// @Tags Admin
// @Accept json,mpfd
// @Produce json
// @Param project body services.ProjectInput true "Project data"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Invalid project data"
// @Failure 403 {object} ErrorResponse "Owner only"
// @Failure 415 {object} ErrorResponse "Image type not allowed"
// @Router /admin/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.ProjectInput
		image, err := decodeInput(w, r, &in, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in.Image = image

		project, err := h.content.CreateProject(r.Context(), ctxGetIdentity(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, project)
	}
}

// updateProject replaces a project's editable fields
// @Summary Update project
// @Tags Admin
// @Accept json,mpfd
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param project body services.ProjectInput true "Updated project data"
// @Success 200 {object} models.Project
// @Failure 400 {object} ErrorResponse "Invalid project data"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /admin/projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in services.ProjectInput
		image, err := decodeInput(w, r, &in, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in.Image = image

		project, err := h.content.UpdateProject(r.Context(), ctxGetIdentity(r.Context()), projectID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// deleteProject deletes a project together with its comments and likes
// @Summary Delete project
// @Tags Admin
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /admin/projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.content.DeleteProject(r.Context(), ctxGetIdentity(r.Context()), projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "project deleted successfully"})
	}
}
