package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	dashboard *services.DashboardService
	about     *services.AboutService
	github    *services.GitHubSyncService
}

func newAdminHandler(dashboard *services.DashboardService, about *services.AboutService, github *services.GitHubSyncService) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		dashboard: dashboard,
		about:     about,
		github:    github,
	}
}

// SyncRequest names the GitHub account to mirror
type SyncRequest struct {
	Username string `json:"username" example:"octocat"`
}

// RepoCollection represents the mirrored repositories
type RepoCollection struct {
	Repos []*models.GitHubRepo `json:"repos"`
	Total int                  `json:"total"`
}

// getDashboard returns the owner's overview
// @Summary Dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} services.Dashboard
// @Failure 403 {object} ErrorResponse "Owner only"
// @Router /admin/dashboard [get]
func (h adminHandler) getDashboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.dashboard.Dashboard(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, d)
	}
}

// updateAbout writes the about text, creating it on first use
// @Summary Update about
// @Tags Admin
// @Accept json
// @Produce json
// @Param about body services.AboutInput true "About data"
// @Success 200 {object} models.AboutMe
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Owner only"
// @Router /admin/about [put]
func (h adminHandler) updateAbout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.AboutInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		about, err := h.about.UpsertAboutMe(r.Context(), ctxGetIdentity(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, about)
	}
}

// syncRepos replaces the repository mirror with the account's current repositories
// @Summary Sync GitHub repositories
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body SyncRequest true "GitHub username or profile URL"
// @Success 200 {object} services.SyncResult
// @Failure 400 {object} services.SyncResult "Invalid username"
// @Failure 404 {object} services.SyncResult "Account not found"
// @Failure 429 {object} services.SyncResult "Rate limited"
// @Failure 502 {object} services.SyncResult "GitHub error"
// @Failure 504 {object} services.SyncResult "GitHub timed out"
// @Router /admin/github/sync [post]
func (h adminHandler) syncRepos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in SyncRequest
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		res, err := h.github.SyncRepositories(r.Context(), ctxGetIdentity(r.Context()), in.Username)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		// failed syncs still answer with the result body, under the error's status
		var apiErr *errs.ApiErr
		if errors.As(res.Err(), &apiErr) {
			if errs.IsExternalServiceError(apiErr) {
				h.logger.Warn().Str("outcome", string(res.Outcome)).Msg(apiErr.GetFullError())
			}
			if errs.IsRateLimitError(apiErr) && res.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(apiErr.StatusCode)
		}
		h.responder.WriteJSON(w, res)
	}
}

func (h adminHandler) getRepos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repos, err := h.github.ListRepos(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if repos == nil {
			repos = []*models.GitHubRepo{}
		}
		h.responder.WriteJSON(w, RepoCollection{Repos: repos, Total: len(repos)})
	}
}

func (h adminHandler) toggleRepo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repoID, err := uuidParam(r, "repoID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		repo, err := h.github.ToggleRepoDisplay(r.Context(), ctxGetIdentity(r.Context()), repoID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, repo)
	}
}
