package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type achievementHandler struct {
	responder Responder
	logger    zerolog.Logger
	content   *services.ContentService
	maxUpload int64
}

func newAchievementHandler(content *services.ContentService, maxUpload int64) achievementHandler {
	logger := log.With().Str("handlerName", "achievementHandler").Logger()

	return achievementHandler{
		responder: NewResponder(logger),
		logger:    logger,
		content:   content,
		maxUpload: maxUpload,
	}
}

// AchievementCollection represents a list of achievements
type AchievementCollection struct {
	Achievements []*models.Achievement `json:"achievements"`
	Total        int                   `json:"total"`
}

func newAchievementCollection(achievements []*models.Achievement) AchievementCollection {
	if achievements == nil {
		achievements = []*models.Achievement{}
	}
	return AchievementCollection{Achievements: achievements, Total: len(achievements)}
}

// getPublishedAchievements lists published achievements, most recent first
// @Summary List achievements
// @Tags Achievements
// @Produce json
// @Param category query string false "Exact category"
// @Success 200 {object} AchievementCollection
// @Router /achievements [get]
func (h achievementHandler) getPublishedAchievements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievements, err := h.content.ListPublishedAchievements(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newAchievementCollection(achievements))
	}
}

func (h achievementHandler) getAllAchievements() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievements, err := h.content.ListAllAchievements(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, newAchievementCollection(achievements))
	}
}

func (h achievementHandler) getAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievementID, err := uuidParam(r, "achievementID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		achievement, err := h.content.GetAchievement(r.Context(), ctxGetIdentity(r.Context()), achievementID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, achievement)
	}
}

// createAchievement creates a new achievement
// @Summary Create achievement
// @Tags Admin
// @Accept json,mpfd
// @Produce json
// @Param achievement body services.AchievementInput true "Achievement data"
// @Success 201 {object} models.Achievement
// @Failure 400 {object} ErrorResponse "Invalid achievement data"
// @Failure 403 {object} ErrorResponse "Owner only"
// @Router /admin/achievements [post]
func (h achievementHandler) createAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.AchievementInput
		image, err := decodeInput(w, r, &in, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in.Image = image

		achievement, err := h.content.CreateAchievement(r.Context(), ctxGetIdentity(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteCreated(w, achievement)
	}
}

func (h achievementHandler) updateAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievementID, err := uuidParam(r, "achievementID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		var in services.AchievementInput
		image, err := decodeInput(w, r, &in, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in.Image = image

		achievement, err := h.content.UpdateAchievement(r.Context(), ctxGetIdentity(r.Context()), achievementID, in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, achievement)
	}
}

func (h achievementHandler) deleteAchievement() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		achievementID, err := uuidParam(r, "achievementID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.content.DeleteAchievement(r.Context(), ctxGetIdentity(r.Context()), achievementID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "achievement deleted successfully"})
	}
}
