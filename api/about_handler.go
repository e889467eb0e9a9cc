package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type aboutHandler struct {
	responder Responder
	logger    zerolog.Logger
	about     *services.AboutService
}

func newAboutHandler(about *services.AboutService) aboutHandler {
	logger := log.With().Str("handlerName", "aboutHandler").Logger()

	return aboutHandler{
		responder: NewResponder(logger),
		logger:    logger,
		about:     about,
	}
}

// getHome returns the landing page content
// @Summary Home page
// @Tags Profile
// @Produce json
// @Success 200 {object} services.HomePage
// @Router /home [get]
func (h aboutHandler) getHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.about.Home(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

// getAbout returns the about text, displayed repositories and owner links
// @Summary About page
// @Tags Profile
// @Produce json
// @Success 200 {object} services.AboutPage
// @Router /about [get]
func (h aboutHandler) getAbout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.about.AboutPage(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, page)
	}
}

func (h aboutHandler) getContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := h.about.Contact(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if owner == nil {
			h.responder.WriteError(w, errs.NewNotFound("owner"))
			return
		}
		h.responder.WriteJSON(w, owner)
	}
}
