package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sessionCookieName = "session"

// sessionCookies sets and clears the HttpOnly session cookie.
type sessionCookies struct {
	secure bool
}

func newSessionCookies(secure bool) sessionCookies {
	return sessionCookies{secure: secure}
}

func (c sessionCookies) set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c sessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type authHandler struct {
	responder   Responder
	logger      zerolog.Logger
	auth        *services.AuthService
	interaction *services.InteractionService
	cookies     sessionCookies
	maxUpload   int64
}

func newAuthHandler(auth *services.AuthService, interaction *services.InteractionService, cookies sessionCookies, maxUpload int64) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		auth:        auth,
		interaction: interaction,
		cookies:     cookies,
		maxUpload:   maxUpload,
	}
}

// register creates a visitor account and logs it in
// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "Account data"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 409 {object} ErrorResponse "Username or email taken"
// @Router /auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegisterInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		res, err := h.auth.Register(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.cookies.set(w, res.Token, res.ExpiresAt)
		h.responder.WriteCreated(w, res)
	}
}

// login checks credentials and starts a session
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginInput true "Credentials"
// @Success 200 {object} services.AuthResult
// @Failure 401 {object} ErrorResponse "Invalid username or password"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.LoginInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if in.Next == "" {
			in.Next = r.URL.Query().Get("next")
		}

		res, err := h.auth.Authenticate(r.Context(), in)
		if err != nil {
			if errs.IsInvalidCredentialsError(err) {
				h.logger.Info().Str("username", in.Username).Str("remote_addr", clientAddr(r)).Msg("Failed login")
			}
			h.responder.WriteError(w, err)
			return
		}

		h.cookies.set(w, res.Token, res.ExpiresAt)
		h.responder.WriteJSON(w, res)
	}
}

// logout ends the current session and always clears the cookie
// @Summary Log out
// @Tags Auth
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.cookies.clear(w)
		if err := h.auth.Logout(r.Context(), ctxGetIdentity(r.Context())); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "logged out"})
	}
}

func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.CurrentUser(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// updateProfile edits the caller's own profile. Accepts JSON or a multipart form with an image.
// @Summary Update profile
// @Tags Auth
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Login required"
// @Router /me [put]
func (h authHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.ProfileInput
		image, err := decodeInput(w, r, &in, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		in.Image = image

		user, err := h.auth.UpdateProfile(r.Context(), ctxGetIdentity(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

func (h authHandler) uploadProfileImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ignored struct{}
		image, err := decodeMultipart(w, r, &ignored, h.maxUpload)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if image == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError(imageFormField))
			return
		}

		user, err := h.auth.UpdateProfileImage(r.Context(), ctxGetIdentity(r.Context()), *image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// LikedProjects lists the projects the caller has liked
type LikedProjects struct {
	ProjectIDs []string `json:"project_ids"`
}

func (h authHandler) likedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := h.interaction.LikedProjectIDs(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		out := LikedProjects{ProjectIDs: make([]string, 0, len(ids))}
		for _, id := range ids {
			out.ProjectIDs = append(out.ProjectIDs, id.String())
		}
		h.responder.WriteJSON(w, out)
	}
}
