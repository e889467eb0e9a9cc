package api

import (
	"github.com/rpupo63/portfolio-backend/database"
	"github.com/rpupo63/portfolio-backend/services"
)

// Services are the collaborators the HTTP layer dispatches to.
type Services struct {
	DB          database.Database
	Auth        *services.AuthService
	Content     *services.ContentService
	Interaction *services.InteractionService
	About       *services.AboutService
	Dashboard   *services.DashboardService
	GitHub      *services.GitHubSyncService
}

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler        authHandler
	projectHandler     projectHandler
	achievementHandler achievementHandler
	aboutHandler       aboutHandler
	adminHandler       adminHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}

// StatusResponse acknowledges an operation with no other payload
type StatusResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message,omitempty"`
}
