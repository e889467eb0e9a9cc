package api

import "github.com/rpupo63/portfolio-backend/config"

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(svc Services, cfg map[string]string) *routeHandlers {
	maxUpload := int64(config.GetInt(cfg, "MAX_UPLOAD_BYTES", defaultMaxUploadBytes))
	cookies := newSessionCookies(config.GetBool(cfg, "SESSION_COOKIE_SECURE", false))

	return &routeHandlers{
		authHandler:        newAuthHandler(svc.Auth, svc.Interaction, cookies, maxUpload),
		projectHandler:     newProjectHandler(svc.Content, svc.Interaction, maxUpload),
		achievementHandler: newAchievementHandler(svc.Content, maxUpload),
		aboutHandler:       newAboutHandler(svc.About),
		adminHandler:       newAdminHandler(svc.Dashboard, svc.About, svc.GitHub),
	}
}
