package api

import (
	"github.com/go-chi/chi/v5"
)

// setupFrontendRoutes sets up all routes with authentication
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, limiter *loginLimiter) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(authMiddleware.identify)

		// Public pages
		r.Get("/home", handlers.aboutHandler.getHome())
		r.Get("/about", handlers.aboutHandler.getAbout())
		r.Get("/contact", handlers.aboutHandler.getContact())

		r.Get("/projects", handlers.projectHandler.getPublishedProjects())
		r.Get("/projects/featured", handlers.projectHandler.getFeaturedProjects())
		r.Get("/projects/categories", handlers.projectHandler.getCategories())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
		r.Get("/projects/{projectID}/comments", handlers.projectHandler.getComments())
		r.Get("/achievements", handlers.achievementHandler.getPublishedAchievements())

		// Auth
		r.With(limiter.middleware).Post("/auth/register", handlers.authHandler.register())
		r.With(limiter.middleware).Post("/auth/login", handlers.authHandler.login())
		r.Post("/auth/logout", handlers.authHandler.logout())

		// Logged in visitors
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.requireUser)

			r.Get("/me", handlers.authHandler.me())
			r.Put("/me", handlers.authHandler.updateProfile())
			r.Post("/me/image", handlers.authHandler.uploadProfileImage())
			r.Get("/me/likes", handlers.authHandler.likedProjects())

			r.Post("/projects/{projectID}/like", handlers.projectHandler.toggleLike())
			r.Post("/projects/{projectID}/comments", handlers.projectHandler.addComment())
		})

		// Owner
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware.requireOwner)

			r.Get("/dashboard", handlers.adminHandler.getDashboard())
			r.Put("/about", handlers.adminHandler.updateAbout())

			r.Get("/projects", handlers.projectHandler.getAllProjects())
			r.Post("/projects", handlers.projectHandler.createProject())
			r.Get("/projects/{projectID}", handlers.projectHandler.getAnyProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())

			r.Get("/achievements", handlers.achievementHandler.getAllAchievements())
			r.Post("/achievements", handlers.achievementHandler.createAchievement())
			r.Get("/achievements/{achievementID}", handlers.achievementHandler.getAchievement())
			r.Put("/achievements/{achievementID}", handlers.achievementHandler.updateAchievement())
			r.Delete("/achievements/{achievementID}", handlers.achievementHandler.deleteAchievement())

			r.Post("/github/sync", handlers.adminHandler.syncRepos())
			r.Get("/github/repos", handlers.adminHandler.getRepos())
			r.Post("/github/repos/{repoID}/toggle", handlers.adminHandler.toggleRepo())
		})
	})
}
