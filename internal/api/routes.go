package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/health", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/refresh", handler.Refresh)
	auth.Post("/logout", handler.Logout)

	ratings := api.Group("/ratings", handler.AuthRequired)
	ratings.Post("", handler.SaveRating)
	ratings.Get("", handler.ListRatings)
	ratings.Get("/stats", handler.GetStats)

	groups := api.Group("/groups", handler.AuthRequired)
	groups.Post("", handler.CreateGroup)
	groups.Post("/join", handler.JoinGroup)
	groups.Get("", handler.ListGroups)
	groups.Get("/:id", handler.GroupDetail)
}
