package handlers

import "github.com/gofiber/fiber/v3"

// Register вешает маршруты планировщика на роутер.
func Register(r fiber.Router, editor *EditorHandler, layouts *LayoutHandler, feed *FeedHandler) {
	sessions := r.Group("/editor/sessions")
	sessions.Post("/", editor.Open)
	sessions.Get("/:id", editor.Get)
	sessions.Delete("/:id", editor.Close)
	sessions.Post("/:id/elements", editor.AddElement)
	sessions.Post("/:id/select", editor.Select)
	sessions.Delete("/:id/selection", editor.ClearSelection)
	sessions.Put("/:id/selection/position", editor.MoveSelected)
	sessions.Post("/:id/selection/rotate", editor.Rotate)
	sessions.Delete("/:id/selection/element", editor.DeleteSelected)
	sessions.Post("/:id/save", editor.Save)

	r.Get("/layouts", layouts.List)
	r.Get("/layouts/active", layouts.Active)
	r.Get("/layouts/active/svg", layouts.ActiveSVG)
	r.Put("/layouts/:id/activate", layouts.Activate)
	r.Delete("/layouts/:id", layouts.Delete)

	r.Get("/reservations/today", feed.Today)
	r.Post("/reservations/:id/assign", feed.Assign)
	r.Get("/daily", feed.Daily)
}
