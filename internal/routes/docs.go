package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farhoud/yoga-guru/internal/config"
)

type docsRoute struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   bool   `json:"auth"`
	About  string `json:"about"`
}

// registerDocs exposes a read-only JSON route index. Development only,
// gated the same way as the rest of the docs surface.
func registerDocs(app *fiber.App, cfg *config.Config) {
	if !cfg.DocsEnabled() {
		return
	}

	index := []docsRoute{
		{"POST", "/api/auth/register", false, "Create an account with a student or instructor profile"},
		{"POST", "/api/auth/login", false, "Exchange credentials for a JWT"},
		{"GET", "/api/auth/me", true, "Current user and profile"},
		{"GET", "/api/v1/users/profile", true, "Get own profile"},
		{"PUT", "/api/v1/users/profile", true, "Update own profile"},
		{"POST", "/api/v1/users/profile/avatar", true, "Upload avatar image"},
		{"GET", "/api/v1/classes", true, "List classes (paginated)"},
		{"POST", "/api/v1/classes", true, "Create a class (instructor)"},
		{"GET", "/api/v1/classes/:id", true, "Class detail with patterns and upcoming sessions"},
		{"PUT", "/api/v1/classes/:id", true, "Update a class (owner)"},
		{"POST", "/api/v1/classes/:id/patterns", true, "Add a recurring pattern (owner)"},
		{"GET", "/api/v1/classes/:id/patterns", true, "List patterns for a class"},
		{"GET", "/api/v1/classes/:id/sessions", true, "List sessions, ?timeframe=upcoming|past"},
		{"POST", "/api/v1/patterns/:id/materialize", true, "Materialize sessions from a pattern (owner)"},
		{"GET", "/api/v1/sessions/:id", true, "Get a session"},
		{"POST", "/api/v1/sessions/:id/cancel", true, "Cancel a session (owner)"},
		{"POST", "/api/v1/sessions/:id/enroll", true, "Enroll in a session"},
		{"GET", "/api/v1/sessions/:id/enrollments", true, "List session enrollments (instructor)"},
		{"POST", "/api/v1/memberships", true, "Purchase a class membership"},
		{"GET", "/api/v1/memberships", true, "List own memberships"},
		{"POST", "/api/v1/memberships/:id/pay", true, "Record a payment for a membership"},
		{"POST", "/api/v1/memberships/:id/refund", true, "Refund a paid membership"},
		{"GET", "/api/v1/enrollments", true, "List own enrollments"},
		{"POST", "/api/v1/enrollments/:id/cancel", true, "Cancel own enrollment"},
		{"POST", "/api/v1/enrollments/:id/no-show", true, "Mark an enrollment no-show (instructor)"},
		{"POST", "/api/v1/enrollments/:id/check-in", true, "Check a student in (instructor)"},
		{"PUT", "/api/v1/enrollments/:id/attendance", true, "Correct an attendance record (instructor)"},
		{"GET", "/api/v1/enrollments/:id/attendance", true, "Get attendance for an enrollment"},
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store, max-age=0")
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set("X-Robots-Tag", "noindex, nofollow")
		return c.JSON(fiber.Map{"routes": index})
	})
}
