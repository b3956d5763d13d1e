package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
)

// Dependencies groups what the routes need.
type Dependencies struct {
	DB          *sql.DB
	Documents   service.DocumentService
	Permissions service.PermissionService
	Tokens      service.TokenService
	Search      service.SearchService
	Auth        middleware.AuthConfig
	// PublicBaseURL prefixes download links handed out with tokens.
	PublicBaseURL string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Authentication is applied per group so unknown paths still get 404.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	registerPublicRoutes(app, deps)
	registerAuthenticatedRoutes(app, deps, middleware.Authenticate(deps.Auth))
}

func registerPublicRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	// Token holders are anonymous; the token itself is the credential.
	app.Get("/download/:token", DownloadByToken(deps.Documents, deps.Tokens))
	app.Get("/download/:token/info", TokenInfo(deps.Documents, deps.Tokens))
}

func registerAuthenticatedRoutes(app *fiber.App, deps Dependencies, auth fiber.Handler) {
	docs := app.Group("/documents", auth)
	docs.Get("/", ListDocuments(deps.Documents))
	docs.Post("/", UploadDocument(deps.Documents))
	// registered before /:id so "search" is not taken for an id
	docs.Get("/search", SearchDocuments(deps.Search))
	docs.Get("/:id", GetDocument(deps.Documents))
	docs.Patch("/:id", RenameDocument(deps.Documents))
	docs.Delete("/:id", DeleteDocument(deps.Documents))
	docs.Get("/:id/content", DownloadContent(deps.Documents))
	docs.Put("/:id/annotations", UpdateAnnotations(deps.Documents))
	docs.Post("/:id/download-token", IssueDownloadToken(deps.Documents, deps.Tokens, deps.PublicBaseURL))

	docs.Get("/:id/permissions", ListPermissions(deps.Permissions))
	docs.Post("/:id/permissions", GrantPermission(deps.Permissions))
	docs.Patch("/:id/permissions/:userId", UpdatePermission(deps.Permissions))
	docs.Delete("/:id/permissions/:userId", RevokePermission(deps.Permissions))

	app.Get("/permissions/me", auth, MyPermissions(deps.Permissions))

	admin := app.Group("/admin", auth, middleware.RequireRole(model.RoleAdmin))
	admin.Post("/tokens/cleanup", CleanupTokens(deps.Tokens))
}
