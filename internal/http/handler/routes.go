package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docmanager/internal/http/middleware"
	"docmanager/internal/model"
	"docmanager/internal/service"
)

// Deps bundles what the routes need.
type Deps struct {
	DB        *sql.DB
	Documents service.DocumentService
	Offices   service.OfficeService
	Users     service.UserService
	Auth      service.AuthService
	// MaxUploadBytes caps a single uploaded file; zero disables the check.
	MaxUploadBytes     int64
	LoginRatePerMinute int
	Log                *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	authn := middleware.RequireAuth(d.Auth)

	auth := app.Group("/auth")
	auth.Post("/login", middleware.NewRateLimiter(d.LoginRatePerMinute).Handler(), Login(d.Auth))
	auth.Post("/logout", Logout(d.Auth))
	auth.Get("/me", authn, Me())

	docs := app.Group("/documents", authn)
	docs.Get("/", ListDocuments(d.Documents))
	docs.Post("/", UploadDocument(d.Documents, d.MaxUploadBytes, d.Log))
	// static segments before /:id
	docs.Get("/search", SearchDocuments(d.Documents))
	docs.Get("/current", CurrentDocuments(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Patch("/:id", UpdateDocument(d.Documents))
	docs.Delete("/:id", DeleteDocument(d.Documents))

	app.Get("/api/download/:id", authn, DownloadDocument(d.Documents))

	offices := app.Group("/offices", authn)
	offices.Get("/", ListOffices(d.Offices))
	offices.Post("/", CreateOffice(d.Offices))
	offices.Get("/:id", GetOffice(d.Offices))
	offices.Put("/:id", UpdateOffice(d.Offices))
	offices.Delete("/:id", DeleteOffice(d.Offices))

	users := app.Group("/users", authn, middleware.RequireRole(model.RoleAdmin))
	users.Get("/", ListUsers(d.Users))
	users.Post("/", CreateUser(d.Users))
	users.Get("/:id", GetUser(d.Users))
	users.Put("/:id", UpdateUser(d.Users))
	users.Delete("/:id", DeleteUser(d.Users))
}
