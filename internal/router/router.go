package router

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tpo-cell/backend/internal/auth"
	"github.com/tpo-cell/backend/internal/config"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/handler"
	"github.com/tpo-cell/backend/internal/metrics"
	"github.com/tpo-cell/backend/internal/middleware"
	"github.com/tpo-cell/backend/internal/repository"
	"github.com/tpo-cell/backend/internal/service"
	"gorm.io/gorm"
)

// Deps is everything the routes need from main.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	JWT    *auth.JWTService
	Store  handler.ObjectStore
	// Quiet drops the request logger, for tests.
	Quiet bool
}

// New builds the fiber app with middleware and every /api/v1 route.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    int(d.Config.Import.MaxFileSize) + 1024*1024,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if !d.Quiet {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(d.Config.CORS.Origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: true,
	}))
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	authRepo := repository.NewAuthRepository(d.DB)
	studentRepo := repository.NewStudentRepository(d.DB)
	alumniRepo := repository.NewAlumniRepository(d.DB)
	eventRepo := repository.NewEventRepository(d.DB)
	attendanceRepo := repository.NewAttendanceRepository(d.DB)

	// Services
	importService := service.NewImportService(studentRepo, alumniRepo, eventRepo, attendanceRepo)
	exportService := service.NewExportService(studentRepo)

	// Handlers
	healthHandler := handler.NewHealthHandler(d.DB)
	authHandler := handler.NewAuthHandler(userRepo, authRepo, d.JWT)
	studentHandler := handler.NewStudentHandler(studentRepo, exportService)
	alumniHandler := handler.NewAlumniHandler(alumniRepo)
	eventHandler := handler.NewEventHandler(eventRepo, attendanceRepo)
	importHandler := handler.NewImportHandler(importService, d.Config.Import.MaxFileSize)

	authMiddleware := middleware.NewAuthMiddleware(d.JWT, authRepo)

	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.Check)

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	adminOnly := []fiber.Handler{authMiddleware.Required(), authMiddleware.AdminOnly()}

	// Students
	students := api.Group("/students", adminOnly...)
	students.Get("/", studentHandler.List)
	students.Post("/", studentHandler.Create)
	students.Get("/export", studentHandler.Export)
	students.Get("/:id", studentHandler.Get)
	students.Patch("/:id", studentHandler.Update)
	students.Delete("/:id", studentHandler.Delete)
	students.Get("/:id/drives", studentHandler.ListDrives)
	students.Post("/:id/drives", studentHandler.CreateDrive)
	students.Delete("/:id/drives/:drive_id", studentHandler.DeleteDrive)

	// Alumni
	alumni := api.Group("/alumni", adminOnly...)
	alumni.Get("/", alumniHandler.List)
	alumni.Post("/", alumniHandler.Create)
	alumni.Get("/:id", alumniHandler.Get)
	alumni.Patch("/:id", alumniHandler.Update)
	alumni.Delete("/:id", alumniHandler.Delete)

	// Events and attendance
	events := api.Group("/events", adminOnly...)
	events.Get("/", eventHandler.List)
	events.Post("/", eventHandler.Create)
	events.Get("/:id", eventHandler.Get)
	events.Patch("/:id", eventHandler.Update)
	events.Delete("/:id", eventHandler.Delete)
	events.Get("/:id/attendance", eventHandler.ListAttendance)
	events.Post("/:id/attendance", eventHandler.MarkAttendance)
	api.Group("/attendance", adminOnly...).Delete("/:id", eventHandler.DeleteAttendance)

	// Import
	imports := api.Group("/import", adminOnly...)
	imports.Get("/", importHandler.Kinds)
	imports.Post("/:type", importHandler.Import)
	imports.Get("/:type/template", importHandler.DownloadTemplate)

	// Uploads
	if d.Store != nil {
		uploadHandler := handler.NewUploadHandler(d.Store, studentRepo, alumniRepo, eventRepo)
		uploads := api.Group("/uploads", adminOnly...)
		uploads.Post("/presign", uploadHandler.Presign)
		uploads.Post("/confirm", uploadHandler.Confirm)
		uploads.Get("/presign-view", uploadHandler.PresignView)
		uploads.Delete("/*", uploadHandler.Delete)
	} else {
		log.Printf("[Router] No object store configured, upload routes disabled")
	}

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errCode := "INTERNAL_ERROR"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		switch code {
		case fiber.StatusNotFound:
			errCode = "NOT_FOUND"
		case fiber.StatusRequestEntityTooLarge:
			errCode = "FILE_TOO_LARGE"
		case fiber.StatusMethodNotAllowed:
			errCode = "METHOD_NOT_ALLOWED"
		}
	}
	return c.Status(code).JSON(dto.ErrorResponse(errCode, err.Error()))
}
