package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farhoud/yoga-guru/internal/config"
	"github.com/farhoud/yoga-guru/internal/handlers"
	"github.com/farhoud/yoga-guru/internal/middleware"
	"github.com/farhoud/yoga-guru/internal/repository"
	"github.com/farhoud/yoga-guru/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	classRepo := repository.NewClassRepository(db)
	patternRepo := repository.NewPatternRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	authHandler := handlers.NewAuthHandler(db, userRepo, profileRepo, cfg.JWTSecret)
	profileService := services.NewProfileService(profileRepo)
	profileHandler := handlers.NewProfileHandler(profileService, storageService)
	classHandler := handlers.NewClassHandler(classRepo, patternRepo, sessionRepo)
	scheduleService := services.NewScheduleService(db, classRepo, patternRepo, sessionRepo)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, cfg.MaterializeHorizonDays)
	membershipService := services.NewMembershipService(db, membershipRepo, classRepo)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	enrollmentService := services.NewEnrollmentService(db, sessionRepo, membershipRepo, enrollmentRepo)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	attendanceService := services.NewAttendanceService(db, enrollmentRepo, sessionRepo, attendanceRepo)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)

	registerDocs(app, cfg)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Get("/profile", profileHandler.GetProfile)
	users.Put("/profile", profileHandler.UpdateProfile)
	users.Post("/profile/avatar", profileHandler.UploadAvatar)

	classes := authProtected.Group("/classes")
	classes.Get("", classHandler.ListClasses)
	classes.Post("", classHandler.CreateClass)
	classes.Get("/:id", classHandler.GetClass)
	classes.Put("/:id", classHandler.UpdateClass)
	classes.Post("/:id/patterns", scheduleHandler.CreatePattern)
	classes.Get("/:id/patterns", scheduleHandler.ListPatterns)
	classes.Get("/:id/sessions", scheduleHandler.ListSessions)

	patterns := authProtected.Group("/patterns")
	patterns.Post("/:id/materialize", scheduleHandler.MaterializeSessions)

	sessions := authProtected.Group("/sessions")
	sessions.Get("/:id", scheduleHandler.GetSession)
	sessions.Post("/:id/cancel", scheduleHandler.CancelSession)
	sessions.Post("/:id/enroll", enrollmentHandler.Enroll)
	sessions.Get("/:id/enrollments", enrollmentHandler.ListForSession)

	memberships := authProtected.Group("/memberships")
	memberships.Post("", membershipHandler.CreateMembership)
	memberships.Get("", membershipHandler.ListMemberships)
	memberships.Post("/:id/pay", membershipHandler.PayMembership)
	memberships.Post("/:id/refund", membershipHandler.RefundMembership)

	enrollments := authProtected.Group("/enrollments")
	enrollments.Get("", enrollmentHandler.ListMine)
	enrollments.Post("/:id/cancel", enrollmentHandler.CancelEnrollment)
	enrollments.Post("/:id/no-show", enrollmentHandler.MarkNoShow)
	enrollments.Post("/:id/check-in", attendanceHandler.CheckIn)
	enrollments.Put("/:id/attendance", attendanceHandler.UpdateAttendance)
	enrollments.Get("/:id/attendance", attendanceHandler.GetAttendance)
}
