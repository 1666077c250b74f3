package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingo/config"
	"lingo/controllers"
	"lingo/middleware"
	"lingo/quiz"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Payment webhook: unauthenticated, signature-verified
	webhookController := controllers.NewWebhookController(db, cfg)
	app.Post("/api/webhooks/stripe", webhookController.HandleStripeWebhook)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(cfg)
	requestCache := middleware.RequestCacheMiddleware()

	// Courses
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware, requestCache)
	courses.Get("/", coursesController.GetCourses)
	courses.Post("/:id/select", coursesController.SelectCourse)

	// Learning dashboard
	learnController := controllers.NewLearnController(db, cfg)
	learn := app.Group("/api/learn", authMiddleware, requestCache)
	learn.Get("/units", learnController.GetUnits)
	learn.Get("/progress", learnController.GetCourseProgress)
	learn.Get("/percentage", learnController.GetLessonPercentage)
	learn.Get("/lessons", learnController.GetLesson)
	learn.Get("/lessons/:id", learnController.GetLesson)

	// Economy mutators, shop, leaderboard
	progressController := controllers.NewProgressController(db, cfg)
	app.Post("/api/challenges/:id/progress", authMiddleware, requestCache, progressController.CompleteChallengeHandler)
	app.Post("/api/challenges/:id/hearts", authMiddleware, requestCache, progressController.ReduceHeartsHandler)
	app.Get("/api/shop", authMiddleware, requestCache, progressController.GetShop)
	app.Post("/api/shop/refill", authMiddleware, requestCache, progressController.RefillHearts)
	app.Get("/api/leaderboard", authMiddleware, requestCache, progressController.GetLeaderboard)

	// Lesson sessions
	lessonController := controllers.NewLessonController(db, cfg, quiz.NewStore(), progressController)
	lesson := app.Group("/api/lesson", authMiddleware, requestCache)
	lesson.Post("/:id/session", lessonController.StartSession)
	lesson.Get("/session", lessonController.GetSession)
	lesson.Post("/session/select", lessonController.SelectOption)
	lesson.Post("/session/continue", lessonController.Continue)
	lesson.Delete("/session", lessonController.ExitSession)

	// Admin CRUD
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", adminMiddleware)

	admin.Post("/courses", adminController.CreateCourse)
	admin.Get("/courses/:id", adminController.GetCourse)
	admin.Put("/courses/:id", adminController.UpdateCourse)
	admin.Delete("/courses/:id", adminController.DeleteCourse)

	admin.Post("/units", adminController.CreateUnit)
	admin.Get("/units/:id", adminController.GetUnit)
	admin.Put("/units/:id", adminController.UpdateUnit)
	admin.Delete("/units/:id", adminController.DeleteUnit)

	admin.Post("/lessons", adminController.CreateLesson)
	admin.Get("/lessons/:id", adminController.GetLesson)
	admin.Put("/lessons/:id", adminController.UpdateLesson)
	admin.Delete("/lessons/:id", adminController.DeleteLesson)

	admin.Post("/challenges", adminController.CreateChallenge)
	admin.Get("/challenges/:id", adminController.GetChallenge)
	admin.Put("/challenges/:id", adminController.UpdateChallenge)
	admin.Delete("/challenges/:id", adminController.DeleteChallenge)

	admin.Post("/challenge-options", adminController.CreateChallengeOption)
	admin.Get("/challenge-options/:id", adminController.GetChallengeOption)
	admin.Put("/challenge-options/:id", adminController.UpdateChallengeOption)
	admin.Delete("/challenge-options/:id", adminController.DeleteChallengeOption)
}
