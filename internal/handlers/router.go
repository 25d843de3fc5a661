package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/guard"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
	"github.com/edu-platform/backend/internal/services"
	"github.com/edu-platform/backend/internal/session"
	"github.com/edu-platform/backend/internal/utils"
)

type HandlerManager struct {
	guard            *guard.Guard
	authHandler      *AuthHandler
	dashboardHandler *DashboardHandler
	courseHandler    *CourseHandler
	quizHandler      *QuizHandler
}

func NewHandlerManager(
	provider auth.Provider,
	tokens *auth.TokenStore,
	resolver *session.RoleResolver,
	repo repositories.Repository,
	content services.ContentService,
	quizSessions services.QuizSessionService,
	export services.ExportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		guard:            guard.New(NewSessionSnapshotFunc(tokens, resolver, logger), logger),
		authHandler:      NewAuthHandler(provider, tokens, repo.Profile(), resolver, logger, validator),
		dashboardHandler: NewDashboardHandler(content, logger),
		courseHandler:    NewCourseHandler(content, logger),
		quizHandler:      NewQuizHandler(content, quizSessions, export, logger),
	}
}

// SetupRoutes sets up all routes. Page routes carry the redirect-based
// guards of the access model; API routes use the status-code variant.
// Quiz session routes stay open to anonymous callers, whose runs are
// never persisted.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(hm.guard.LoadSession())

	router.GET("/health", HealthCheck)

	// Public home
	router.GET(guard.PathHome, hm.dashboardHandler.Home)

	// Auth entry points
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/login", hm.guard.RedirectAuthenticated(), hm.authHandler.LoginPage)
		authGroup.POST("/login", hm.authHandler.Login)
		authGroup.POST("/signup", hm.authHandler.Signup)
		authGroup.POST("/federated", hm.authHandler.Federated)
		authGroup.POST("/logout", hm.authHandler.Logout)
	}

	// Role dispatch and dashboards
	router.GET(guard.PathDispatch, hm.guard.Dispatch())
	dashboards := router.Group("/dashboard")
	{
		dashboards.GET("/student", hm.guard.RequireRole(models.RoleStudent), hm.dashboardHandler.Student)
		dashboards.GET("/teacher", hm.guard.RequireRole(models.RoleTeacher), hm.dashboardHandler.Teacher)
		dashboards.GET("/parent", hm.guard.RequireRole(models.RoleParent), hm.dashboardHandler.Parent)
		dashboards.GET("/admin", hm.guard.RequireRole(models.RoleAdmin), hm.dashboardHandler.Admin)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		courses := v1.Group("/courses")
		{
			courses.POST("", hm.guard.Authenticate(), hm.courseHandler.CreateCourse)
			courses.GET("", hm.guard.Authenticate(), hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.guard.Authenticate(), hm.courseHandler.GetCourse)
			courses.POST("/:id/lessons", hm.guard.Authenticate(), hm.courseHandler.CreateLesson)
			courses.GET("/:id/lessons", hm.guard.Authenticate(), hm.courseHandler.ListLessons)
			courses.GET("/:id/lessons/stream", hm.guard.Authenticate(), hm.courseHandler.StreamLessons)
			courses.GET("/:id/quiz", hm.guard.Authenticate(), hm.quizHandler.GetCourseQuiz)
		}

		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("/:id/sessions", hm.quizHandler.StartSession)
			quizzes.GET("/:id/attempts/export", hm.guard.Authenticate(), hm.quizHandler.ExportAttempts)
		}

		quizSessions := v1.Group("/quiz-sessions")
		{
			quizSessions.GET("/:sid", hm.quizHandler.GetSession)
			quizSessions.POST("/:sid/answer", hm.quizHandler.Answer)
			quizSessions.POST("/:sid/next", hm.quizHandler.Next)
			quizSessions.DELETE("/:sid", hm.quizHandler.CloseSession)
		}

		v1.GET("/attempts", hm.guard.Authenticate(), hm.quizHandler.ListMyAttempts)
	}
}
