package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/college-api/internal/handler"
	"github.com/noah-isme/college-api/internal/middleware"
	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/service"
	"github.com/noah-isme/college-api/pkg/config"
	"github.com/noah-isme/college-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/college-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/college-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth          *handler.AuthHandler
	classes       *handler.ClassHandler
	subjects      *handler.SubjectHandler
	students      *handler.StudentHandler
	enrollments   *handler.EnrollmentHandler
	attendance    *handler.AttendanceHandler
	marks         *handler.MarkHandler
	performance   *handler.PerformanceHandler
	announcements *handler.AnnouncementHandler
	metrics       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, authSvc *service.AuthService, metricsSvc *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/register/teacher", h.auth.RegisterTeacher)
	api.POST("/auth/register/student", h.auth.RegisterStudent)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", h.auth.Me)

	teacherOrAbove := middleware.RequireRoles(models.RoleTeacher, models.RoleHOD, models.RoleAdmin)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	teacherOnly := middleware.RequireRoles(models.RoleTeacher)
	hodOnly := middleware.RequireRoles(models.RoleHOD)

	subjects := authed.Group("/subjects")
	{
		subjects.GET("", h.subjects.List)
		subjects.GET("/:id", h.subjects.Get)
		subjects.POST("", middleware.RequireRoles(models.RoleAdmin), h.subjects.Create)
	}

	classes := authed.Group("/classes")
	{
		classes.POST("", middleware.RequireRoles(models.RoleTeacher), h.classes.Create)
		classes.GET("/mine", middleware.RequireRoles(models.RoleTeacher), h.classes.ListMine)
		classes.GET("/department", hodOnly, h.classes.ListDepartment)
		classes.GET("/:id", teacherOrAbove, h.classes.Get)
		classes.GET("/:id/students", teacherOrAbove, h.classes.Students)
	}

	enrollments := authed.Group("/enrollments")
	{
		enrollments.POST("", studentOnly, h.enrollments.Request)
		enrollments.GET("/available", studentOnly, h.enrollments.ListAvailable)
		enrollments.GET("/mine", studentOnly, h.enrollments.ListMine)
		enrollments.GET("/pending", teacherOrAbove, h.enrollments.ListPending)
		enrollments.PUT("/:id/approve", teacherOrAbove, h.enrollments.Approve)
		enrollments.PUT("/:id/reject", teacherOrAbove, h.enrollments.Reject)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.POST("/batch", teacherOnly, h.attendance.RecordBatch)
		attendance.POST("", teacherOnly, h.attendance.RecordSingle)
		attendance.GET("/mine", studentOnly, h.attendance.ListMine)
		attendance.GET("/class/:classId", teacherOrAbove, h.attendance.ListByDate)
		attendance.GET("/class/:classId/student/:studentId", teacherOrAbove, h.attendance.ListForStudent)
		attendance.GET("/class/:classId/summary", teacherOrAbove, h.attendance.Summary)
		attendance.GET("/class/:classId/top", teacherOrAbove, h.attendance.Top)
	}

	marks := authed.Group("/marks")
	{
		marks.POST("", teacherOnly, h.marks.Create)
		marks.GET("", teacherOrAbove, h.marks.List)
		marks.GET("/mine", studentOnly, h.marks.ListMine)
		marks.GET("/mine/class/:classId", studentOnly, h.marks.ListMineByClass)
		marks.GET("/class/:classId", teacherOnly, h.marks.ListByClass)
		marks.GET("/subject-difficulty", teacherOrAbove, h.marks.SubjectDifficulty)
		marks.GET("/:id", teacherOrAbove, h.marks.Get)
		marks.PUT("/:id", teacherOnly, h.marks.Update)
	}

	performance := authed.Group("/performance")
	{
		performance.GET("/me", studentOnly, h.performance.My)
		performance.GET("/trend", studentOnly, h.performance.Trend)
		performance.GET("/class/:classId", teacherOrAbove, h.performance.Class)
		performance.GET("/class/:classId/export", teacherOrAbove, h.performance.Export)
		performance.GET("/department", hodOnly, h.performance.Department)
	}

	students := authed.Group("/students")
	{
		students.GET("/me", studentOnly, h.students.MyProfile)
		students.GET("", middleware.RequireRoles(models.RoleHOD, models.RoleAdmin), h.students.List)
	}

	announcements := authed.Group("/announcements")
	{
		announcements.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleHOD), h.announcements.Create)
		announcements.GET("", h.announcements.List)
		announcements.DELETE("/:id", middleware.RequireRoles(models.RoleTeacher, models.RoleHOD), h.announcements.Delete)
	}

	authed.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), h.metrics.Snapshot)

	return r
}
