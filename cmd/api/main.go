package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/college-api/api/swagger"
	"github.com/noah-isme/college-api/internal/handler"
	"github.com/noah-isme/college-api/internal/repository"
	"github.com/noah-isme/college-api/internal/service"
	"github.com/noah-isme/college-api/pkg/cache"
	"github.com/noah-isme/college-api/pkg/config"
	"github.com/noah-isme/college-api/pkg/database"
	"github.com/noah-isme/college-api/pkg/logger"
)

// @title College API
// @version 1.0.0
// @description Role-based college management API: enrollment workflow, attendance, marks and performance analytics.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Performance.CacheTTL, logr, cfg.Performance.CacheEnabled && redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	identityRepo := repository.NewIdentityRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	markRepo := repository.NewMarkRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	identitySvc := service.NewIdentityService(identityRepo, logr)
	classSvc := service.NewClassService(classRepo, subjectRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, classRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, classRepo, enrollmentRepo, cacheSvc, validate, logr)
	markSvc := service.NewMarkService(markRepo, classRepo, enrollmentRepo, cacheSvc, validate, logr)
	performanceSvc := service.NewPerformanceService(performanceRepo, classRepo, cacheSvc, cfg.Performance.CacheTTL, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, validate, logr)

	handlers := routeHandlers{
		auth:          handler.NewAuthHandler(authSvc),
		classes:       handler.NewClassHandler(classSvc, identitySvc),
		subjects:      handler.NewSubjectHandler(subjectSvc),
		students:      handler.NewStudentHandler(studentSvc, identitySvc),
		enrollments:   handler.NewEnrollmentHandler(enrollmentSvc, identitySvc),
		attendance:    handler.NewAttendanceHandler(attendanceSvc, identitySvc),
		marks:         handler.NewMarkHandler(markSvc, identitySvc),
		performance:   handler.NewPerformanceHandler(performanceSvc, identitySvc),
		announcements: handler.NewAnnouncementHandler(announcementSvc, identitySvc),
		metrics:       handler.NewMetricsHandler(metricsSvc),
	}

	r := newRouter(cfg, logr, authSvc, metricsSvc, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
