package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	assignment *handler.AssignmentHandler
	completion *handler.CompletionHandler
	timetable  *handler.TimetableHandler
	subject    *handler.SubjectHandler
	teacher    *handler.TeacherHandler
	user       *handler.UserHandler
	overview   *handler.OverviewHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, tokens middleware.TokenValidator, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
	}

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if metrics != nil {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)

	api.GET("/feeds/teachers/:id/calendar.ics", h.timetable.CalendarFeed)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))

	director := middleware.RequireRoles(models.RoleDirector)
	head := middleware.RequireRoles(models.RoleDepartmentHead)
	planners := middleware.RequireRoles(models.RoleDirector, models.RoleDepartmentHead)
	headOrSelf := middleware.RequireRolesOrSelf(models.RoleDepartmentHead)

	secured.GET("/auth/me", h.auth.Me)
	secured.GET("/catalog", h.timetable.Catalog)

	secured.POST("/assignments/check", planners, h.assignment.Check)
	secured.POST("/assignments", head, h.assignment.Assign)
	secured.DELETE("/assignments", head, h.assignment.Unassign)
	secured.POST("/sessions", head, h.assignment.CreateSession)
	secured.GET("/sessions", h.assignment.ListSessions)
	secured.DELETE("/sessions/:id", head, h.assignment.DeleteSession)
	secured.GET("/conflicts", planners, h.assignment.Conflicts)

	semesters := secured.Group("/semesters/:semester")
	semesters.GET("/stats", h.completion.Stats)
	semesters.GET("/progress", h.completion.Progress)
	semesters.GET("/subjects/:subjectId/status", h.completion.SubjectStatus)
	semesters.GET("/timetable", h.timetable.Semester)
	semesters.GET("/timetable/export", planners, h.timetable.Export)
	semesters.GET("/rooms/available", planners, h.timetable.FreeRooms)

	secured.GET("/rooms/:room/timetable", h.timetable.Room)

	subjects := secured.Group("/subjects")
	subjects.GET("", h.subject.List)
	subjects.GET("/:id", h.subject.Get)
	subjects.GET("/:id/teachers", h.subject.Teachers)
	subjects.POST("", head, h.subject.Create)
	subjects.PUT("/:id", head, h.subject.Update)
	subjects.DELETE("/:id", head, h.subject.Delete)

	teachers := secured.Group("/teachers")
	teachers.GET("", h.teacher.List)
	teachers.GET("/:id", h.teacher.Get)
	teachers.GET("/:id/workload", h.teacher.Workload)
	teachers.GET("/:id/timetable", h.timetable.Teacher)
	teachers.GET("/:id/calendar.ics", h.timetable.Calendar)
	teachers.GET("/:id/calendar/link", headOrSelf, h.timetable.CalendarLink)
	teachers.POST("", head, h.teacher.Create)
	teachers.PUT("/:id", head, h.teacher.Update)
	teachers.DELETE("/:id", head, h.teacher.Delete)
	teachers.POST("/:id/subjects", headOrSelf, h.teacher.AddSubject)
	teachers.PUT("/:id/subjects", headOrSelf, h.teacher.ReplaceSubjects)
	teachers.DELETE("/:id/subjects/:subjectId", headOrSelf, h.teacher.RemoveSubject)
	teachers.PUT("/:id/availability", headOrSelf, h.teacher.UpdateAvailability)

	users := secured.Group("/users", director)
	users.GET("", h.user.List)
	users.GET("/:id", h.user.Get)
	users.POST("", h.user.Create)
	users.PUT("/:id", h.user.Update)
	users.DELETE("/:id", h.user.Delete)

	secured.GET("/overview", director, h.overview.Get)

	return r
}
