package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/internal/api/handler"
	"github.com/infoamous-source/kiosk-sub001/internal/api/middleware"
	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
	"github.com/infoamous-source/kiosk-sub001/pkg/jwt"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
	"github.com/infoamous-source/kiosk-sub001/pkg/redis"
)

// Deps are the collaborators the router needs besides the handlers.
// Redis and Metrics may be nil.
type Deps struct {
	JWT     *jwt.Manager
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Backend *backend.Client
}

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "backend": "configured"}
		if !deps.Backend.Configured() {
			status["backend"] = "offline"
		}
		c.JSON(http.StatusOK, status)
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// a nil *redis.Client must not become a non-nil interface
	var blacklist backend.TokenBlacklist
	if deps.Redis != nil {
		blacklist = deps.Redis
	}
	authRequired := middleware.JWTAuth(deps.JWT, blacklist, logger)
	instructorOnly := middleware.RoleAuth(model.RoleInstructor)

	v1 := r.Group("/api/v1")
	{
		// ── public ──
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(deps.Redis, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.Refresh)
		}
		v1.GET("/organizations/validate/:code", h.Organization.Validate)

		kiosk := v1.Group("/kiosk")
		{
			kiosk.GET("/catalog", h.Kiosk.Catalog)
			kiosk.POST("/sessions", middleware.RateLimit(deps.Redis, 30, time.Minute), h.Kiosk.Create)
			kiosk.GET("/sessions/:id", h.Kiosk.Get)
			kiosk.POST("/sessions/:id/actions", h.Kiosk.Action)
			kiosk.DELETE("/sessions/:id", h.Kiosk.Delete)
		}

		// ── signed in ──
		authorized := v1.Group("")
		authorized.Use(authRequired)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			profile := authorized.Group("/profile")
			{
				profile.GET("", h.Profile.Me)
				profile.PUT("", h.Profile.Update)
				profile.GET("/api-key", h.Profile.GetAPIKey)
				profile.PUT("/api-key", h.Profile.SaveAPIKey)
			}

			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("", h.Enrollment.Mine)
				enrollments.POST("", h.Enrollment.Create)
				enrollments.GET("/status/:school_id", h.Enrollment.Status)
				enrollments.POST("/:id/info", h.Enrollment.SubmitInfo)
			}

			schools := authorized.Group("/schools/:school_id")
			{
				schools.GET("/progress", h.School.Progress)
				schools.POST("/stamps", h.School.EarnStamp)
				schools.PUT("/results", h.School.SaveResult)
				schools.POST("/graduate", h.School.Graduate)
				schools.POST("/reset", h.School.Reset)
				schools.GET("/calendar.ics", h.School.Calendar)
			}

			authorized.GET("/visibility", h.Visibility.Settings)
			authorized.GET("/visibility/check", h.Visibility.Check)
			authorized.GET("/notifications", h.Notification.Inbox)

			portfolio := authorized.Group("/portfolio")
			{
				portfolio.GET("", h.Portfolio.List)
				portfolio.POST("", h.Portfolio.Create)
				portfolio.GET("/stats", h.Portfolio.Stats)
			}

			ideas := authorized.Group("/ideas")
			{
				ideas.GET("", h.Portfolio.Ideas)
				ideas.POST("", h.Portfolio.AddIdea)
				ideas.DELETE("/:id", h.Portfolio.RemoveIdea)
			}

			progress := authorized.Group("/progress")
			{
				progress.GET("/digital", h.Progress.Digital)
				progress.PUT("/digital", h.Progress.SaveDigital)
				progress.GET("/marketing", h.Progress.Marketing)
				progress.POST("/marketing", h.Progress.RecordMarketing)
			}

			authorized.GET("/activity", h.Progress.Activity)
			authorized.POST("/activity", h.Progress.LogActivity)

			team := authorized.Group("/team")
			{
				team.GET("", h.Team.MyTeam)
				team.GET("/ideas", h.Team.Ideas)
				team.POST("/ideas", h.Team.AddIdea)
				team.DELETE("/ideas/:id", h.Team.RemoveIdea)
			}

			authorized.GET("/assignments", h.Team.Assignments)
			authorized.GET("/assignments/:track", h.Team.TrackAssignment)
		}

		// ── instructors ──
		instructor := v1.Group("/instructor")
		instructor.Use(authRequired, instructorOnly)
		{
			enrollments := instructor.Group("/enrollments")
			{
				enrollments.GET("", h.Enrollment.List)
				enrollments.POST("", h.Enrollment.Connect)
				enrollments.GET("/export", h.Enrollment.Export)
				enrollments.PUT("/:id/status", h.Enrollment.UpdateStatus)
				enrollments.GET("/:id/profile", h.Enrollment.SchoolProfile)
			}

			students := instructor.Group("/students")
			{
				students.GET("", h.Profile.Students)
				students.GET("/search", h.Profile.Search)
				students.POST("/assign", h.Profile.Assign)
			}

			visibility := instructor.Group("/visibility")
			{
				visibility.PUT("/track", h.Visibility.SetTrack)
				visibility.PUT("/module", h.Visibility.SetModule)
				visibility.PUT("/tool", h.Visibility.SetTool)
			}

			orgs := instructor.Group("/organizations")
			{
				orgs.GET("", h.Organization.List)
				orgs.POST("", h.Organization.Create)
				orgs.GET("/:id", h.Organization.Get)
				orgs.DELETE("/:id", h.Organization.Delete)
				orgs.GET("/:id/students", h.Organization.Students)
			}

			classrooms := instructor.Group("/classrooms")
			{
				classrooms.GET("", h.Team.Classrooms)
				classrooms.POST("", h.Team.CreateClassroom)
				classrooms.DELETE("/:id", h.Team.DeleteClassroom)
				classrooms.GET("/:id/members", h.Team.ClassroomMembers)
				classrooms.POST("/:id/members", h.Team.AddClassroomMember)
				classrooms.GET("/:id/teams", h.Team.Teams)
				classrooms.POST("/:id/teams", h.Team.CreateTeam)
			}
			instructor.DELETE("/classroom-members/:id", h.Team.RemoveClassroomMember)

			teams := instructor.Group("/teams")
			{
				teams.DELETE("/:id", h.Team.DeleteTeam)
				teams.GET("/:id/members", h.Team.TeamMembers)
				teams.POST("/:id/members", h.Team.AddTeamMember)
			}
			instructor.DELETE("/team-members/:id", h.Team.RemoveTeamMember)

			notifications := instructor.Group("/notifications")
			{
				notifications.GET("", h.Notification.History)
				notifications.POST("", h.Notification.Create)
			}
		}
	}

	return r
}
