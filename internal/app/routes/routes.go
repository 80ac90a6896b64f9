package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/jumpyouth/checkin/internal/app/controllers"
	"github.com/jumpyouth/checkin/internal/app/models"
	"github.com/jumpyouth/checkin/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	Participant *controllers.ParticipantController
	EventDay    *controllers.EventDayController
	Checkin     *controllers.CheckinController
	Group       *controllers.GroupController
	Duplicate   *controllers.DuplicateController
	Dashboard   *controllers.DashboardController
	Export      *controllers.ExportController
	LiveFeed    gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, currentYear int) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), middleware.ActiveYear(currentYear))

	authenticated.GET("/auth/me", c.Auth.Me)
	authenticated.GET("/years", c.Auth.Years)
	authenticated.PUT("/years/active", c.Auth.SetActiveYear)

	participants := authenticated.Group("/participants")
	{
		participants.GET("", c.Participant.List)
		participants.GET("/:id", c.Participant.Get)

		writes := participants.Group("")
		writes.Use(authMiddleware.PermissionRequired(models.PermManageParticipants))
		{
			writes.POST("", c.Participant.Create)
			writes.POST("/bulk-assign", c.Participant.BulkAssign)
			writes.PUT("/:id", c.Participant.Update)
			writes.DELETE("/:id", c.Participant.Delete)
			writes.POST("/:id/photo", c.Participant.UploadPhoto)
		}
	}

	eventDays := authenticated.Group("/event-days")
	{
		eventDays.GET("", c.EventDay.List)
		eventDays.POST("", authMiddleware.PermissionRequired(models.PermAddEventDay), c.EventDay.Create)
	}

	checkin := authenticated.Group("/checkin")
	{
		checkin.PUT("/attendance", c.Checkin.UpdateAttendance)
		checkin.GET("/days/:id", c.Checkin.Roster)
		checkin.POST("/days/:id", c.Checkin.Submit)
		checkin.GET("/days/:id/vip", c.Checkin.VIP)
		checkin.POST("/days/:id/vip/notify", c.Checkin.NotifyVIP)
		checkin.GET("/days/:id/live", c.LiveFeed)
		checkin.PUT("/days/:id/auditorium", authMiddleware.PermissionRequired(models.PermAddAuditoriumCount), c.Checkin.RecordAuditorium)
		checkin.PUT("/days/:id/visitors", authMiddleware.PermissionRequired(models.PermAddVisitorCount), c.Checkin.RecordVisitors)
	}

	authenticated.GET("/headcounts/auditorium",
		authMiddleware.PermissionRequired(models.PermAddAuditoriumCount), c.Checkin.ListAuditorium)

	// Cohort (PG) and império routes
	groups := authenticated.Group("")
	groups.Use(authMiddleware.PermissionRequired(models.PermViewGroups))
	{
		cohorts := groups.Group("/cohorts")
		cohorts.GET("", c.Group.ListCohorts)
		cohorts.POST("", c.Group.CreateCohort)
		cohorts.GET("/:id", c.Group.GetCohort)
		cohorts.PUT("/:id", c.Group.UpdateCohort)
		cohorts.DELETE("/:id", c.Group.DeleteCohort)
		cohorts.POST("/:id/members", c.Group.AddCohortMembers)
		cohorts.DELETE("/:id/members", c.Group.RemoveCohortMembers)

		imperios := groups.Group("/imperios")
		imperios.GET("", c.Group.ListImperios)
		imperios.POST("", c.Group.CreateImperio)
		imperios.GET("/:id", c.Group.GetImperio)
		imperios.PUT("/:id", c.Group.UpdateImperio)
		imperios.DELETE("/:id", c.Group.DeleteImperio)
		imperios.POST("/:id/members", c.Group.AddImperioMembers)
		imperios.DELETE("/:id/members", c.Group.RemoveImperioMembers)
	}

	duplicates := authenticated.Group("/duplicates")
	duplicates.Use(authMiddleware.PermissionRequired(models.PermReviewDuplicates))
	{
		duplicates.GET("", c.Duplicate.Suggest)
		duplicates.POST("/merge", c.Duplicate.Merge)
		duplicates.POST("/reject", c.Duplicate.Reject)
	}

	authenticated.GET("/dashboard",
		authMiddleware.PermissionRequired(models.PermViewDashboard), c.Dashboard.Get)

	exports := authenticated.Group("/exports")
	exports.Use(authMiddleware.PermissionRequired(models.PermExportData))
	{
		exports.GET("/participants.csv", c.Export.ParticipantsCSV)
		exports.GET("/event-days/:id/attendance.csv", c.Export.AttendanceCSV)
		exports.POST("/participants/sheets", c.Export.ParticipantsToSheets)
	}
}
