package api

import (
	"alcyxob/gymhub/internal/domain"
	"alcyxob/gymhub/internal/logger"
	"alcyxob/gymhub/internal/metrics"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RouterDeps are the collaborators SetupRoutes wires into the router.
type RouterDeps struct {
	JWTSecret string
	Handler   *GymHandler
	Log       *zap.Logger
	Metrics   *metrics.Recorder
	Gatherer  prometheus.Gatherer
}

func SetupRoutes(router *gin.Engine, deps RouterDeps) {
	h := deps.Handler

	router.Use(gin.Recovery(), logger.Middleware(deps.Log), deps.Metrics.Middleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	master := RoleMiddleware(domain.RoleMaster)
	staff := RoleMiddleware(domain.RoleMaster, domain.RoleTrainer)

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(deps.JWTSecret))
	{
		protected.GET("/me", h.GetMe)
		protected.GET("/snapshot", h.GetSnapshot)
		protected.PUT("/settings", h.UpdateSettings)
		protected.POST("/attendance", h.MarkAttendance)

		// --- Dashboards & read models ---
		protected.GET("/dashboard", staff, h.GetDashboard)
		protected.GET("/member-statuses", staff, h.GetMemberStatuses)
		protected.GET("/revenue", master, h.GetRevenue)
		protected.GET("/trainers", h.GetTrainers)

		// --- Members (MASTER) ---
		members := protected.Group("/members")
		{
			members.POST("", master, h.AddMember)
			members.PATCH("/:id", master, h.UpdateMember)
			members.DELETE("/:id", master, h.DeleteMember)
			members.PUT("/:id/program", staff, h.AssignProgram)
			members.POST("/:id/payments", master, h.ProcessPayment)
			// Members manage their own diet plans; staff manage anyone's.
			members.PUT("/:id/diet-plans", h.SaveDietPlan)
			members.DELETE("/:id/diet-plans/:planId", h.DeleteDietPlan)
		}

		// --- Trainers (MASTER) ---
		trainers := protected.Group("/trainers")
		trainers.Use(master)
		{
			trainers.POST("", h.AddTrainer)
			trainers.PATCH("/:id", h.UpdateTrainer)
			trainers.DELETE("/:id", h.DeleteTrainer)
		}

		// --- Templates ---
		protected.PUT("/programs", staff, h.SaveProgram)
		protected.DELETE("/programs/:id", staff, h.DeleteProgram)
		protected.GET("/workout-plans/code/:code", h.GetWorkoutPlanByCode)
		protected.PUT("/workout-plans", staff, h.SaveWorkoutPlan)
		protected.DELETE("/workout-plans/:id", staff, h.DeleteWorkoutPlan)
		protected.PUT("/membership-plans", master, h.SaveMembershipPlan)
		protected.DELETE("/membership-plans/:id", master, h.DeleteMembershipPlan)

		// --- Workout session ---
		workout := protected.Group("/workout")
		{
			workout.GET("", h.GetActiveWorkout)
			workout.POST("/start", h.StartWorkout)
			workout.PATCH("", h.UpdateWorkout)
			workout.POST("/finish", h.FinishWorkout)
			workout.DELETE("", h.CancelWorkout)
		}

		// --- History ---
		protected.GET("/history", h.GetHistory)
		protected.GET("/history/volume", h.GetVolume)
		protected.GET("/history/progress", h.GetProgress)
		protected.PATCH("/history/:recordId", master, h.CorrectWorkoutRecord)

		// --- Notifications & announcements ---
		protected.GET("/notifications", h.GetNotifications)
		protected.POST("/notifications", staff, h.Notify)
		protected.POST("/notifications/:id/read", h.MarkNotificationRead)
		protected.GET("/announcements", h.GetAnnouncements)
		protected.POST("/announcements", master, h.PostAnnouncement)
		protected.DELETE("/announcements/:id", master, h.DeleteAnnouncement)

		// --- Chat ---
		chat := protected.Group("/chat")
		{
			chat.GET("/:userId", h.GetConversation)
			chat.POST("/:userId", h.SendMessage)
			chat.PUT("/:userId/:messageId", h.EditMessage)
			chat.DELETE("/:userId/:messageId", h.DeleteMessage)
		}

		protected.POST("/master/backups", master, h.ExportBackup)
	}
}
