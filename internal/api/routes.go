package api

import (
	"alcyxob/fitness-coach/internal/domain" // Needed for RoleMiddleware
	"alcyxob/fitness-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Trainer       service.TrainerService
	Templates     service.TemplateService
	Cycles        service.CycleService
	Forks         service.ForkService
	Logs          service.LogService
	Uploads       service.UploadService
	Notifications service.NotificationService
}

func SetupRoutes(router *gin.Engine, jwtSecret string, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	trainerHandler := NewTrainerHandler(services.Trainer)
	templateHandler := NewTemplateHandler(services.Templates)
	mesocycleHandler := NewMesocycleHandler(services.Cycles)
	clientHandler := NewClientHandler(services.Cycles, services.Logs)
	exerciseHandler := NewExerciseHandler(services.Uploads)
	notificationHandler := NewNotificationHandler(services.Notifications)
	templateTree := NewTreeHandler(services.Templates, "templateId")
	mesocycleTree := NewTreeHandler(services.Forks, "mesocycleId")

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.GET("/notifications", notificationHandler.ListNotifications)

		// Readable by the owning coach and the client of the mesocycle.
		protected.GET("/mesocycles/:mesocycleId", mesocycleHandler.GetMesocycle)
		protected.GET("/mesocycles/:mesocycleId/logged-weeks", mesocycleHandler.ListLoggedWeeks)
		protected.GET("/microcycles/:microcycleId/logs", clientHandler.ListMicrocycleLogs)
		protected.GET("/exercises/:exerciseId/video", exerciseHandler.GetVideoDownloadURL)

		// --- Coach Routes ---
		trainerApiGroup := protected.Group("/trainer")
		trainerApiGroup.Use(RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin))
		{
			trainerApiGroup.POST("/clients", trainerHandler.AddClientByEmail)
			trainerApiGroup.GET("/clients", trainerHandler.GetManagedClients)
			trainerApiGroup.POST("/clients/:clientId/mesocycles", mesocycleHandler.CreateMesocycle)
			trainerApiGroup.GET("/clients/:clientId/mesocycles", mesocycleHandler.ListClientMesocycles)

			trainerApiGroup.POST("/templates", templateHandler.CreateTemplate)
			trainerApiGroup.GET("/templates", templateHandler.ListTemplates)
			trainerApiGroup.POST("/template-imports", templateHandler.ImportTemplate)
			tpl := trainerApiGroup.Group("/templates/:templateId")
			{
				tpl.GET("", templateHandler.GetTemplate)
				tpl.PATCH("", templateHandler.RenameTemplate)
				tpl.DELETE("", templateHandler.DeleteTemplate)
				tpl.POST("/duplicate", templateHandler.DuplicateTemplate)
				templateTree.Register(tpl)
			}

			meso := trainerApiGroup.Group("/mesocycles/:mesocycleId")
			{
				meso.POST("/complete", mesocycleHandler.CompleteMesocycle)
				meso.POST("/save-as-template", mesocycleHandler.SaveAsTemplate)
				mesocycleTree.Register(meso) // Forks the plan on first edit
			}

			trainerApiGroup.POST("/exercises/:exerciseId/video/upload-url", exerciseHandler.RequestVideoUploadURL)
			trainerApiGroup.POST("/exercises/:exerciseId/video/confirm", exerciseHandler.ConfirmVideoUpload)
		}

		// --- Client Routes ---
		clientApiGroup := protected.Group("/client")
		clientApiGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientApiGroup.GET("/active-mesocycle", clientHandler.GetActiveMesocycle)
			clientApiGroup.GET("/mesocycles", clientHandler.ListMyMesocycles)
			clientApiGroup.POST("/microcycles/:microcycleId/logs", clientHandler.RecordWorkout)
			clientApiGroup.PUT("/logs/:logId", clientHandler.UpdateWorkout)
		}
	}
}
