package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dentasys/clinic-api/internal/middleware"
)

// NewRouter builds the gin engine with all middleware and routes wired.
// /api/incidents is an alias of /api/appointments; the two route groups
// share handlers.
func NewRouter(h *Handler, logger zerolog.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Denta API Running")
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/google-login", h.GoogleLogin)
		auth.POST("/complete-google-registration", h.CompleteGoogleRegistration)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/users/me", h.GetMe)

		patients := api.Group("/patients")
		{
			patients.GET("", h.GetPatients)
			patients.POST("", h.CreatePatient)
			patients.GET("/names", h.GetPatientNames)
			patients.GET("/dropdown", h.GetPatientNames)
			patients.GET("/:id", h.GetPatient)
			patients.PUT("/:id", h.UpdatePatient)
			patients.DELETE("/:id", h.DeletePatient)
		}

		for _, group := range []string{"/appointments", "/incidents"} {
			g := api.Group(group)
			g.GET("", h.GetAppointments)
			g.POST("", h.CreateAppointment)
			g.GET("/range", h.GetAppointmentsByRange)
			g.GET("/patient/:patientId", h.GetPatientAppointments)
			g.PUT("/status/:id", h.UpdateAppointmentStatus)
			g.GET("/:id", h.GetAppointment)
			g.PUT("/:id", h.UpdateAppointment)
			g.DELETE("/:id", h.DeleteAppointment)
		}

		api.POST("/chatbot", h.HandleChat)
		api.POST("/chat", h.HandleChat)
	}

	return r
}
