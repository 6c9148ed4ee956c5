package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"FACEGATE/config"
	attendancecontroller "FACEGATE/controllers/attendance"
	authcontroller "FACEGATE/controllers/auth"
	employeecontroller "FACEGATE/controllers/employee"
	facecontroller "FACEGATE/controllers/face"
	groupcontroller "FACEGATE/controllers/group"
	"FACEGATE/extractor"
	"FACEGATE/gallery"
	"FACEGATE/jobs"
	"FACEGATE/ledger"
	"FACEGATE/middleware"
	"FACEGATE/models"
	"FACEGATE/realtime"
)

func main() {
	config.MustJWTKey()
	models.ConnectDatabase()

	// Core wiring: one gallery cache and one ledger shared by the REST
	// controllers and every streaming session.
	cache := gallery.NewCache(gallery.NewDBLoader(models.DB))
	led := ledger.New(ledger.NewGormRepository(models.DB))
	ex := extractor.NewClient(config.ExtractorURL())
	gateway := realtime.NewGateway(cache, ex, led, realtime.NewDBScopeResolver(models.DB), config.MatchThreshold())

	employees := employeecontroller.NewController(ex, cache)
	faces := facecontroller.NewController(ex, cache)
	attendance := attendancecontroller.NewController(led)

	scheduler := jobs.StartScheduler(cache)
	defer scheduler.Stop()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	{
		api.POST("/auth/register", authcontroller.RegisterHandler)
		api.POST("/auth/login", authcontroller.LoginHandler)

		protected := api.Group("", middleware.RequireCompany())
		{
			protected.POST("/groups", groupcontroller.CreateHandler)
			protected.GET("/groups", groupcontroller.ListHandler)

			protected.POST("/employees/add", employees.AddHandler)
			protected.GET("/employees", employees.ListHandler)

			protected.POST("/faces/add", faces.AddHandler)
			protected.GET("/faces/users", faces.ListUsersHandler)

			protected.POST("/attendance/entry", attendance.EntryHandler)
			protected.POST("/attendance/exit", attendance.ExitHandler)
			protected.GET("/attendance", attendance.ListHandler)
			protected.GET("/attendance/export", attendance.ExportHandler)
		}
	}

	// Streaming verification sessions, one per connected camera.
	r.GET("/ws/:companyName/:groupName", gateway.HandleWS)

	// The kiosk page itself; the page opens the websocket above.
	r.Static("/static", "./public")
	r.GET("/:companyName/:groupName", func(c *gin.Context) {
		c.File("./public/face-verification.html")
	})

	log.Printf("Server running on http://localhost:%s", config.Port())
	if err := r.Run(":" + config.Port()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
