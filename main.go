package main

import (
	"context"
	"log"

	"github.com/Ryoga-88/ClassNotebook/config"
	"github.com/Ryoga-88/ClassNotebook/controllers"
	"github.com/Ryoga-88/ClassNotebook/database"
	"github.com/Ryoga-88/ClassNotebook/docs"
	"github.com/Ryoga-88/ClassNotebook/middleware"
	"github.com/Ryoga-88/ClassNotebook/storage"
	"github.com/Ryoga-88/ClassNotebook/uploads"
	"github.com/Ryoga-88/ClassNotebook/websocket"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Class Notebook API
// @version         1.0
// @description     API Server for the Class Notebook chat application
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database connection established")

	// Initialize object storage
	store, err := storage.New(context.Background(), storage.Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Start the event hub
	hub := websocket.NewHub()
	go hub.Run()

	uploadService := uploads.NewService(db, store, hub)

	authController := controllers.NewAuthController(db, cfg.JWTSecret)
	roomController := controllers.NewRoomController(db, hub)
	messageController := controllers.NewMessageController(db, hub)
	fileController := controllers.NewFileController(db, uploadService)
	wsHandler := websocket.NewHandler(hub, db, cfg.JWTSecret)

	// Set up Swagger info
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Authentication routes
	auth := router.Group("/api")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))
	{
		api.GET("/me", authController.Me)

		// Room routes
		api.GET("/rooms", roomController.GetRooms)
		api.POST("/rooms", roomController.CreateRoom)
		api.GET("/rooms/:id", roomController.GetRoom)
		api.DELETE("/rooms/:id", roomController.DeleteRoom)

		// Message routes
		api.GET("/messages", messageController.GetMessages)
		api.POST("/messages", messageController.CreateMessage)

		// File routes
		api.GET("/files", fileController.GetFiles)
		api.POST("/rooms/:id/files", fileController.UploadFile)
	}

	// WebSocket route
	router.GET("/ws", wsHandler.HandleConnection)

	log.Printf("Server running on port %s", cfg.Port)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
