package main

import (
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notify"
	"backend/internal/repository"
	"backend/internal/scheduler"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Auto-PO Engine API
// @version         1.0
// @description     Rule-driven automatic purchase order generation for inventory replenishment.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	ruleRepo := repository.NewRuleRepository(db)
	itemRepo := repository.NewItemRepository(db)
	suppliers := repository.NewSupplierDirectory(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	execRepo := repository.NewExecutionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)
	dispatcher := notify.NewHubDispatcher(wsHub)

	execService := service.NewExecutionService(ruleRepo, itemRepo, suppliers, poRepo, execRepo, auditRepo, txManager, dispatcher, nil)
	summaryService := service.NewSummaryService(ruleRepo, itemRepo, poRepo, execRepo)
	poService := service.NewPurchaseOrderService(poRepo, auditRepo, txManager)

	// The scheduler reloads cron entries whenever a rule changes, so the rule
	// service gets it as its reloader.
	sched := scheduler.New(execService, ruleRepo)
	ruleService := service.NewRuleService(ruleRepo, auditRepo, txManager, execService.Windows(), sched)

	// Initialize Handlers
	ruleHandler := handler.NewRuleHandler(ruleService)
	executionHandler := handler.NewExecutionHandler(execService, summaryService)
	poHandler := handler.NewPurchaseOrderHandler(poService)
	itemHandler := handler.NewItemHandler(itemRepo, execService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	ruleHandler.RegisterRoutes(router.Group(""))
	executionHandler.RegisterRoutes(router.Group(""))
	poHandler.RegisterRoutes(router.Group(""))
	itemHandler.RegisterRoutes(router.Group(""))

	// Cron entries for SCHEDULED rules plus an optional sweep over every
	// runnable rule (e.g. "@every 1h"). Empty disables the sweep.
	sched.Start(os.Getenv("AUTO_PO_SWEEP_INTERVAL"))
	defer sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
