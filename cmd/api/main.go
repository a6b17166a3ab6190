package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/rent-api/internal/config"
	"github.com/yourusername/rent-api/internal/handler"
	"github.com/yourusername/rent-api/internal/middleware"
	pgRepo "github.com/yourusername/rent-api/internal/repository/postgres"
	"github.com/yourusername/rent-api/internal/service"
	"github.com/yourusername/rent-api/pkg/auth"
	"github.com/yourusername/rent-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	productRepo := pgRepo.NewProductRepo(db)
	orderRepo := pgRepo.NewOrderRepo(db)
	promoRepo := pgRepo.NewPromoCodeRepo(db)
	announcementRepo := pgRepo.NewAnnouncementRepo(db)

	// Инициализируем JWT-сервис (секрет обязателен, проверено при загрузке конфигурации)
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Почтовый шлюз: Resend, либо консольный бэкенд, если ключ не задан
	var emailService service.EmailService
	if cfg.Email.APIKey != "" {
		emailService, err = service.NewResendEmailService(cfg.Email.APIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		log.Println("Email: используется Resend")
	} else {
		emailService = &service.ConsoleEmailService{}
		log.Println("Email: бэкенд не сконфигурирован, коды будут печататься в лог")
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService, emailService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	productService, err := service.NewProductService(productRepo, time.Duration(cfg.Catalog.PurgeRetentionMin)*time.Minute)
	if err != nil {
		log.Printf("Failed to initialize ProductService: %v", err)
		os.Exit(1)
	}
	orderService, err := service.NewOrderService(orderRepo, productRepo, userRepo, db)
	if err != nil {
		log.Printf("Failed to initialize OrderService: %v", err)
		os.Exit(1)
	}
	promoService, err := service.NewPromoService(promoRepo, cfg.Promo.CodeScope, db)
	if err != nil {
		log.Printf("Failed to initialize PromoService: %v", err)
		os.Exit(1)
	}
	userService, err := service.NewUserService(userRepo)
	if err != nil {
		log.Printf("Failed to initialize UserService: %v", err)
		os.Exit(1)
	}
	announcementService, err := service.NewAnnouncementService(announcementRepo)
	if err != nil {
		log.Printf("Failed to initialize AnnouncementService: %v", err)
		os.Exit(1)
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(promoService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	adminHandler := handler.NewAdminHandler(userService, promoService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Статусные эндпоинты
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Rent Platform API", "status": "running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Настраиваем маршруты API
	users := router.Group("/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/verify", authHandler.Verify)
		users.POST("/resend-verification", authHandler.ResendVerification)
		users.POST("/login", authHandler.Login)
		users.POST("/forgot-password", authHandler.ForgotPassword)
		users.POST("/reset-password", authHandler.ResetPassword)

		authedUsers := users.Group("")
		authedUsers.Use(authMiddleware.RequireAuth())
		{
			authedUsers.GET("/me", authHandler.GetMe)
			authedUsers.POST("/change-password", authHandler.ChangePassword)
			authedUsers.POST("/redeem-code", userHandler.RedeemCode)
		}
	}

	products := router.Group("/products")
	{
		products.GET("/list", productHandler.ListPublic)
		products.GET("/calc-otp", productHandler.CalcOTP)

		adminProducts := products.Group("")
		adminProducts.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			adminProducts.GET("/admin/list", productHandler.ListAdmin)
			adminProducts.POST("/add", productHandler.Create)
			adminProducts.GET("/:id", productHandler.Get)
			adminProducts.PUT("/:id", productHandler.Update)
			adminProducts.DELETE("/:id", productHandler.Delete)
		}
	}

	orders := router.Group("/orders")
	orders.Use(authMiddleware.RequireAuth())
	{
		orders.POST("/buy/:product_id", orderHandler.Buy)
		orders.POST("/renew/:order_id", orderHandler.Renew)
		orders.GET("/history", orderHandler.History)

		adminOrders := orders.Group("")
		adminOrders.Use(authMiddleware.AdminOnly())
		{
			adminOrders.GET("/all", orderHandler.ListAll)
			adminOrders.POST("/assign", orderHandler.Assign)
			adminOrders.PUT("/:id", orderHandler.Update)
			adminOrders.DELETE("/:id", orderHandler.Revoke)
		}
	}

	router.GET("/announcements/active", announcementHandler.ListActive)

	admin := router.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/balance", adminHandler.SetBalance)
		admin.POST("/users/add-balance", adminHandler.AddBalance)

		admin.POST("/promo-codes", adminHandler.CreatePromoCode)
		admin.GET("/promo-codes", adminHandler.ListPromoCodes)
		admin.DELETE("/promo-codes/:id", adminHandler.DeactivatePromoCode)

		admin.GET("/announcements", announcementHandler.ListAll)
		admin.POST("/announcements", announcementHandler.Create)
		admin.PUT("/announcements/:id", announcementHandler.Update)
		admin.PATCH("/announcements/:id/toggle", announcementHandler.Toggle)
		admin.DELETE("/announcements/:id", announcementHandler.Delete)
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	readTimeout := cfg.Server.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15
	}
	writeTimeout := cfg.Server.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 15
	}
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
