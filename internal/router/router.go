package router

import (
	"database/sql"

	"watchtrade_backend/internal/handlers"
	"watchtrade_backend/internal/middleware"
	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	partnerRepo := repositories.NewPartnerRepository(db)
	inventoryRepo := repositories.NewInventoryRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	snapshotRepo := repositories.NewSnapshotRepository(db)

	// Services
	authService := services.NewAuthService(authRepo, db)
	catalogService := services.NewCatalogService(catalogRepo, db)
	contactService := services.NewContactService(contactRepo, db)
	partnerService := services.NewPartnerService(partnerRepo, db)
	inventoryService := services.NewInventoryService(inventoryRepo, partnerRepo, catalogRepo, db)
	saleService := services.NewSaleService(saleRepo, inventoryRepo, contactRepo, db)
	settlementService := services.NewSettlementService(snapshotRepo, catalogRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	contactHandler := handlers.NewContactHandler(contactService)
	partnerHandler := handlers.NewPartnerHandler(partnerService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	saleHandler := handlers.NewSaleHandler(saleService)
	settlementHandler := handlers.NewSettlementHandler(settlementService)
	proxyHandler := handlers.NewProxyHandler()

	apiV1 := engine.Group("/api/v1")

	// Public routes: sign-up, login, token refresh and the two
	// pass-through proxies used directly by the frontend.
	public := apiV1.Group("")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/refresh", authHandler.RefreshToken)

		public.GET("/proxy/image", proxyHandler.ProxyImage)
		public.OPTIONS("/proxy/image", proxyHandler.ProxyImage)
		public.POST("/proxy/llm", proxyHandler.ProxyLLM)
		public.OPTIONS("/proxy/llm", proxyHandler.ProxyLLM)
	}

	// Any valid token, including pending accounts, may read its own
	// profile. Everything else requires an assigned role.
	authed := apiV1.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/auth/me", authHandler.Me)
	}

	active := apiV1.Group("")
	active.Use(middleware.AuthMiddleware(), middleware.ActiveRoleMiddleware())

	setupCatalogRoutes(active, catalogHandler)
	setupContactRoutes(active, contactHandler)
	setupLedgerRoutes(active, inventoryHandler, saleHandler, partnerHandler, settlementHandler)

	// User administration is director-only.
	admin := apiV1.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleAuthMiddleware(models.RoleDirector))
	{
		admin.PUT("/users/:id/role", authHandler.UpdateUserRole)
		admin.PUT("/users/:id/active", authHandler.SetUserActive)
	}
}
