package router

import (
	"watchtrade_backend/internal/handlers"
	"watchtrade_backend/internal/middleware"
	"watchtrade_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// staffOnly gates mutating routes to the two operational roles.
// Services repeat the check; the middleware just fails fast.
func staffOnly() gin.HandlerFunc {
	return middleware.RoleAuthMiddleware(models.RoleDirector, models.RoleOperator)
}

func setupCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("/brands", h.GetBrands)
		catalog.POST("/brands", staffOnly(), h.CreateBrand)
		catalog.PUT("/brands/:id", staffOnly(), h.UpdateBrand)
		catalog.DELETE("/brands/:id", staffOnly(), h.DeleteBrand)
		catalog.GET("/brands/:id/models", h.GetModelsByBrand)

		catalog.POST("/models", staffOnly(), h.CreateModel)
		catalog.PUT("/models/:id", staffOnly(), h.UpdateModel)
		catalog.DELETE("/models/:id", staffOnly(), h.DeleteModel)
		catalog.GET("/models/:id/references", h.GetReferencesByModel)

		catalog.POST("/references", staffOnly(), h.CreateReference)
		catalog.GET("/references/:id", h.GetReferenceByID)
		catalog.PUT("/references/:id", staffOnly(), h.UpdateReference)
		catalog.DELETE("/references/:id", staffOnly(), h.DeleteReference)
	}
}

func setupContactRoutes(rg *gin.RouterGroup, h *handlers.ContactHandler) {
	contacts := rg.Group("/contacts")
	{
		contacts.GET("", h.GetContacts)
		contacts.GET("/:id", h.GetContactByID)
		contacts.POST("", staffOnly(), h.CreateContact)
		contacts.PUT("/:id", staffOnly(), h.UpdateContact)
		contacts.DELETE("/:id", staffOnly(), h.DeleteContact)
	}
}

func setupLedgerRoutes(
	rg *gin.RouterGroup,
	ih *handlers.InventoryHandler,
	sh *handlers.SaleHandler,
	ph *handlers.PartnerHandler,
	th *handlers.SettlementHandler,
) {
	items := rg.Group("/items")
	{
		items.GET("", ih.GetItems)
		items.GET("/:id", ih.GetItemByID)
		items.POST("", staffOnly(), ih.CreateItem)
		items.PUT("/:id", staffOnly(), ih.UpdateItem)
		items.POST("/:id/approve", staffOnly(), ih.ApproveItem)
		items.POST("/:id/costs", staffOnly(), ih.AddCost)
		items.PUT("/:id/status", staffOnly(), ih.SetStatus)
	}

	sales := rg.Group("/sales")
	{
		sales.GET("", sh.GetSales)
		sales.GET("/:id", sh.GetSaleByID)
		sales.POST("", staffOnly(), sh.CreateSale)
		sales.POST("/:id/payments", staffOnly(), sh.RecordPayment)
	}

	partners := rg.Group("/partners")
	{
		// Partner records carry the full movement history, so reads
		// are staff-only. An investor's view of its own entitlement
		// goes through the settlement endpoint below.
		partners.GET("", staffOnly(), ph.GetPartners)
		partners.GET("/:id", staffOnly(), ph.GetPartnerByID)
		partners.POST("", staffOnly(), ph.CreatePartner)
		partners.PUT("/:id", staffOnly(), ph.UpdatePartner)
		partners.PUT("/participations", staffOnly(), ph.UpdateParticipations)
		partners.POST("/:id/movements", staffOnly(), ph.AddMovement)

		// Investors may read their own partner's line; the service
		// enforces the ownership check.
		partners.GET("/:id/settlement", th.GetPartnerSettlement)
	}

	rg.GET("/settlement", staffOnly(), th.GetSettlement)
	rg.GET("/reports/profit", staffOnly(), th.GetProfitReport)
}
