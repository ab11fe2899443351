package handlers

import (
	"errors"
	"net/http"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/services"
	"watchtrade_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler holds the catalog service.
type CatalogHandler struct {
	catalogService services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: cs}
}

func respondCatalogError(c *gin.Context, err error, op string) {
	utils.LogError(err, op+": Error from catalogService")
	switch {
	case errors.Is(err, services.ErrInsufficientPermission):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeInsufficientPermission, "You do not have permission for this operation.", err.Error()))
	case errors.Is(err, services.ErrBrandNotFound), errors.Is(err, services.ErrModelNotFound), errors.Is(err, services.ErrReferenceNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Catalog entry not found.", err.Error()))
	case errors.Is(err, services.ErrCatalogNameTaken):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Name or code already exists at this level.", err.Error()))
	case errors.Is(err, services.ErrCatalogInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Entry is referenced by other records and cannot be deleted.", err.Error()))
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Catalog operation failed.", "Internal error"))
	}
}

// CreateBrand handles the creation of a new brand.
func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req services.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	brand, err := h.catalogService.CreateBrand(currentActor(c), req)
	if err != nil {
		respondCatalogError(c, err, "CreateBrand")
		return
	}
	c.JSON(http.StatusCreated, brand)
}

// GetBrands handles fetching all brands.
func (h *CatalogHandler) GetBrands(c *gin.Context) {
	brands, err := h.catalogService.GetBrands()
	if err != nil {
		respondCatalogError(c, err, "GetBrands")
		return
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	c.JSON(http.StatusOK, brands)
}

// UpdateBrand handles renaming a brand.
func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required"`
		Country *string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	brand, err := h.catalogService.UpdateBrand(currentActor(c), c.Param("id"), req.Name, req.Country)
	if err != nil {
		respondCatalogError(c, err, "UpdateBrand")
		return
	}
	c.JSON(http.StatusOK, brand)
}

// DeleteBrand handles deleting a brand with no models.
func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	if err := h.catalogService.DeleteBrand(currentActor(c), c.Param("id")); err != nil {
		respondCatalogError(c, err, "DeleteBrand")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateModel handles the creation of a model under a brand.
func (h *CatalogHandler) CreateModel(c *gin.Context) {
	var req services.CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	model, err := h.catalogService.CreateModel(currentActor(c), req)
	if err != nil {
		respondCatalogError(c, err, "CreateModel")
		return
	}
	c.JSON(http.StatusCreated, model)
}

// GetModelsByBrand handles fetching the models of a brand.
func (h *CatalogHandler) GetModelsByBrand(c *gin.Context) {
	models_, err := h.catalogService.GetModelsByBrand(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "GetModelsByBrand")
		return
	}
	if models_ == nil {
		models_ = []models.WatchModel{}
	}
	c.JSON(http.StatusOK, models_)
}

// UpdateModel handles renaming a model.
func (h *CatalogHandler) UpdateModel(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	model, err := h.catalogService.UpdateModel(currentActor(c), c.Param("id"), req.Name)
	if err != nil {
		respondCatalogError(c, err, "UpdateModel")
		return
	}
	c.JSON(http.StatusOK, model)
}

// DeleteModel handles deleting a model with no references.
func (h *CatalogHandler) DeleteModel(c *gin.Context) {
	if err := h.catalogService.DeleteModel(currentActor(c), c.Param("id")); err != nil {
		respondCatalogError(c, err, "DeleteModel")
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateReference handles the creation of a reference under a model.
func (h *CatalogHandler) CreateReference(c *gin.Context) {
	var req services.CreateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	ref, err := h.catalogService.CreateReference(currentActor(c), req)
	if err != nil {
		respondCatalogError(c, err, "CreateReference")
		return
	}
	c.JSON(http.StatusCreated, ref)
}

// GetReferencesByModel handles fetching the references of a model.
func (h *CatalogHandler) GetReferencesByModel(c *gin.Context) {
	refs, err := h.catalogService.GetReferencesByModel(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "GetReferencesByModel")
		return
	}
	if refs == nil {
		refs = []models.Reference{}
	}
	c.JSON(http.StatusOK, refs)
}

// GetReferenceByID handles fetching a single reference.
func (h *CatalogHandler) GetReferenceByID(c *gin.Context) {
	ref, err := h.catalogService.GetReferenceByID(c.Param("id"))
	if err != nil {
		respondCatalogError(c, err, "GetReferenceByID")
		return
	}
	c.JSON(http.StatusOK, ref)
}

// UpdateReference handles updating a reference's details.
func (h *CatalogHandler) UpdateReference(c *gin.Context) {
	var req services.UpdateReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}
	ref, err := h.catalogService.UpdateReference(currentActor(c), c.Param("id"), req)
	if err != nil {
		respondCatalogError(c, err, "UpdateReference")
		return
	}
	c.JSON(http.StatusOK, ref)
}

// DeleteReference handles deleting a reference not used by inventory.
func (h *CatalogHandler) DeleteReference(c *gin.Context) {
	if err := h.catalogService.DeleteReference(currentActor(c), c.Param("id")); err != nil {
		respondCatalogError(c, err, "DeleteReference")
		return
	}
	c.Status(http.StatusNoContent)
}
