package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/pkg/utils"
)

// --- Custom Service Errors for Catalog ---
var (
	ErrBrandNotFound    = errors.New("brand not found")
	ErrModelNotFound    = errors.New("model not found")
	ErrCatalogNameTaken = errors.New("name or code already exists at this catalog level")
	ErrCatalogInUse     = errors.New("catalog entry is referenced by other records and cannot be deleted")
)

// --- Catalog DTOs ---

type CreateBrandRequest struct {
	Name    string  `json:"name" binding:"required"`
	Country *string `json:"country"`
}

type CreateModelRequest struct {
	BrandID string `json:"brand_id" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

type CreateReferenceRequest struct {
	ModelID     string  `json:"model_id" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Description *string `json:"description"`
	RetailPrice *string `json:"retail_price"`
	ImageURL    *string `json:"image_url"`
}

type UpdateReferenceRequest struct {
	Code        *string `json:"code"`
	Description *string `json:"description"`
	RetailPrice *string `json:"retail_price"`
	ImageURL    *string `json:"image_url"`
}

// --- CatalogService Interface ---
// The catalog is a pure lookup hierarchy: brands own models, models own
// references. Nothing here touches the ledgers.
type CatalogService interface {
	CreateBrand(actor Actor, req CreateBrandRequest) (*models.Brand, error)
	GetBrands() ([]models.Brand, error)
	UpdateBrand(actor Actor, brandID string, name string, country *string) (*models.Brand, error)
	DeleteBrand(actor Actor, brandID string) error

	CreateModel(actor Actor, req CreateModelRequest) (*models.WatchModel, error)
	GetModelsByBrand(brandID string) ([]models.WatchModel, error)
	UpdateModel(actor Actor, modelID string, name string) (*models.WatchModel, error)
	DeleteModel(actor Actor, modelID string) error

	CreateReference(actor Actor, req CreateReferenceRequest) (*models.Reference, error)
	GetReferencesByModel(modelID string) ([]models.Reference, error)
	GetReferenceByID(refID string) (*models.Reference, error)
	UpdateReference(actor Actor, refID string, req UpdateReferenceRequest) (*models.Reference, error)
	DeleteReference(actor Actor, refID string) error
}

// --- catalogService Implementation ---
type catalogService struct {
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(cr repositories.CatalogRepository, db *sql.DB) CatalogService {
	return &catalogService{catalogRepo: cr, db: db}
}

func (s *catalogService) CreateBrand(actor Actor, req CreateBrandRequest) (*models.Brand, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: brand name cannot be empty", ErrValidation)
	}

	brand := &models.Brand{ID: utils.NewID(), Name: req.Name, Country: req.Country}
	if err := s.catalogRepo.CreateBrand(s.db, brand); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: brand %s", ErrCatalogNameTaken, req.Name)
		}
		return nil, err
	}
	return brand, nil
}

func (s *catalogService) GetBrands() ([]models.Brand, error) {
	return s.catalogRepo.GetBrands()
}

func (s *catalogService) UpdateBrand(actor Actor, brandID string, name string, country *string) (*models.Brand, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}

	brand, err := s.catalogRepo.GetBrandByID(brandID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBrandNotFound, brandID)
		}
		return nil, err
	}
	if !utils.IsEmpty(name) {
		brand.Name = name
	}
	if country != nil {
		brand.Country = country
	}
	if err := s.catalogRepo.UpdateBrand(s.db, brand); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: brand %s", ErrCatalogNameTaken, brand.Name)
		}
		return nil, err
	}
	return brand, nil
}

func (s *catalogService) DeleteBrand(actor Actor, brandID string) error {
	if !actor.CanWrite() {
		return fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	if err := s.catalogRepo.DeleteBrand(s.db, brandID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBrandNotFound, brandID)
		}
		if errors.Is(err, repositories.ErrDatabaseError) {
			return fmt.Errorf("%w: brand %s", ErrCatalogInUse, brandID)
		}
		return err
	}
	return nil
}

func (s *catalogService) CreateModel(actor Actor, req CreateModelRequest) (*models.WatchModel, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	if _, err := s.catalogRepo.GetBrandByID(req.BrandID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBrandNotFound, req.BrandID)
		}
		return nil, err
	}

	model := &models.WatchModel{ID: utils.NewID(), BrandID: req.BrandID, Name: req.Name}
	if err := s.catalogRepo.CreateModel(s.db, model); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: model %s", ErrCatalogNameTaken, req.Name)
		}
		return nil, err
	}
	return model, nil
}

func (s *catalogService) GetModelsByBrand(brandID string) ([]models.WatchModel, error) {
	return s.catalogRepo.GetModelsByBrand(brandID)
}

func (s *catalogService) UpdateModel(actor Actor, modelID string, name string) (*models.WatchModel, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	if utils.IsEmpty(name) {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrValidation)
	}

	model, err := s.catalogRepo.GetModelByID(modelID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
		}
		return nil, err
	}

	model.Name = name
	if err := s.catalogRepo.UpdateModel(s.db, model); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: model %s", ErrCatalogNameTaken, name)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
		}
		return nil, err
	}
	return model, nil
}

func (s *catalogService) DeleteModel(actor Actor, modelID string) error {
	if !actor.CanWrite() {
		return fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	if err := s.catalogRepo.DeleteModel(s.db, modelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrModelNotFound, modelID)
		}
		return err
	}
	return nil
}

// normalizeRetailPrice parses a user-entered retail price and stores
// it in the canonical display format. Empty or missing input maps to
// nil; an unparseable amount is a validation error.
func normalizeRetailPrice(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := utils.NewNullString(strings.TrimSpace(*raw))
	if trimmed == nil {
		return nil, nil
	}
	amount, err := utils.ParseMoney(*trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: retail price %q is not a valid amount", ErrValidation, *raw)
	}
	return utils.NewNullString(utils.FormatMoney(amount, "€")), nil
}

func (s *catalogService) CreateReference(actor Actor, req CreateReferenceRequest) (*models.Reference, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	retailPrice, err := normalizeRetailPrice(req.RetailPrice)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalogRepo.GetModelByID(req.ModelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, req.ModelID)
		}
		return nil, err
	}

	ref := &models.Reference{
		ID:          utils.NewID(),
		ModelID:     req.ModelID,
		Code:        req.Code,
		Description: req.Description,
		RetailPrice: retailPrice,
		ImageURL:    req.ImageURL,
	}
	if err := s.catalogRepo.CreateReference(s.db, ref); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: reference %s", ErrCatalogNameTaken, req.Code)
		}
		return nil, err
	}
	return ref, nil
}

func (s *catalogService) GetReferencesByModel(modelID string) ([]models.Reference, error) {
	return s.catalogRepo.GetReferencesByModel(modelID)
}

func (s *catalogService) GetReferenceByID(refID string) (*models.Reference, error) {
	ref, err := s.catalogRepo.GetReferenceByID(refID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, refID)
		}
		return nil, err
	}
	return ref, nil
}

func (s *catalogService) UpdateReference(actor Actor, refID string, req UpdateReferenceRequest) (*models.Reference, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}

	ref, err := s.GetReferenceByID(refID)
	if err != nil {
		return nil, err
	}
	if req.Code != nil && !utils.IsEmpty(*req.Code) {
		ref.Code = *req.Code
	}
	if req.Description != nil {
		ref.Description = req.Description
	}
	if req.RetailPrice != nil {
		retailPrice, err := normalizeRetailPrice(req.RetailPrice)
		if err != nil {
			return nil, err
		}
		ref.RetailPrice = retailPrice
	}
	if req.ImageURL != nil {
		ref.ImageURL = req.ImageURL
	}
	if err := s.catalogRepo.UpdateReference(s.db, ref); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: reference %s", ErrCatalogNameTaken, ref.Code)
		}
		return nil, err
	}
	return ref, nil
}

func (s *catalogService) DeleteReference(actor Actor, refID string) error {
	if !actor.CanWrite() {
		return fmt.Errorf("%w: role %s may not edit the catalog", ErrInsufficientPermission, actor.Role)
	}
	if err := s.catalogRepo.DeleteReference(s.db, refID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrReferenceNotFound, refID)
		}
		return err
	}
	return nil
}
