package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Inventory ---
var (
	ErrItemNotFound      = errors.New("inventory item not found")
	ErrReferenceNotFound = errors.New("catalog reference not found")
)

// --- Inventory DTOs ---

// CreateItemRequest is used for taking a new watch into the book.
type CreateItemRequest struct {
	ReferenceID           string             `json:"reference_id" binding:"required"`
	Serial                *string            `json:"serial"`
	Condition             *string            `json:"condition"`
	FullSet               *models.TriState   `json:"full_set"`
	Papers                *models.TriState   `json:"papers"`
	Box                   *models.TriState   `json:"box"`
	Cost                  decimal.Decimal    `json:"cost" binding:"required"`
	PriceAsked            *decimal.Decimal   `json:"price_asked"`
	Stage                 string             `json:"stage"` // opportunity (default) or inventory
	AcquisitionMode       string             `json:"acquisition_mode"`
	ContributingPartnerID *string            `json:"contributing_partner_id"`
	CustomSplit           models.CustomSplit `json:"custom_split"`
}

// UpdateItemRequest updates the descriptive fields of an item.
type UpdateItemRequest struct {
	Serial                *string            `json:"serial"`
	Condition             *string            `json:"condition"`
	FullSet               *models.TriState   `json:"full_set"`
	Papers                *models.TriState   `json:"papers"`
	Box                   *models.TriState   `json:"box"`
	Cost                  *decimal.Decimal   `json:"cost"`
	PriceAsked            *decimal.Decimal   `json:"price_asked"`
	AcquisitionMode       *string            `json:"acquisition_mode"`
	ContributingPartnerID *string            `json:"contributing_partner_id"`
	CustomSplit           models.CustomSplit `json:"custom_split"`
}

// AddCostRequest appends an additional cost to an item.
type AddCostRequest struct {
	Type        string          `json:"type" binding:"required"`
	Date        *time.Time      `json:"date"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description *string         `json:"description"`
}

// SetStatusRequest moves an in-stock item between the advisory display
// states (Available, Reserved, Consigned).
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- InventoryService Interface ---
type InventoryService interface {
	CreateItem(actor Actor, req CreateItemRequest) (*models.InventoryItem, error)
	GetItemByID(itemID string) (*models.InventoryItem, error)
	GetItems(stage, status *string, page, pageSize int) ([]models.InventoryItem, int, error)
	UpdateItem(actor Actor, itemID string, req UpdateItemRequest) (*models.InventoryItem, error)
	Approve(actor Actor, itemID string) (*models.InventoryItem, error)
	AddAdditionalCost(actor Actor, itemID string, req AddCostRequest) (*models.InventoryItem, error)
	SetStatus(actor Actor, itemID string, req SetStatusRequest) (*models.InventoryItem, error)
}

// --- inventoryService Implementation ---
type inventoryService struct {
	inventoryRepo repositories.InventoryRepository
	partnerRepo   repositories.PartnerRepository
	catalogRepo   repositories.CatalogRepository
	db            *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	ir repositories.InventoryRepository,
	pr repositories.PartnerRepository,
	cr repositories.CatalogRepository,
	db *sql.DB,
) InventoryService {
	return &inventoryService{
		inventoryRepo: ir,
		partnerRepo:   pr,
		catalogRepo:   cr,
		db:            db,
	}
}

// validateSplitConfig checks the acquisition-mode configuration against
// the current partner table.
func (s *inventoryService) validateSplitConfig(mode string, contributingPartnerID *string, customSplit models.CustomSplit) error {
	if !models.IsKnownAcquisitionMode(mode) {
		return fmt.Errorf("%w: unknown acquisition mode %q", ErrValidation, mode)
	}

	switch mode {
	case models.AcquisitionContribution:
		if contributingPartnerID == nil || *contributingPartnerID == "" {
			return fmt.Errorf("%w: contribution mode requires a contributing partner", ErrInvalidSplit)
		}
		if _, err := s.partnerRepo.GetPartnerByID(*contributingPartnerID, false); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: contributing partner %s does not exist", ErrInvalidSplit, *contributingPartnerID)
			}
			return fmt.Errorf("checking contributing partner: %w", err)
		}
	case models.AcquisitionCustom:
		if len(customSplit) == 0 {
			return fmt.Errorf("%w: custom mode requires a custom split map", ErrInvalidSplit)
		}
		for partnerID, pct := range customSplit {
			if pct.IsNegative() {
				return fmt.Errorf("%w: negative percentage for partner %s", ErrInvalidSplit, partnerID)
			}
			if _, err := s.partnerRepo.GetPartnerByID(partnerID, false); err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: custom split references unknown partner %s", ErrInvalidSplit, partnerID)
				}
				return fmt.Errorf("checking custom split partner: %w", err)
			}
		}
	}
	return nil
}

func triOrUnknown(t *models.TriState) models.TriState {
	if t == nil {
		return models.TriUnknown
	}
	switch *t {
	case models.TriYes, models.TriNo, models.TriUnknown:
		return *t
	}
	return models.TriUnknown
}

// CreateItem takes a new watch into the book, either as an opportunity
// or directly as available inventory.
func (s *inventoryService) CreateItem(actor Actor, req CreateItemRequest) (*models.InventoryItem, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not create items", ErrInsufficientPermission, actor.Role)
	}

	if req.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost cannot be negative", ErrValidation)
	}
	if _, err := s.catalogRepo.GetReferenceByID(req.ReferenceID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrReferenceNotFound, req.ReferenceID)
		}
		return nil, fmt.Errorf("checking reference: %w", err)
	}

	mode := req.AcquisitionMode
	if mode == "" {
		mode = models.AcquisitionPartnership
	}
	if err := s.validateSplitConfig(mode, req.ContributingPartnerID, req.CustomSplit); err != nil {
		return nil, err
	}

	stage := req.Stage
	if stage == "" {
		stage = models.StageOpportunity
	}

	item := &models.InventoryItem{
		ID:              utils.NewID(),
		ReferenceID:     req.ReferenceID,
		Serial:          req.Serial,
		Condition:       req.Condition,
		FullSet:         triOrUnknown(req.FullSet),
		Papers:          triOrUnknown(req.Papers),
		Box:             triOrUnknown(req.Box),
		Cost:            req.Cost,
		PriceAsked:      req.PriceAsked,
		AcquisitionMode: mode,
		CustomSplit:     req.CustomSplit,
	}
	if mode == models.AcquisitionContribution {
		item.ContributingPartnerID = req.ContributingPartnerID
	}

	switch stage {
	case models.StageOpportunity:
		item.Stage = models.StageOpportunity
		item.Status = models.StatusOpportunity
	case models.StageInventory:
		// Taken straight into stock: the entry date is today.
		item.Stage = models.StageInventory
		item.Status = models.StatusAvailable
		now := time.Now()
		item.EntryDate = &now
	default:
		return nil, fmt.Errorf("%w: items can only be created as opportunity or inventory, got %q", ErrValidation, stage)
	}

	if err := s.inventoryRepo.CreateItem(s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItemByID fetches a single item with its additional costs.
func (s *inventoryService) GetItemByID(itemID string) (*models.InventoryItem, error) {
	item, err := s.inventoryRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		return nil, err
	}
	return item, nil
}

// GetItems lists items with optional stage/status filters.
func (s *inventoryService) GetItems(stage, status *string, page, pageSize int) ([]models.InventoryItem, int, error) {
	return s.inventoryRepo.GetItems(stage, status, page, pageSize)
}

// UpdateItem edits the descriptive fields of an item that is not yet
// liquidated. The cost basis and split configuration of a liquidated
// item are frozen; editing them would silently rewrite already-settled
// profit.
func (s *inventoryService) UpdateItem(actor Actor, itemID string, req UpdateItemRequest) (*models.InventoryItem, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not update items", ErrInsufficientPermission, actor.Role)
	}

	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.Stage == models.StageLiquidated {
		return nil, fmt.Errorf("%w: item %s is liquidated and can no longer be edited", ErrInvalidStateTransition, itemID)
	}

	if req.Serial != nil {
		item.Serial = req.Serial
	}
	if req.Condition != nil {
		item.Condition = req.Condition
	}
	if req.FullSet != nil {
		item.FullSet = triOrUnknown(req.FullSet)
	}
	if req.Papers != nil {
		item.Papers = triOrUnknown(req.Papers)
	}
	if req.Box != nil {
		item.Box = triOrUnknown(req.Box)
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost cannot be negative", ErrValidation)
		}
		item.Cost = *req.Cost
	}
	if req.PriceAsked != nil {
		item.PriceAsked = req.PriceAsked
	}
	if req.AcquisitionMode != nil {
		item.AcquisitionMode = *req.AcquisitionMode
	}
	if req.ContributingPartnerID != nil {
		item.ContributingPartnerID = req.ContributingPartnerID
	}
	if req.CustomSplit != nil {
		item.CustomSplit = req.CustomSplit
	}
	if err := s.validateSplitConfig(item.AcquisitionMode, item.ContributingPartnerID, item.CustomSplit); err != nil {
		return nil, err
	}
	if item.AcquisitionMode != models.AcquisitionContribution {
		item.ContributingPartnerID = nil
	}
	if item.AcquisitionMode != models.AcquisitionCustom {
		item.CustomSplit = nil
	}

	if err := s.inventoryRepo.UpdateItem(s.db, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Approve moves an opportunity into available inventory and stamps the
// entry date. Any other starting stage is an explicit error, not a
// silent no-op.
func (s *inventoryService) Approve(actor Actor, itemID string) (*models.InventoryItem, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not approve items", ErrInsufficientPermission, actor.Role)
	}

	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.Stage != models.StageOpportunity {
		return nil, fmt.Errorf("%w: cannot approve item %s in stage %s", ErrInvalidStateTransition, itemID, item.Stage)
	}

	now := time.Now()
	if err := s.inventoryRepo.UpdateItemStage(s.db, itemID, models.StageInventory, models.StatusAvailable, &now); err != nil {
		return nil, err
	}
	item.Stage = models.StageInventory
	item.Status = models.StatusAvailable
	item.EntryDate = &now
	return item, nil
}

// AddAdditionalCost appends a cost to an item. Only the amount is
// constrained: it must be strictly positive.
func (s *inventoryService) AddAdditionalCost(actor Actor, itemID string, req AddCostRequest) (*models.InventoryItem, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not add costs", ErrInsufficientPermission, actor.Role)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: additional cost amount must be positive", ErrValidation)
	}

	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	cost := &models.AdditionalCost{
		ID:          utils.NewID(),
		ItemID:      item.ID,
		Type:        req.Type,
		Date:        date,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := s.inventoryRepo.AddAdditionalCost(s.db, cost); err != nil {
		return nil, err
	}
	item.AdditionalCosts = append(item.AdditionalCosts, *cost)
	return item, nil
}

// SetStatus switches an in-stock item between the advisory display
// states. The stage itself never changes here.
func (s *inventoryService) SetStatus(actor Actor, itemID string, req SetStatusRequest) (*models.InventoryItem, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not change item status", ErrInsufficientPermission, actor.Role)
	}

	switch req.Status {
	case models.StatusAvailable, models.StatusReserved, models.StatusConsigned:
	default:
		return nil, fmt.Errorf("%w: status %q is not an in-stock display state", ErrValidation, req.Status)
	}

	item, err := s.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.Stage != models.StageInventory {
		return nil, fmt.Errorf("%w: item %s is in stage %s, display status only applies to stock", ErrInvalidStateTransition, itemID, item.Stage)
	}

	if err := s.inventoryRepo.UpdateItemStage(s.db, itemID, models.StageInventory, req.Status, nil); err != nil {
		return nil, err
	}
	item.Status = req.Status
	return item, nil
}
