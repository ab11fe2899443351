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

// --- Custom Service Errors for Sales ---
var (
	ErrSaleNotFound   = errors.New("sale not found")
	ErrSaleExists     = errors.New("a sale already exists for this item")
	ErrClientNotFound = errors.New("client contact not found")
)

// --- Sale DTOs ---

// CreateSaleRequest records the sale of one inventory item.
type CreateSaleRequest struct {
	WatchID     string          `json:"watch_id" binding:"required"`
	ClientID    *string         `json:"client_id"`
	SaleDate    *time.Time      `json:"sale_date"`
	AgreedPrice decimal.Decimal `json:"agreed_price" binding:"required"`
	Notes       *string         `json:"notes"`
}

// RecordPaymentRequest appends a partial payment to a sale.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Date   *time.Time      `json:"date"`
	Method *string         `json:"method"`
	Notes  *string         `json:"notes"`
}

// --- SaleService Interface ---
type SaleService interface {
	CreateSale(actor Actor, req CreateSaleRequest) (*models.Sale, error)
	GetSaleByID(saleID string) (*models.Sale, error)
	GetSales(status *string, page, pageSize int) ([]models.Sale, int, error)
	RecordPayment(actor Actor, saleID string, req RecordPaymentRequest) (*models.Sale, error)
}

// --- saleService Implementation ---
type saleService struct {
	saleRepo      repositories.SaleRepository
	inventoryRepo repositories.InventoryRepository
	contactRepo   repositories.ContactRepository
	db            *sql.DB // For managing transactions
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(
	sr repositories.SaleRepository,
	ir repositories.InventoryRepository,
	cr repositories.ContactRepository,
	db *sql.DB,
) SaleService {
	return &saleService{
		saleRepo:      sr,
		inventoryRepo: ir,
		contactRepo:   cr,
		db:            db,
	}
}

// CreateSale records a sale against an available inventory item and, in
// the same transaction, flips the item to liquidated/Sold. The item
// must be in stage inventory and carry no existing sale.
func (s *saleService) CreateSale(actor Actor, req CreateSaleRequest) (*models.Sale, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not create sales", ErrInsufficientPermission, actor.Role)
	}
	if !req.AgreedPrice.IsPositive() {
		return nil, fmt.Errorf("%w: agreed price must be positive", ErrValidation)
	}

	item, err := s.inventoryRepo.GetItemByID(req.WatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, req.WatchID)
		}
		return nil, fmt.Errorf("fetching item for sale: %w", err)
	}
	if item.Stage != models.StageInventory {
		return nil, fmt.Errorf("%w: cannot sell item %s in stage %s", ErrInvalidStateTransition, item.ID, item.Stage)
	}

	if _, err := s.saleRepo.GetSaleByWatchID(item.ID); err == nil {
		return nil, fmt.Errorf("%w: item %s", ErrSaleExists, item.ID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("checking existing sale: %w", err)
	}

	if req.ClientID != nil && *req.ClientID != "" {
		if _, err := s.contactRepo.GetContactByID(*req.ClientID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrClientNotFound, *req.ClientID)
			}
			return nil, fmt.Errorf("checking sale client: %w", err)
		}
	}

	saleDate := time.Now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	sale := &models.Sale{
		ID:          utils.NewID(),
		WatchID:     item.ID,
		ClientID:    req.ClientID,
		SaleDate:    saleDate,
		AgreedPrice: req.AgreedPrice,
		Notes:       req.Notes,
		Payments:    []models.Payment{},
		Status:      models.SalePending,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saleRepo.CreateSale(tx, sale); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: item %s", ErrSaleExists, item.ID)
		}
		return nil, err
	}
	if err := s.inventoryRepo.UpdateItemStage(tx, item.ID, models.StageLiquidated, models.StatusSold, nil); err != nil {
		return nil, fmt.Errorf("flipping item to liquidated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}
	return sale, nil
}

// GetSaleByID fetches a sale with its payments.
func (s *saleService) GetSaleByID(saleID string) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
		}
		return nil, err
	}
	return sale, nil
}

// GetSales lists sales with an optional status filter.
func (s *saleService) GetSales(status *string, page, pageSize int) ([]models.Sale, int, error) {
	return s.saleRepo.GetSales(status, page, pageSize)
}

// RecordPayment appends a payment to a sale that is not yet fully
// collected and stores the freshly derived status in the same
// transaction. Overpayment is not rejected; the sale simply reports
// Liquidated and the surplus stays visible in the payment total.
func (s *saleService) RecordPayment(actor Actor, saleID string, req RecordPaymentRequest) (*models.Sale, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not record payments", ErrInsufficientPermission, actor.Role)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	sale, err := s.GetSaleByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == models.SaleLiquidated {
		return nil, fmt.Errorf("%w: sale %s is already liquidated", ErrInvalidStateTransition, saleID)
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	payment := &models.Payment{
		ID:     utils.NewID(),
		SaleID: sale.ID,
		Date:   date,
		Amount: req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
	}

	newPayments := append(append([]models.Payment{}, sale.Payments...), *payment)
	newStatus := models.DeriveSaleStatus(sale.AgreedPrice, newPayments)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.saleRepo.AddPayment(tx, payment); err != nil {
		return nil, err
	}
	if err := s.saleRepo.UpdateSaleStatus(tx, sale.ID, newStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	sale.Payments = newPayments
	sale.Status = newStatus
	utils.LogInfo("payment recorded", map[string]interface{}{
		"sale_id":    sale.ID,
		"total_paid": sale.TotalPaid().String(),
		"status":     sale.Status,
	})
	return sale, nil
}
