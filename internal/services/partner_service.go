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

// --- Custom Service Errors for Partners ---
var (
	ErrPartnerNotFound    = errors.New("partner not found")
	ErrPartnerNameExists  = errors.New("partner name already exists")
	ErrHouseEntityExists  = errors.New("another partner is already flagged as the house entity")
	ErrParticipationTotal = errors.New("participation percentages must sum to 100")
)

// --- Partner DTOs ---

// CreatePartnerRequest registers a new capital partner.
type CreatePartnerRequest struct {
	Name             string           `json:"name" binding:"required"`
	ParticipationPct *decimal.Decimal `json:"participation_pct"`
	Color            *string          `json:"color"`
	IsHouseEntity    bool             `json:"is_house_entity"`
}

// UpdatePartnerRequest edits a partner's descriptive fields and flags.
type UpdatePartnerRequest struct {
	Name          *string `json:"name"`
	Color         *string `json:"color"`
	IsHouseEntity *bool   `json:"is_house_entity"`
}

// UpdateParticipationsRequest atomically rewrites the whole
// participation table. This is the one place the 100% total is
// enforced; partial edits elsewhere never touch percentages.
type UpdateParticipationsRequest struct {
	Percentages map[string]decimal.Decimal `json:"percentages" binding:"required"`
}

// AddMovementRequest appends a cash movement to a partner account.
type AddMovementRequest struct {
	Type    string          `json:"type" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Date    *time.Time      `json:"date"`
	Concept *string         `json:"concept"`
}

// --- PartnerService Interface ---
type PartnerService interface {
	CreatePartner(actor Actor, req CreatePartnerRequest) (*models.Partner, error)
	GetPartnerByID(partnerID string) (*models.Partner, error)
	GetPartners() ([]models.Partner, error)
	UpdatePartner(actor Actor, partnerID string, req UpdatePartnerRequest) (*models.Partner, error)
	UpdateParticipations(actor Actor, req UpdateParticipationsRequest) ([]models.Partner, error)
	AddMovement(actor Actor, partnerID string, req AddMovementRequest) (*models.PartnerMovement, error)
}

// --- partnerService Implementation ---
type partnerService struct {
	partnerRepo repositories.PartnerRepository
	db          *sql.DB // For managing transactions
}

// NewPartnerService creates a new instance of PartnerService.
func NewPartnerService(pr repositories.PartnerRepository, db *sql.DB) PartnerService {
	return &partnerService{
		partnerRepo: pr,
		db:          db,
	}
}

// CreatePartner registers a partner. Setting the house flag fails if
// another partner already carries it; the flag replaces the source
// system's fragile match-by-name detection of the house capital entity.
func (s *partnerService) CreatePartner(actor Actor, req CreatePartnerRequest) (*models.Partner, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not create partners", ErrInsufficientPermission, actor.Role)
	}

	pct := decimal.Zero
	if req.ParticipationPct != nil {
		if req.ParticipationPct.IsNegative() {
			return nil, fmt.Errorf("%w: participation percentage cannot be negative", ErrValidation)
		}
		pct = *req.ParticipationPct
	}

	if req.IsHouseEntity {
		count, err := s.partnerRepo.CountHouseEntities("")
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrHouseEntityExists
		}
	}

	partner := &models.Partner{
		ID:               utils.NewID(),
		Name:             req.Name,
		ParticipationPct: pct,
		Color:            req.Color,
		IsHouseEntity:    req.IsHouseEntity,
		Movements:        []models.PartnerMovement{},
	}
	if err := s.partnerRepo.CreatePartner(s.db, partner); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrPartnerNameExists, req.Name)
		}
		return nil, err
	}
	return partner, nil
}

// GetPartnerByID fetches a partner with its movements.
func (s *partnerService) GetPartnerByID(partnerID string) (*models.Partner, error) {
	partner, err := s.partnerRepo.GetPartnerByID(partnerID, true)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPartnerNotFound, partnerID)
		}
		return nil, err
	}
	return partner, nil
}

// GetPartners lists all partners with their movements.
func (s *partnerService) GetPartners() ([]models.Partner, error) {
	return s.partnerRepo.GetPartners(true)
}

// UpdatePartner edits name, color and the house flag.
func (s *partnerService) UpdatePartner(actor Actor, partnerID string, req UpdatePartnerRequest) (*models.Partner, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not update partners", ErrInsufficientPermission, actor.Role)
	}

	partner, err := s.GetPartnerByID(partnerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if utils.IsEmpty(*req.Name) {
			return nil, fmt.Errorf("%w: partner name cannot be empty", ErrValidation)
		}
		partner.Name = *req.Name
	}
	if req.Color != nil {
		partner.Color = req.Color
	}
	if req.IsHouseEntity != nil {
		if *req.IsHouseEntity {
			count, err := s.partnerRepo.CountHouseEntities(partner.ID)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrHouseEntityExists
			}
		}
		partner.IsHouseEntity = *req.IsHouseEntity
	}

	if err := s.partnerRepo.UpdatePartner(s.db, partner); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrPartnerNameExists, partner.Name)
		}
		return nil, err
	}
	return partner, nil
}

// UpdateParticipations rewrites every partner's percentage in one
// transaction. It rejects the request unless the map covers all
// partners and sums to exactly 100.
func (s *partnerService) UpdateParticipations(actor Actor, req UpdateParticipationsRequest) ([]models.Partner, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not edit participations", ErrInsufficientPermission, actor.Role)
	}

	partners, err := s.partnerRepo.GetPartners(false)
	if err != nil {
		return nil, err
	}
	if len(req.Percentages) != len(partners) {
		return nil, fmt.Errorf("%w: expected a percentage for each of the %d partners", ErrValidation, len(partners))
	}

	total := decimal.Zero
	for _, p := range partners {
		pct, ok := req.Percentages[p.ID]
		if !ok {
			return nil, fmt.Errorf("%w: missing percentage for partner %s", ErrValidation, p.ID)
		}
		if pct.IsNegative() {
			return nil, fmt.Errorf("%w: negative percentage for partner %s", ErrValidation, p.ID)
		}
		total = total.Add(pct)
	}
	if !total.Equal(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrParticipationTotal, total.String())
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.partnerRepo.UpdateParticipations(tx, req.Percentages); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit participation update: %w", err)
	}

	return s.partnerRepo.GetPartners(false)
}

// AddMovement appends a cash movement, coercing the amount to the sign
// its type mandates: Contributions positive, Distributions and
// Withdrawals negative, Adjustments as entered.
func (s *partnerService) AddMovement(actor Actor, partnerID string, req AddMovementRequest) (*models.PartnerMovement, error) {
	if !actor.CanWrite() {
		return nil, fmt.Errorf("%w: role %s may not record movements", ErrInsufficientPermission, actor.Role)
	}
	if !models.IsKnownMovementType(req.Type) {
		return nil, fmt.Errorf("%w: unknown movement type %q", ErrValidation, req.Type)
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: movement amount cannot be zero", ErrValidation)
	}

	if _, err := s.partnerRepo.GetPartnerByID(partnerID, false); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPartnerNotFound, partnerID)
		}
		return nil, err
	}

	amount := req.Amount
	switch req.Type {
	case models.MovementContribution:
		amount = amount.Abs()
	case models.MovementDistribution, models.MovementWithdrawal:
		amount = amount.Abs().Neg()
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}
	movement := &models.PartnerMovement{
		ID:        utils.NewID(),
		PartnerID: partnerID,
		Date:      date,
		Type:      req.Type,
		Amount:    amount,
		Concept:   req.Concept,
	}
	if err := s.partnerRepo.AddMovement(s.db, movement); err != nil {
		return nil, err
	}
	return movement, nil
}
