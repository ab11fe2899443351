package services

import (
	"context"
	"errors"
	"fmt"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
)

// --- Custom Service Errors for Settlement ---
var (
	ErrSettlementPartnerNotFound = errors.New("partner not found in settlement")
)

// --- SettlementService Interface ---
// The settlement view is never stored: every call loads a fresh
// consistent snapshot and reduces it with the pure functions in
// profit_split.go.
type SettlementService interface {
	GetSettlement(ctx context.Context, actor Actor) ([]models.PartnerSettlement, error)
	GetPartnerSettlement(ctx context.Context, actor Actor, partnerID string) (*models.PartnerSettlement, error)
	GetProfitReport(ctx context.Context, actor Actor) ([]models.ProfitReportLine, error)
}

// --- settlementService Implementation ---
type settlementService struct {
	snapshotRepo repositories.SnapshotRepository
	catalogRepo  repositories.CatalogRepository
}

// NewSettlementService creates a new instance of SettlementService.
func NewSettlementService(sr repositories.SnapshotRepository, cr repositories.CatalogRepository) SettlementService {
	return &settlementService{
		snapshotRepo: sr,
		catalogRepo:  cr,
	}
}

// GetSettlement returns every partner's settlement line. Directors and
// operators only.
func (s *settlementService) GetSettlement(ctx context.Context, actor Actor) ([]models.PartnerSettlement, error) {
	if !actor.CanReadAllSettlements() {
		return nil, fmt.Errorf("%w: role %s may not read the full settlement", ErrInsufficientPermission, actor.Role)
	}

	snap, err := s.snapshotRepo.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settlement snapshot: %w", err)
	}
	return ComputeSettlement(snap)
}

// GetPartnerSettlement returns one partner's settlement line. Investors
// may only read the partner their account is linked to.
func (s *settlementService) GetPartnerSettlement(ctx context.Context, actor Actor, partnerID string) (*models.PartnerSettlement, error) {
	if !actor.CanReadAllSettlements() && !actor.OwnsPartner(partnerID) {
		return nil, fmt.Errorf("%w: not allowed to read settlement of partner %s", ErrInsufficientPermission, partnerID)
	}

	snap, err := s.snapshotRepo.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settlement snapshot: %w", err)
	}
	settlement, err := ComputeSettlement(snap)
	if err != nil {
		return nil, err
	}
	for i := range settlement {
		if settlement[i].PartnerID == partnerID {
			return &settlement[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSettlementPartnerNotFound, partnerID)
}

// GetProfitReport returns the per-sale profit breakdown. Directors and
// operators only.
func (s *settlementService) GetProfitReport(ctx context.Context, actor Actor) ([]models.ProfitReportLine, error) {
	if !actor.CanReadAllSettlements() {
		return nil, fmt.Errorf("%w: role %s may not read the profit report", ErrInsufficientPermission, actor.Role)
	}

	snap, err := s.snapshotRepo.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading report snapshot: %w", err)
	}
	s.attachReferences(snap)
	return BuildProfitReport(snap)
}

// attachReferences resolves catalog reference rows for the items in the
// snapshot so report lines can carry the reference code. Missing
// references are tolerated; the line just omits the code.
func (s *settlementService) attachReferences(snap *models.Snapshot) {
	cache := map[string]*models.Reference{}
	for i := range snap.Items {
		refID := snap.Items[i].ReferenceID
		ref, seen := cache[refID]
		if !seen {
			loaded, err := s.catalogRepo.GetReferenceByID(refID)
			if err != nil {
				loaded = nil
			}
			cache[refID] = loaded
			ref = loaded
		}
		snap.Items[i].Reference = ref
	}
}
