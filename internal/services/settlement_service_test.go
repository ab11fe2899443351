package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/internal/services"
)

type fakeSnapshotRepo struct {
	snap *models.Snapshot
	err  error
}

func (f *fakeSnapshotRepo) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

// fakeCatalogRepo only answers GetReferenceByID; every other method
// panics through the embedded nil interface, which is fine because the
// settlement service never calls them.
type fakeCatalogRepo struct {
	repositories.CatalogRepository
	refs map[string]*models.Reference
}

func (f *fakeCatalogRepo) GetReferenceByID(id string) (*models.Reference, error) {
	if ref, ok := f.refs[id]; ok {
		return ref, nil
	}
	return nil, repositories.ErrNotFound
}

func settlementFixture() *models.Snapshot {
	return &models.Snapshot{
		Items: []models.InventoryItem{
			{
				ID:              "w1",
				ReferenceID:     "ref1",
				Cost:            dec("1200"),
				Stage:           models.StageLiquidated,
				AcquisitionMode: models.AcquisitionPartnership,
			},
		},
		Sales: []models.Sale{liquidatedSale("s1", "w1", "1500")},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("40")},
			{ID: "pb", Name: "B", ParticipationPct: dec("60")},
		},
		TakenAt: time.Now(),
	}
}

func newSettlementService(snap *models.Snapshot) services.SettlementService {
	return services.NewSettlementService(
		&fakeSnapshotRepo{snap: snap},
		&fakeCatalogRepo{refs: map[string]*models.Reference{
			"ref1": {ID: "ref1", Code: "116500LN"},
		}},
	)
}

func TestGetSettlementRequiresStaffRole(t *testing.T) {
	svc := newSettlementService(settlementFixture())

	investor := services.Actor{UserID: 1, Role: models.RoleInvestor}
	if _, err := svc.GetSettlement(context.Background(), investor); !errors.Is(err, services.ErrInsufficientPermission) {
		t.Errorf("investor GetSettlement error = %v, want ErrInsufficientPermission", err)
	}

	director := services.Actor{UserID: 2, Role: models.RoleDirector}
	lines, err := svc.GetSettlement(context.Background(), director)
	if err != nil {
		t.Fatalf("director GetSettlement: %v", err)
	}
	if len(lines) != 2 {
		t.Errorf("got %d lines, want 2", len(lines))
	}
}

func TestGetPartnerSettlementInvestorOwnership(t *testing.T) {
	svc := newSettlementService(settlementFixture())
	ownPartner := "pa"
	investor := services.Actor{UserID: 1, Role: models.RoleInvestor, PartnerID: &ownPartner}

	line, err := svc.GetPartnerSettlement(context.Background(), investor, "pa")
	if err != nil {
		t.Fatalf("own partner: %v", err)
	}
	if !line.Corresponds.Equal(dec("120")) {
		t.Errorf("corresponds = %s, want 120", line.Corresponds)
	}

	if _, err := svc.GetPartnerSettlement(context.Background(), investor, "pb"); !errors.Is(err, services.ErrInsufficientPermission) {
		t.Errorf("other partner error = %v, want ErrInsufficientPermission", err)
	}
}

func TestGetPartnerSettlementUnknownPartner(t *testing.T) {
	svc := newSettlementService(settlementFixture())
	director := services.Actor{UserID: 2, Role: models.RoleDirector}

	if _, err := svc.GetPartnerSettlement(context.Background(), director, "ghost"); !errors.Is(err, services.ErrSettlementPartnerNotFound) {
		t.Errorf("error = %v, want ErrSettlementPartnerNotFound", err)
	}
}

func TestGetProfitReportAttachesReferenceCodes(t *testing.T) {
	svc := newSettlementService(settlementFixture())
	director := services.Actor{UserID: 2, Role: models.RoleDirector}

	lines, err := svc.GetProfitReport(context.Background(), director)
	if err != nil {
		t.Fatalf("GetProfitReport: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].ReferenceCode == nil || *lines[0].ReferenceCode != "116500LN" {
		t.Errorf("reference code = %v, want 116500LN", lines[0].ReferenceCode)
	}
	if !lines[0].RealizedProfit.Equal(dec("300")) {
		t.Errorf("realized profit = %s, want 300", lines[0].RealizedProfit)
	}
}

func TestGetSettlementPropagatesSnapshotFailure(t *testing.T) {
	boom := errors.New("connection reset")
	svc := services.NewSettlementService(&fakeSnapshotRepo{err: boom}, &fakeCatalogRepo{})
	director := services.Actor{UserID: 2, Role: models.RoleDirector}

	if _, err := svc.GetSettlement(context.Background(), director); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped snapshot failure", err)
	}
}
