package services_test

import (
	"errors"
	"testing"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/internal/services"
)

// The fakes embed the repository interfaces and override only the
// lookups the guard paths hit; the guards reject before any write, so
// nothing else is ever called.

type fakeInventoryRepo struct {
	repositories.InventoryRepository
	items map[string]models.InventoryItem
}

func (f *fakeInventoryRepo) GetItemByID(id string) (*models.InventoryItem, error) {
	if item, ok := f.items[id]; ok {
		return &item, nil
	}
	return nil, repositories.ErrNotFound
}

type fakeSaleRepo struct {
	repositories.SaleRepository
	sales map[string]models.Sale
}

func (f *fakeSaleRepo) GetSaleByID(id string) (*models.Sale, error) {
	if sale, ok := f.sales[id]; ok {
		return &sale, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeSaleRepo) GetSaleByWatchID(watchID string) (*models.Sale, error) {
	for _, sale := range f.sales {
		if sale.WatchID == watchID {
			s := sale
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func operator() services.Actor {
	return services.Actor{UserID: 1, Username: "ops", Role: models.RoleOperator}
}

func TestCreateSaleRejectsItemNotInStock(t *testing.T) {
	tests := []struct {
		name  string
		stage string
	}{
		{"opportunity cannot be sold", models.StageOpportunity},
		{"liquidated cannot be sold twice", models.StageLiquidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventoryRepo := &fakeInventoryRepo{items: map[string]models.InventoryItem{
				"w1": {ID: "w1", Stage: tt.stage, Cost: dec("1000")},
			}}
			svc := services.NewSaleService(&fakeSaleRepo{}, inventoryRepo, nil, nil)

			_, err := svc.CreateSale(operator(), services.CreateSaleRequest{
				WatchID:     "w1",
				AgreedPrice: dec("1500"),
			})
			if !errors.Is(err, services.ErrInvalidStateTransition) {
				t.Errorf("error = %v, want ErrInvalidStateTransition", err)
			}
		})
	}
}

func TestCreateSaleRejectsUnknownItem(t *testing.T) {
	svc := services.NewSaleService(&fakeSaleRepo{}, &fakeInventoryRepo{}, nil, nil)

	_, err := svc.CreateSale(operator(), services.CreateSaleRequest{
		WatchID:     "ghost",
		AgreedPrice: dec("1500"),
	})
	if !errors.Is(err, services.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestRecordPaymentRejectsLiquidatedSale(t *testing.T) {
	saleRepo := &fakeSaleRepo{sales: map[string]models.Sale{
		"s1": {
			ID:          "s1",
			WatchID:     "w1",
			AgreedPrice: dec("1500"),
			Payments:    []models.Payment{{Amount: dec("1500")}},
			Status:      models.SaleLiquidated,
		},
	}}
	svc := services.NewSaleService(saleRepo, &fakeInventoryRepo{}, nil, nil)

	_, err := svc.RecordPayment(operator(), "s1", services.RecordPaymentRequest{Amount: dec("100")})
	if !errors.Is(err, services.ErrInvalidStateTransition) {
		t.Errorf("error = %v, want ErrInvalidStateTransition", err)
	}
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc := services.NewSaleService(&fakeSaleRepo{}, &fakeInventoryRepo{}, nil, nil)

	_, err := svc.RecordPayment(operator(), "s1", services.RecordPaymentRequest{Amount: dec("0")})
	if !errors.Is(err, services.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestApproveRejectsNonOpportunityStage(t *testing.T) {
	tests := []struct {
		name  string
		stage string
	}{
		{"already in stock", models.StageInventory},
		{"already liquidated", models.StageLiquidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventoryRepo := &fakeInventoryRepo{items: map[string]models.InventoryItem{
				"w1": {ID: "w1", Stage: tt.stage, Cost: dec("1000")},
			}}
			svc := services.NewInventoryService(inventoryRepo, nil, nil, nil)

			_, err := svc.Approve(operator(), "w1")
			if !errors.Is(err, services.ErrInvalidStateTransition) {
				t.Errorf("error = %v, want ErrInvalidStateTransition", err)
			}
		})
	}
}

func TestApproveRejectsInvestor(t *testing.T) {
	svc := services.NewInventoryService(&fakeInventoryRepo{}, nil, nil, nil)
	investor := services.Actor{UserID: 2, Role: models.RoleInvestor}

	if _, err := svc.Approve(investor, "w1"); !errors.Is(err, services.ErrInsufficientPermission) {
		t.Errorf("error = %v, want ErrInsufficientPermission", err)
	}
}
