package services_test

import (
	"testing"
	"time"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/services"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }

func liquidatedSale(id, watchID string, agreed string) models.Sale {
	return models.Sale{
		ID:          id,
		WatchID:     watchID,
		SaleDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		AgreedPrice: dec(agreed),
		Status:      models.SaleLiquidated,
	}
}

func TestRealizedProfitIncludesAdditionalCosts(t *testing.T) {
	item := models.InventoryItem{
		ID:   "w1",
		Cost: dec("1000"),
		AdditionalCosts: []models.AdditionalCost{
			{Amount: dec("150")},
			{Amount: dec("50")},
		},
	}
	sale := liquidatedSale("s1", "w1", "1500")

	got := services.RealizedProfit(&sale, &item)
	if !got.Equal(dec("300")) {
		t.Errorf("RealizedProfit = %s, want 300", got)
	}
}

func TestSplitFor(t *testing.T) {
	partners := []models.Partner{
		{ID: "pa", Name: "A", ParticipationPct: dec("40")},
		{ID: "pb", Name: "B", ParticipationPct: dec("60")},
	}

	tests := []struct {
		name    string
		item    models.InventoryItem
		want    map[string]string
		wantErr bool
	}{
		{
			name: "partnership uses global percentages",
			item: models.InventoryItem{ID: "w1", AcquisitionMode: models.AcquisitionPartnership},
			want: map[string]string{"pa": "40", "pb": "60"},
		},
		{
			name: "contribution gives everything to the contributor",
			item: models.InventoryItem{
				ID:                    "w2",
				AcquisitionMode:       models.AcquisitionContribution,
				ContributingPartnerID: strPtr("pa"),
			},
			want: map[string]string{"pa": "100"},
		},
		{
			name: "contribution without a partner is invalid",
			item: models.InventoryItem{
				ID:              "w3",
				AcquisitionMode: models.AcquisitionContribution,
			},
			wantErr: true,
		},
		{
			name: "contribution by an unknown partner is invalid",
			item: models.InventoryItem{
				ID:                    "w4",
				AcquisitionMode:       models.AcquisitionContribution,
				ContributingPartnerID: strPtr("ghost"),
			},
			wantErr: true,
		},
		{
			name: "custom split is taken verbatim",
			item: models.InventoryItem{
				ID:              "w5",
				AcquisitionMode: models.AcquisitionCustom,
				CustomSplit: models.CustomSplit{
					"pa": dec("70"),
					"pb": dec("30"),
				},
			},
			want: map[string]string{"pa": "70", "pb": "30"},
		},
		{
			name: "custom split referencing an unknown partner is invalid",
			item: models.InventoryItem{
				ID:              "w6",
				AcquisitionMode: models.AcquisitionCustom,
				CustomSplit:     models.CustomSplit{"ghost": dec("100")},
			},
			wantErr: true,
		},
		{
			name: "empty custom split is invalid",
			item: models.InventoryItem{
				ID:              "w7",
				AcquisitionMode: models.AcquisitionCustom,
			},
			wantErr: true,
		},
		{
			name:    "unknown mode is invalid",
			item:    models.InventoryItem{ID: "w8", AcquisitionMode: "barter"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.SplitFor(&tt.item, partners)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("split has %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			for pid, pct := range tt.want {
				if !got[pid].Equal(dec(pct)) {
					t.Errorf("split[%s] = %s, want %s", pid, got[pid], pct)
				}
			}
		})
	}
}

func TestSplitForHouseMode(t *testing.T) {
	item := models.InventoryItem{ID: "w1", AcquisitionMode: models.AcquisitionHouse}

	t.Run("flagged partner takes everything", func(t *testing.T) {
		partners := []models.Partner{
			{ID: "pa", ParticipationPct: dec("40")},
			{ID: "house", ParticipationPct: dec("0"), IsHouseEntity: true},
		}
		split, err := services.SplitFor(&item, partners)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(split) != 1 || !split["house"].Equal(dec("100")) {
			t.Errorf("split = %v, want 100%% to house", split)
		}
	})

	t.Run("no flagged partner leaves the profit unallocated", func(t *testing.T) {
		partners := []models.Partner{
			{ID: "pa", ParticipationPct: dec("100")},
		}
		split, err := services.SplitFor(&item, partners)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(split) != 0 {
			t.Errorf("split = %v, want empty", split)
		}
	})
}

func TestComputeSettlementPartnership(t *testing.T) {
	// One watch bought at 1000 with 200 of extra costs, sold at 1500.
	// 40/60 partnership: 120 to A, 180 to B.
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{
				ID:              "w1",
				Cost:            dec("1000"),
				AdditionalCosts: []models.AdditionalCost{{Amount: dec("200")}},
				Stage:           models.StageLiquidated,
				AcquisitionMode: models.AcquisitionPartnership,
			},
		},
		Sales: []models.Sale{liquidatedSale("s1", "w1", "1500")},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("40")},
			{ID: "pb", Name: "B", ParticipationPct: dec("60")},
		},
	}

	lines, err := services.ComputeSettlement(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d settlement lines, want 2", len(lines))
	}
	if !lines[0].Corresponds.Equal(dec("120")) {
		t.Errorf("A corresponds = %s, want 120", lines[0].Corresponds)
	}
	if !lines[1].Corresponds.Equal(dec("180")) {
		t.Errorf("B corresponds = %s, want 180", lines[1].Corresponds)
	}
}

func TestComputeSettlementContribution(t *testing.T) {
	// The same watch as a contribution by A: A takes the whole 300.
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{
				ID:                    "w1",
				Cost:                  dec("1200"),
				Stage:                 models.StageLiquidated,
				AcquisitionMode:       models.AcquisitionContribution,
				ContributingPartnerID: strPtr("pa"),
			},
		},
		Sales: []models.Sale{liquidatedSale("s1", "w1", "1500")},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("40")},
			{ID: "pb", Name: "B", ParticipationPct: dec("60")},
		},
	}

	lines, err := services.ComputeSettlement(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lines[0].Corresponds.Equal(dec("300")) {
		t.Errorf("A corresponds = %s, want 300", lines[0].Corresponds)
	}
	if !lines[1].Corresponds.Equal(dec("0")) {
		t.Errorf("B corresponds = %s, want 0", lines[1].Corresponds)
	}
}

func TestComputeSettlementLossesNetAgainstGains(t *testing.T) {
	// Sale one makes 300, sale two loses 100. At 50% each partner
	// nets 100.
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{ID: "w1", Cost: dec("1200"), Stage: models.StageLiquidated, AcquisitionMode: models.AcquisitionPartnership},
			{ID: "w2", Cost: dec("600"), Stage: models.StageLiquidated, AcquisitionMode: models.AcquisitionPartnership},
		},
		Sales: []models.Sale{
			liquidatedSale("s1", "w1", "1500"),
			liquidatedSale("s2", "w2", "500"),
		},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("50")},
			{ID: "pb", Name: "B", ParticipationPct: dec("50")},
		},
	}

	lines, err := services.ComputeSettlement(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, line := range lines {
		if !line.Corresponds.Equal(dec("100")) {
			t.Errorf("%s corresponds = %s, want 100", line.PartnerName, line.Corresponds)
		}
	}
}

func TestComputeSettlementPendingAndDistributions(t *testing.T) {
	// A is entitled to 300 and has taken 150: pending 150. B has taken
	// 400 against an entitlement of 0: pending -400.
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{
				ID:                    "w1",
				Cost:                  dec("1200"),
				Stage:                 models.StageLiquidated,
				AcquisitionMode:       models.AcquisitionContribution,
				ContributingPartnerID: strPtr("pa"),
			},
		},
		Sales: []models.Sale{liquidatedSale("s1", "w1", "1500")},
		Partners: []models.Partner{
			{
				ID: "pa", Name: "A", ParticipationPct: dec("50"),
				Movements: []models.PartnerMovement{
					{Type: models.MovementDistribution, Amount: dec("-150")},
					{Type: models.MovementContribution, Amount: dec("5000")},
				},
			},
			{
				ID: "pb", Name: "B", ParticipationPct: dec("50"),
				Movements: []models.PartnerMovement{
					{Type: models.MovementWithdrawal, Amount: dec("-400")},
				},
			},
		},
	}

	lines, err := services.ComputeSettlement(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, b := lines[0], lines[1]
	if !a.Distributed.Equal(dec("150")) {
		t.Errorf("A distributed = %s, want 150", a.Distributed)
	}
	if !a.Pending.Equal(dec("150")) {
		t.Errorf("A pending = %s, want 150", a.Pending)
	}
	if !a.Contributed.Equal(dec("5000")) {
		t.Errorf("A contributed = %s, want 5000", a.Contributed)
	}
	if !b.Pending.Equal(dec("-400")) {
		t.Errorf("B pending = %s, want -400", b.Pending)
	}
}

func TestComputeSettlementIgnoresUnliquidatedSales(t *testing.T) {
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{ID: "w1", Cost: dec("1000"), Stage: models.StageLiquidated, AcquisitionMode: models.AcquisitionPartnership},
		},
		Sales: []models.Sale{
			{
				ID:          "s1",
				WatchID:     "w1",
				SaleDate:    time.Now(),
				AgreedPrice: dec("1500"),
				Status:      models.SalePartial,
			},
		},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("100")},
		},
	}

	lines, err := services.ComputeSettlement(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lines[0].Corresponds.Equal(decimal.Zero) {
		t.Errorf("corresponds = %s, want 0 while the sale is unpaid", lines[0].Corresponds)
	}
}

func TestComputeSettlementCustomSplitUnlistedPartnerGetsNothing(t *testing.T) {
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{
				ID:              "w1",
				Cost:            dec("1000"),
				Stage:           models.StageLiquidated,
				AcquisitionMode: models.AcquisitionCustom,
				CustomSplit:     models.CustomSplit{"pa": dec("25")},
			},
		},
		Sales: []models.Sale{liquidatedSale("s1", "w1", "1400")},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("50")},
			{ID: "pb", Name: "B", ParticipationPct: dec("50")},
		},
	}

	lines, err := services.ComputeSettlement(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lines[0].Corresponds.Equal(dec("100")) {
		t.Errorf("A corresponds = %s, want 100 (25%% of 400)", lines[0].Corresponds)
	}
	if !lines[1].Corresponds.Equal(decimal.Zero) {
		t.Errorf("B corresponds = %s, want 0", lines[1].Corresponds)
	}
}

func TestBuildProfitReport(t *testing.T) {
	entry := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{
		Items: []models.InventoryItem{
			{
				ID:              "w1",
				Cost:            dec("1000"),
				AdditionalCosts: []models.AdditionalCost{{Amount: dec("200")}},
				Stage:           models.StageLiquidated,
				AcquisitionMode: models.AcquisitionPartnership,
				EntryDate:       &entry,
			},
			{
				// Still in stock, must not appear in the report.
				ID:              "w2",
				Cost:            dec("500"),
				Stage:           models.StageInventory,
				AcquisitionMode: models.AcquisitionPartnership,
			},
		},
		Sales: []models.Sale{liquidatedSale("s1", "w1", "1500")},
		Partners: []models.Partner{
			{ID: "pa", Name: "A", ParticipationPct: dec("40")},
			{ID: "pb", Name: "B", ParticipationPct: dec("60")},
		},
	}

	lines, err := services.BuildProfitReport(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d report lines, want 1", len(lines))
	}

	line := lines[0]
	if !line.RealizedProfit.Equal(dec("300")) {
		t.Errorf("realized profit = %s, want 300", line.RealizedProfit)
	}
	if !line.TotalCostBasis.Equal(dec("1200")) {
		t.Errorf("total cost basis = %s, want 1200", line.TotalCostBasis)
	}
	if line.DaysInStock == nil || *line.DaysInStock != 30 {
		t.Errorf("days in stock = %v, want 30", line.DaysInStock)
	}
	if len(line.Allocations) != 2 {
		t.Fatalf("got %d allocations, want 2", len(line.Allocations))
	}
	if !line.Allocations[0].Amount.Equal(dec("120")) || !line.Allocations[1].Amount.Equal(dec("180")) {
		t.Errorf("allocations = %s / %s, want 120 / 180",
			line.Allocations[0].Amount, line.Allocations[1].Amount)
	}
}
