package services

import (
	"fmt"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// This file is the single source of truth for profit allocation.
// Everything here is pure: functions take an immutable snapshot of the
// collections and return derived values, so the same inputs always
// produce the same settlement regardless of where they are called from.

var hundred = decimal.NewFromInt(100)

// SplitFor maps an item's acquisition mode to a per-partner percentage
// split. Partners absent from the returned map hold 0%.
//
// Rules by mode:
//   - house:        100% to the partner flagged is_house_entity. If no
//     partner carries the flag the split is empty and the profit stays
//     unallocated.
//   - contribution: 100% to the contributing partner.
//   - custom:       the item's own map, verbatim.
//   - partnership:  every partner's global participation percentage.
func SplitFor(item *models.InventoryItem, partners []models.Partner) (map[string]decimal.Decimal, error) {
	known := make(map[string]bool, len(partners))
	for _, p := range partners {
		known[p.ID] = true
	}

	split := map[string]decimal.Decimal{}

	switch item.AcquisitionMode {
	case models.AcquisitionHouse:
		for _, p := range partners {
			if p.IsHouseEntity {
				split[p.ID] = hundred
				break
			}
		}

	case models.AcquisitionContribution:
		if item.ContributingPartnerID == nil {
			return nil, fmt.Errorf("%w: item %s is a contribution without a contributing partner", ErrInvalidSplit, item.ID)
		}
		if !known[*item.ContributingPartnerID] {
			return nil, fmt.Errorf("%w: item %s contributed by unknown partner %s", ErrInvalidSplit, item.ID, *item.ContributingPartnerID)
		}
		split[*item.ContributingPartnerID] = hundred

	case models.AcquisitionCustom:
		if len(item.CustomSplit) == 0 {
			return nil, fmt.Errorf("%w: item %s has custom mode but no custom split", ErrInvalidSplit, item.ID)
		}
		for partnerID, pct := range item.CustomSplit {
			if !known[partnerID] {
				return nil, fmt.Errorf("%w: item %s custom split references unknown partner %s", ErrInvalidSplit, item.ID, partnerID)
			}
			split[partnerID] = pct
		}

	case models.AcquisitionPartnership:
		for _, p := range partners {
			split[p.ID] = p.ParticipationPct
		}

	default:
		return nil, fmt.Errorf("%w: item %s has unknown acquisition mode %q", ErrInvalidSplit, item.ID, item.AcquisitionMode)
	}

	return split, nil
}

// RealizedProfit returns agreed price minus total cost basis. Negative
// for a loss; losses are allocated exactly like gains.
func RealizedProfit(sale *models.Sale, item *models.InventoryItem) decimal.Decimal {
	return sale.AgreedPrice.Sub(item.TotalCostBasis())
}

// ComputeSettlement reduces a snapshot to one settlement line per
// partner: corresponds accumulates each partner's share of every
// liquidated sale's realized profit, distributed sums the absolute
// amounts already paid out, pending is the signed difference.
// Recomputed from scratch on every call; nothing is cached.
func ComputeSettlement(snap *models.Snapshot) ([]models.PartnerSettlement, error) {
	itemsByID := make(map[string]*models.InventoryItem, len(snap.Items))
	for i := range snap.Items {
		itemsByID[snap.Items[i].ID] = &snap.Items[i]
	}

	corresponds := make(map[string]decimal.Decimal, len(snap.Partners))

	for i := range snap.Sales {
		sale := &snap.Sales[i]
		if sale.Status != models.SaleLiquidated {
			continue
		}
		item, ok := itemsByID[sale.WatchID]
		if !ok {
			return nil, fmt.Errorf("sale %s references unknown item %s", sale.ID, sale.WatchID)
		}

		profit := RealizedProfit(sale, item)
		split, err := SplitFor(item, snap.Partners)
		if err != nil {
			return nil, err
		}
		for partnerID, pct := range split {
			share := profit.Mul(pct).Div(hundred)
			corresponds[partnerID] = corresponds[partnerID].Add(share)
		}
	}

	result := make([]models.PartnerSettlement, 0, len(snap.Partners))
	for _, p := range snap.Partners {
		distributed := decimal.Zero
		contributed := decimal.Zero
		for _, m := range p.Movements {
			switch m.Type {
			case models.MovementDistribution, models.MovementWithdrawal:
				distributed = distributed.Add(m.Amount.Abs())
			case models.MovementContribution:
				contributed = contributed.Add(m.Amount)
			}
		}

		entitled := corresponds[p.ID]
		result = append(result, models.PartnerSettlement{
			PartnerID:        p.ID,
			PartnerName:      p.Name,
			ParticipationPct: p.ParticipationPct,
			Corresponds:      entitled,
			Distributed:      distributed,
			Contributed:      contributed,
			// Signed on purpose: negative means the partner was paid
			// more than its entitlement. Display-side flooring is a UI
			// concern.
			Pending: entitled.Sub(distributed),
		})
	}
	return result, nil
}

// BuildProfitReport returns the per-sale breakdown for every liquidated
// sale in the snapshot, oldest sale first.
func BuildProfitReport(snap *models.Snapshot) ([]models.ProfitReportLine, error) {
	itemsByID := make(map[string]*models.InventoryItem, len(snap.Items))
	for i := range snap.Items {
		itemsByID[snap.Items[i].ID] = &snap.Items[i]
	}
	lines := []models.ProfitReportLine{}
	for i := range snap.Sales {
		sale := &snap.Sales[i]
		if sale.Status != models.SaleLiquidated {
			continue
		}
		item, ok := itemsByID[sale.WatchID]
		if !ok {
			return nil, fmt.Errorf("sale %s references unknown item %s", sale.ID, sale.WatchID)
		}

		profit := RealizedProfit(sale, item)
		split, err := SplitFor(item, snap.Partners)
		if err != nil {
			return nil, err
		}

		line := models.ProfitReportLine{
			SaleID:          sale.ID,
			WatchID:         item.ID,
			SaleDate:        sale.SaleDate,
			AgreedPrice:     sale.AgreedPrice,
			TotalCostBasis:  item.TotalCostBasis(),
			RealizedProfit:  profit,
			AcquisitionMode: item.AcquisitionMode,
		}
		if item.EntryDate != nil {
			days := utils.DaysBetween(*item.EntryDate, sale.SaleDate)
			line.DaysInStock = &days
		}
		if item.Reference != nil {
			line.ReferenceCode = &item.Reference.Code
		}

		// Deterministic order: follow the snapshot's partner ordering.
		for _, p := range snap.Partners {
			pct, ok := split[p.ID]
			if !ok || pct.IsZero() {
				continue
			}
			line.Allocations = append(line.Allocations, models.ProfitAllocation{
				PartnerID:   p.ID,
				PartnerName: p.Name,
				Percentage:  pct,
				Amount:      profit.Mul(pct).Div(hundred),
			})
		}
		lines = append(lines, line)
	}
	return lines, nil
}
