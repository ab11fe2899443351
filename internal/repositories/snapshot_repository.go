package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"watchtrade_backend/internal/models"
)

// SnapshotRepository loads the three collections the settlement math
// joins (items, sales, partners) as one consistent snapshot. The whole
// read happens inside a single repeatable-read transaction so a
// concurrent payment or movement write can never produce a half-updated
// mix across the collections.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context) (*models.Snapshot, error)
}

type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new instance of SnapshotRepository.
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: starting snapshot transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	snap := &models.Snapshot{TakenAt: time.Now()}

	if snap.Items, err = loadSnapshotItems(tx); err != nil {
		return nil, err
	}
	if snap.Sales, err = loadSnapshotSales(tx); err != nil {
		return nil, err
	}
	if snap.Partners, err = loadSnapshotPartners(tx); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing snapshot transaction: %v", ErrDatabaseError, err)
	}
	return snap, nil
}

func loadSnapshotItems(tx *sql.Tx) ([]models.InventoryItem, error) {
	rows, err := tx.Query(`SELECT ` + itemColumns + ` FROM inventory_items ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	index := map[string]int{}
	for rows.Next() {
		var item models.InventoryItem
		var rawSplit []byte
		if err := rows.Scan(
			&item.ID, &item.ReferenceID, &item.Serial, &item.Condition,
			&item.FullSet, &item.Papers, &item.Box, &item.Cost, &item.PriceAsked,
			&item.Stage, &item.Status, &item.AcquisitionMode, &item.ContributingPartnerID,
			&rawSplit, &item.EntryDate, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot item: %v", ErrDatabaseError, err)
		}
		if len(rawSplit) > 0 {
			if err := json.Unmarshal(rawSplit, &item.CustomSplit); err != nil {
				return nil, fmt.Errorf("%w: custom split for item %s: %v", ErrDatabaseError, item.ID, err)
			}
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating snapshot items: %v", ErrDatabaseError, err)
	}

	costRows, err := tx.Query(`SELECT id, item_id, type, date, amount, description, created_at
	                           FROM item_costs ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot item costs: %v", ErrDatabaseError, err)
	}
	defer costRows.Close()

	for costRows.Next() {
		var c models.AdditionalCost
		if err := costRows.Scan(&c.ID, &c.ItemID, &c.Type, &c.Date, &c.Amount, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot cost: %v", ErrDatabaseError, err)
		}
		if i, ok := index[c.ItemID]; ok {
			items[i].AdditionalCosts = append(items[i].AdditionalCosts, c)
		}
	}
	return items, costRows.Err()
}

func loadSnapshotSales(tx *sql.Tx) ([]models.Sale, error) {
	rows, err := tx.Query(`SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	index := map[string]int{}
	for rows.Next() {
		var s models.Sale
		if err := rows.Scan(
			&s.ID, &s.WatchID, &s.ClientID, &s.SaleDate, &s.AgreedPrice,
			&s.Notes, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot sale: %v", ErrDatabaseError, err)
		}
		index[s.ID] = len(sales)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating snapshot sales: %v", ErrDatabaseError, err)
	}

	payRows, err := tx.Query(`SELECT id, sale_id, date, amount, method, notes, created_at
	                          FROM sale_payments ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot payments: %v", ErrDatabaseError, err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var p models.Payment
		if err := payRows.Scan(&p.ID, &p.SaleID, &p.Date, &p.Amount, &p.Method, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot payment: %v", ErrDatabaseError, err)
		}
		if i, ok := index[p.SaleID]; ok {
			sales[i].Payments = append(sales[i].Payments, p)
		}
	}
	return sales, payRows.Err()
}

func loadSnapshotPartners(tx *sql.Tx) ([]models.Partner, error) {
	rows, err := tx.Query(`SELECT id, name, participation_pct, color, is_house_entity, created_at, updated_at
	                       FROM partners ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot partners: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	partners := []models.Partner{}
	index := map[string]int{}
	for rows.Next() {
		var p models.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.ParticipationPct, &p.Color, &p.IsHouseEntity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot partner: %v", ErrDatabaseError, err)
		}
		index[p.ID] = len(partners)
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating snapshot partners: %v", ErrDatabaseError, err)
	}

	mvRows, err := tx.Query(`SELECT id, partner_id, date, type, amount, concept, created_at
	                         FROM partner_movements ORDER BY date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot movements: %v", ErrDatabaseError, err)
	}
	defer mvRows.Close()

	for mvRows.Next() {
		var m models.PartnerMovement
		if err := mvRows.Scan(&m.ID, &m.PartnerID, &m.Date, &m.Type, &m.Amount, &m.Concept, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning snapshot movement: %v", ErrDatabaseError, err)
		}
		if i, ok := index[m.PartnerID]; ok {
			partners[i].Movements = append(partners[i].Movements, m)
		}
	}
	return partners, mvRows.Err()
}
