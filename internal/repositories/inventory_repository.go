package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchtrade_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// InventoryRepository defines the interface for inventory-item database
// operations. Additional costs are append-only.
type InventoryRepository interface {
	CreateItem(executor SQLExecutor, item *models.InventoryItem) error
	GetItemByID(id string) (*models.InventoryItem, error)
	GetItems(stage *string, status *string, page, pageSize int) ([]models.InventoryItem, int, error)
	UpdateItem(executor SQLExecutor, item *models.InventoryItem) error
	UpdateItemStage(executor SQLExecutor, id, stage, status string, entryDate *time.Time) error
	AddAdditionalCost(executor SQLExecutor, cost *models.AdditionalCost) error
	GetAdditionalCosts(itemID string) ([]models.AdditionalCost, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

// customSplitValue serializes the custom split map for the JSONB column.
func customSplitValue(cs models.CustomSplit) (interface{}, error) {
	if cs == nil {
		return nil, nil
	}
	raw, err := json.Marshal(cs)
	if err != nil {
		return nil, fmt.Errorf("marshaling custom split: %w", err)
	}
	return raw, nil
}

const itemColumns = `id, reference_id, serial, condition, full_set, papers, box, cost, price_asked,
	stage, status, acquisition_mode, contributing_partner_id, custom_split, entry_date, created_at, updated_at`

// scanItem scans one inventory item row; rawSplit is decoded afterwards.
func scanItem(scan func(dest ...interface{}) error, item *models.InventoryItem, extra ...interface{}) error {
	var rawSplit []byte
	dest := []interface{}{
		&item.ID, &item.ReferenceID, &item.Serial, &item.Condition,
		&item.FullSet, &item.Papers, &item.Box, &item.Cost, &item.PriceAsked,
		&item.Stage, &item.Status, &item.AcquisitionMode, &item.ContributingPartnerID,
		&rawSplit, &item.EntryDate, &item.CreatedAt, &item.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := scan(dest...); err != nil {
		return err
	}
	if len(rawSplit) > 0 {
		if err := json.Unmarshal(rawSplit, &item.CustomSplit); err != nil {
			return fmt.Errorf("unmarshaling custom split for item %s: %w", item.ID, err)
		}
	}
	return nil
}

// CreateItem inserts a new inventory item.
func (r *inventoryRepository) CreateItem(executor SQLExecutor, item *models.InventoryItem) error {
	query := `INSERT INTO inventory_items (` + itemColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	split, err := customSplitValue(item.CustomSplit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	_, err = executor.Exec(query,
		item.ID, item.ReferenceID, item.Serial, item.Condition,
		item.FullSet, item.Papers, item.Box, item.Cost, item.PriceAsked,
		item.Stage, item.Status, item.AcquisitionMode, item.ContributingPartnerID,
		split, item.EntryDate, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			case "foreign_key_violation":
				return fmt.Errorf("%w: reference or partner for item", ErrNotFound)
			}
		}
		return fmt.Errorf("%w: creating inventory item: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetItemByID retrieves an item together with its additional costs.
func (r *inventoryRepository) GetItemByID(id string) (*models.InventoryItem, error) {
	item := &models.InventoryItem{}
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = $1`

	row := r.db.QueryRow(query, id)
	if err := scanItem(row.Scan, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting item %s: %v", ErrDatabaseError, id, err)
	}

	costs, err := r.GetAdditionalCosts(item.ID)
	if err != nil {
		return nil, err
	}
	item.AdditionalCosts = costs
	return item, nil
}

// GetItems lists items with optional stage/status filters and pagination,
// newest first. Additional costs are attached to every returned item so
// TotalCostBasis is usable on the result.
func (r *inventoryRepository) GetItems(stage *string, status *string, page, pageSize int) ([]models.InventoryItem, int, error) {
	items := []models.InventoryItem{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + itemColumns + `, COUNT(*) OVER() as total_count FROM inventory_items`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if stage != nil && *stage != "" {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", argCount))
		args = append(args, *stage)
		argCount++
	}
	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: listing items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.InventoryItem
		if err := scanItem(rows.Scan, &item, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating items: %v", ErrDatabaseError, err)
	}

	for i := range items {
		items[i].AdditionalCosts, err = r.GetAdditionalCosts(items[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return items, totalCount, nil
}

// UpdateItem rewrites the mutable descriptive fields of an item.
// Stage/status/entry date transitions go through UpdateItemStage; the
// base cost and split configuration stay editable only while the item
// is not liquidated (enforced by the service layer).
func (r *inventoryRepository) UpdateItem(executor SQLExecutor, item *models.InventoryItem) error {
	query := `UPDATE inventory_items
	          SET serial = $1, condition = $2, full_set = $3, papers = $4, box = $5,
	              cost = $6, price_asked = $7, status = $8, acquisition_mode = $9,
	              contributing_partner_id = $10, custom_split = $11, updated_at = $12
	          WHERE id = $13`

	split, err := customSplitValue(item.CustomSplit)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	res, err := executor.Exec(query,
		item.Serial, item.Condition, item.FullSet, item.Papers, item.Box,
		item.Cost, item.PriceAsked, item.Status, item.AcquisitionMode,
		item.ContributingPartnerID, split, time.Now(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating item %s: %v", ErrDatabaseError, item.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateItemStage applies a lifecycle transition. entryDate is only set
// when non-nil (the opportunity -> inventory approval).
func (r *inventoryRepository) UpdateItemStage(executor SQLExecutor, id, stage, status string, entryDate *time.Time) error {
	var res sql.Result
	var err error
	if entryDate != nil {
		res, err = executor.Exec(
			`UPDATE inventory_items SET stage = $1, status = $2, entry_date = $3, updated_at = $4 WHERE id = $5`,
			stage, status, *entryDate, time.Now(), id,
		)
	} else {
		res, err = executor.Exec(
			`UPDATE inventory_items SET stage = $1, status = $2, updated_at = $3 WHERE id = $4`,
			stage, status, time.Now(), id,
		)
	}
	if err != nil {
		return fmt.Errorf("%w: updating stage for item %s: %v", ErrDatabaseError, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAdditionalCost appends a cost row to an item.
func (r *inventoryRepository) AddAdditionalCost(executor SQLExecutor, cost *models.AdditionalCost) error {
	query := `INSERT INTO item_costs (id, item_id, type, date, amount, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	cost.CreatedAt = time.Now()

	_, err := executor.Exec(query,
		cost.ID, cost.ItemID, cost.Type, cost.Date, cost.Amount, cost.Description, cost.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: item %s", ErrNotFound, cost.ItemID)
			}
		}
		return fmt.Errorf("%w: adding additional cost: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetAdditionalCosts lists an item's additional costs oldest first.
func (r *inventoryRepository) GetAdditionalCosts(itemID string) ([]models.AdditionalCost, error) {
	query := `SELECT id, item_id, type, date, amount, description, created_at
	          FROM item_costs WHERE item_id = $1 ORDER BY date ASC, created_at ASC`
	rows, err := r.db.Query(query, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing costs for item %s: %v", ErrDatabaseError, itemID, err)
	}
	defer rows.Close()

	costs := []models.AdditionalCost{}
	for rows.Next() {
		var c models.AdditionalCost
		if err := rows.Scan(&c.ID, &c.ItemID, &c.Type, &c.Date, &c.Amount, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning additional cost: %v", ErrDatabaseError, err)
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}
