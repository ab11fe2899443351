package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"watchtrade_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// SaleRepository defines the interface for sale and payment database
// operations. Payments are append-only; the agreed price is never
// updated after insert.
type SaleRepository interface {
	CreateSale(executor SQLExecutor, sale *models.Sale) error
	GetSaleByID(id string) (*models.Sale, error)
	GetSaleByWatchID(watchID string) (*models.Sale, error)
	GetSales(status *string, page, pageSize int) ([]models.Sale, int, error)
	AddPayment(executor SQLExecutor, payment *models.Payment) error
	UpdateSaleStatus(executor SQLExecutor, id, status string) error
	GetPayments(saleID string) ([]models.Payment, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// CreateSale inserts a new sale. The watch_id unique constraint is the
// backstop against two sales for one item.
func (r *saleRepository) CreateSale(executor SQLExecutor, sale *models.Sale) error {
	query := `INSERT INTO sales (id, watch_id, client_id, sale_date, agreed_price, notes, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	sale.CreatedAt = now
	sale.UpdatedAt = now

	_, err := executor.Exec(query,
		sale.ID, sale.WatchID, sale.ClientID, sale.SaleDate, sale.AgreedPrice,
		sale.Notes, sale.Status, now, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			case "foreign_key_violation":
				return fmt.Errorf("%w: item or client for sale", ErrNotFound)
			}
		}
		return fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return nil
}

const saleColumns = `id, watch_id, client_id, sale_date, agreed_price, notes, status, created_at, updated_at`

func (r *saleRepository) scanSaleRow(scan func(dest ...interface{}) error, sale *models.Sale, extra ...interface{}) error {
	dest := []interface{}{
		&sale.ID, &sale.WatchID, &sale.ClientID, &sale.SaleDate, &sale.AgreedPrice,
		&sale.Notes, &sale.Status, &sale.CreatedAt, &sale.UpdatedAt,
	}
	dest = append(dest, extra...)
	return scan(dest...)
}

// GetSaleByID retrieves a sale together with its payments.
func (r *saleRepository) GetSaleByID(id string) (*models.Sale, error) {
	sale := &models.Sale{}
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	row := r.db.QueryRow(query, id)
	if err := r.scanSaleRow(row.Scan, sale); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale %s: %v", ErrDatabaseError, id, err)
	}

	payments, err := r.GetPayments(sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Payments = payments
	return sale, nil
}

// GetSaleByWatchID retrieves the sale recorded against an inventory item.
func (r *saleRepository) GetSaleByWatchID(watchID string) (*models.Sale, error) {
	sale := &models.Sale{}
	query := `SELECT ` + saleColumns + ` FROM sales WHERE watch_id = $1`

	row := r.db.QueryRow(query, watchID)
	if err := r.scanSaleRow(row.Scan, sale); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale for watch %s: %v", ErrDatabaseError, watchID, err)
	}

	payments, err := r.GetPayments(sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Payments = payments
	return sale, nil
}

// GetSales lists sales newest first with an optional status filter,
// attaching payments to every returned sale.
func (r *saleRepository) GetSales(status *string, page, pageSize int) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + saleColumns + `, COUNT(*) OVER() as total_count FROM sales`)

	var args []interface{}
	argCount := 1
	if status != nil && *status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY sale_date DESC, created_at DESC")

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
		return nil, 0, fmt.Errorf("%w: listing sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Sale
		if err := r.scanSaleRow(rows.Scan, &s, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sales: %v", ErrDatabaseError, err)
	}

	for i := range sales {
		sales[i].Payments, err = r.GetPayments(sales[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return sales, totalCount, nil
}

// AddPayment appends a payment row to a sale.
func (r *saleRepository) AddPayment(executor SQLExecutor, payment *models.Payment) error {
	query := `INSERT INTO sale_payments (id, sale_id, date, amount, method, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	payment.CreatedAt = time.Now()

	_, err := executor.Exec(query,
		payment.ID, payment.SaleID, payment.Date, payment.Amount,
		payment.Method, payment.Notes, payment.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: sale %s", ErrNotFound, payment.SaleID)
			}
		}
		return fmt.Errorf("%w: adding payment: %v", ErrDatabaseError, err)
	}
	return nil
}

// UpdateSaleStatus stores the freshly derived status. The caller must
// have recomputed it with models.DeriveSaleStatus in the same
// transaction that inserted the payment.
func (r *saleRepository) UpdateSaleStatus(executor SQLExecutor, id, status string) error {
	res, err := executor.Exec(`UPDATE sales SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating status for sale %s: %v", ErrDatabaseError, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPayments lists a sale's payments oldest first.
func (r *saleRepository) GetPayments(saleID string) ([]models.Payment, error) {
	query := `SELECT id, sale_id, date, amount, method, notes, created_at
	          FROM sale_payments WHERE sale_id = $1 ORDER BY date ASC, created_at ASC`
	rows, err := r.db.Query(query, saleID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing payments for sale %s: %v", ErrDatabaseError, saleID, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Date, &p.Amount, &p.Method, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
