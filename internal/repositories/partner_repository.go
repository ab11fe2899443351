package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchtrade_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
	"github.com/shopspring/decimal"
)

// PartnerRepository defines the interface for partner and movement
// database operations. Movements are append-only: there is no update
// or delete for them.
type PartnerRepository interface {
	CreatePartner(executor SQLExecutor, partner *models.Partner) error
	GetPartnerByID(id string, withMovements bool) (*models.Partner, error)
	GetPartners(withMovements bool) ([]models.Partner, error)
	UpdatePartner(executor SQLExecutor, partner *models.Partner) error
	UpdateParticipations(executor SQLExecutor, percentages map[string]decimal.Decimal) error
	CountHouseEntities(excludeID string) (int, error)

	AddMovement(executor SQLExecutor, movement *models.PartnerMovement) error
	GetMovementsByPartner(partnerID string) ([]models.PartnerMovement, error)
}

type partnerRepository struct {
	db *sql.DB
}

// NewPartnerRepository creates a new instance of PartnerRepository.
func NewPartnerRepository(db *sql.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

// CreatePartner inserts a new partner.
func (r *partnerRepository) CreatePartner(executor SQLExecutor, partner *models.Partner) error {
	query := `INSERT INTO partners (id, name, participation_pct, color, is_house_entity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	now := time.Now()
	partner.CreatedAt = now
	partner.UpdatedAt = now

	_, err := executor.Exec(query,
		partner.ID, partner.Name, partner.ParticipationPct, partner.Color,
		partner.IsHouseEntity, now, now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return fmt.Errorf("%w: creating partner: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetPartnerByID retrieves a partner, optionally loading its movements.
func (r *partnerRepository) GetPartnerByID(id string, withMovements bool) (*models.Partner, error) {
	p := &models.Partner{}
	query := `SELECT id, name, participation_pct, color, is_house_entity, created_at, updated_at
	          FROM partners WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &p.ParticipationPct, &p.Color, &p.IsHouseEntity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting partner %s: %v", ErrDatabaseError, id, err)
	}

	if withMovements {
		p.Movements, err = r.GetMovementsByPartner(p.ID)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// GetPartners retrieves all partners ordered by name, optionally with
// their movement lists attached.
func (r *partnerRepository) GetPartners(withMovements bool) ([]models.Partner, error) {
	query := `SELECT id, name, participation_pct, color, is_house_entity, created_at, updated_at
	          FROM partners ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing partners: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	partners := []models.Partner{}
	for rows.Next() {
		var p models.Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.ParticipationPct, &p.Color, &p.IsHouseEntity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning partner: %v", ErrDatabaseError, err)
		}
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating partners: %v", ErrDatabaseError, err)
	}

	if withMovements {
		for i := range partners {
			partners[i].Movements, err = r.GetMovementsByPartner(partners[i].ID)
			if err != nil {
				return nil, err
			}
		}
	}
	return partners, nil
}

// UpdatePartner updates name, color, house flag and participation of a partner.
func (r *partnerRepository) UpdatePartner(executor SQLExecutor, partner *models.Partner) error {
	query := `UPDATE partners SET name = $1, participation_pct = $2, color = $3, is_house_entity = $4, updated_at = $5
	          WHERE id = $6`
	res, err := executor.Exec(query,
		partner.Name, partner.ParticipationPct, partner.Color, partner.IsHouseEntity,
		time.Now(), partner.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return fmt.Errorf("%w: updating partner %s: %v", ErrDatabaseError, partner.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateParticipations rewrites the participation percentage of every
// partner in the map. Meant to run inside one transaction so the
// partner table never holds a half-applied split.
func (r *partnerRepository) UpdateParticipations(executor SQLExecutor, percentages map[string]decimal.Decimal) error {
	query := `UPDATE partners SET participation_pct = $1, updated_at = $2 WHERE id = $3`
	now := time.Now()
	for id, pct := range percentages {
		res, err := executor.Exec(query, pct, now, id)
		if err != nil {
			return fmt.Errorf("%w: updating participation for partner %s: %v", ErrDatabaseError, id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: partner %s", ErrNotFound, id)
		}
	}
	return nil
}

// CountHouseEntities counts partners flagged as the house capital
// entity, excluding the given ID (pass "" to count all).
func (r *partnerRepository) CountHouseEntities(excludeID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM partners WHERE is_house_entity = TRUE AND id <> $1`
	if err := r.db.QueryRow(query, excludeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting house entities: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// AddMovement appends a cash movement to a partner's account.
func (r *partnerRepository) AddMovement(executor SQLExecutor, movement *models.PartnerMovement) error {
	query := `INSERT INTO partner_movements (id, partner_id, date, type, amount, concept, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	movement.CreatedAt = time.Now()

	_, err := executor.Exec(query,
		movement.ID, movement.PartnerID, movement.Date, movement.Type,
		movement.Amount, movement.Concept, movement.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: partner %s", ErrNotFound, movement.PartnerID)
			}
		}
		return fmt.Errorf("%w: adding movement: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetMovementsByPartner lists a partner's movements oldest first.
func (r *partnerRepository) GetMovementsByPartner(partnerID string) ([]models.PartnerMovement, error) {
	query := `SELECT id, partner_id, date, type, amount, concept, created_at
	          FROM partner_movements WHERE partner_id = $1 ORDER BY date ASC, created_at ASC`
	rows, err := r.db.Query(query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing movements for partner %s: %v", ErrDatabaseError, partnerID, err)
	}
	defer rows.Close()

	movements := []models.PartnerMovement{}
	for rows.Next() {
		var m models.PartnerMovement
		if err := rows.Scan(&m.ID, &m.PartnerID, &m.Date, &m.Type, &m.Amount, &m.Concept, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning movement: %v", ErrDatabaseError, err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
