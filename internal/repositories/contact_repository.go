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

// ContactRepository defines the interface for contact-related database operations.
type ContactRepository interface {
	CreateContact(executor SQLExecutor, contact *models.Contact) error
	GetContactByID(id string) (*models.Contact, error)
	GetContacts(page, pageSize int, searchTerm *string, contactType *string) ([]models.Contact, int, error) // Contacts, total count, error
	UpdateContact(executor SQLExecutor, contact *models.Contact) error
	DeleteContact(executor SQLExecutor, id string) error
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository.
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

// CreateContact inserts a new contact into the database.
func (r *contactRepository) CreateContact(executor SQLExecutor, contact *models.Contact) error {
	query := `INSERT INTO contacts (id, full_name, phone_number, email, type, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	currentTime := time.Now()
	contact.CreatedAt = currentTime
	contact.UpdatedAt = currentTime
	if contact.Type == "" {
		contact.Type = models.ContactTypeClient
	}

	_, err := executor.Exec(query,
		contact.ID, contact.FullName, contact.PhoneNumber, contact.Email,
		contact.Type, contact.Notes, contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return fmt.Errorf("%w: creating contact: %v", ErrDatabaseError, err)
	}
	return nil
}

// GetContactByID retrieves a contact by its ID.
func (r *contactRepository) GetContactByID(id string) (*models.Contact, error) {
	contact := &models.Contact{}
	query := `SELECT id, full_name, phone_number, email, type, notes, created_at, updated_at
	          FROM contacts WHERE id = $1`

	err := r.db.QueryRow(query, id).Scan(
		&contact.ID, &contact.FullName, &contact.PhoneNumber, &contact.Email,
		&contact.Type, &contact.Notes, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting contact by ID %s: %v", ErrDatabaseError, id, err)
	}
	return contact, nil
}

// GetContacts retrieves a list of contacts with pagination, optional search and a type filter.
func (r *contactRepository) GetContacts(page, pageSize int, searchTerm *string, contactType *string) ([]models.Contact, int, error) {
	contacts := []models.Contact{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, full_name, phone_number, email, type, notes, created_at, updated_at, COUNT(*) OVER() as total_count
	                          FROM contacts`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) ILIKE $%d OR LOWER(phone_number) ILIKE $%d OR LOWER(email) ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	if contactType != nil && *contactType != "" {
		conditions = append(conditions, fmt.Sprintf("(type = $%d OR type = 'both')", argCount))
		args = append(args, *contactType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY full_name ASC")

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
		return nil, 0, fmt.Errorf("%w: listing contacts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(
			&c.ID, &c.FullName, &c.PhoneNumber, &c.Email, &c.Type, &c.Notes,
			&c.CreatedAt, &c.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning contact: %v", ErrDatabaseError, err)
		}
		contacts = append(contacts, c)
	}
	return contacts, totalCount, rows.Err()
}

// UpdateContact updates an existing contact.
func (r *contactRepository) UpdateContact(executor SQLExecutor, contact *models.Contact) error {
	query := `UPDATE contacts SET full_name = $1, phone_number = $2, email = $3, type = $4, notes = $5, updated_at = $6
	          WHERE id = $7`
	res, err := executor.Exec(query,
		contact.FullName, contact.PhoneNumber, contact.Email, contact.Type, contact.Notes,
		time.Now(), contact.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
		}
		return fmt.Errorf("%w: updating contact %s: %v", ErrDatabaseError, contact.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteContact removes a contact.
func (r *contactRepository) DeleteContact(executor SQLExecutor, id string) error {
	res, err := executor.Exec(`DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting contact %s: %v", ErrDatabaseError, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
