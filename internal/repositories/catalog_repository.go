package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchtrade_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// CatalogRepository defines the interface for the brand/model/reference
// lookup hierarchy.
type CatalogRepository interface {
	CreateBrand(executor SQLExecutor, brand *models.Brand) error
	GetBrands() ([]models.Brand, error)
	GetBrandByID(id string) (*models.Brand, error)
	UpdateBrand(executor SQLExecutor, brand *models.Brand) error
	DeleteBrand(executor SQLExecutor, id string) error

	CreateModel(executor SQLExecutor, model *models.WatchModel) error
	GetModelsByBrand(brandID string) ([]models.WatchModel, error)
	GetModelByID(id string) (*models.WatchModel, error)
	UpdateModel(executor SQLExecutor, model *models.WatchModel) error
	DeleteModel(executor SQLExecutor, id string) error

	CreateReference(executor SQLExecutor, ref *models.Reference) error
	GetReferencesByModel(modelID string) ([]models.Reference, error)
	GetReferenceByID(id string) (*models.Reference, error)
	UpdateReference(executor SQLExecutor, ref *models.Reference) error
	DeleteReference(executor SQLExecutor, id string) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func mapCatalogWriteError(err error, what string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		case "foreign_key_violation":
			return fmt.Errorf("%w: %s references a missing or still-referenced row", ErrDatabaseError, what)
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrDatabaseError, what, err)
}

// --- Brands ---

func (r *catalogRepository) CreateBrand(executor SQLExecutor, brand *models.Brand) error {
	query := `INSERT INTO brands (id, name, country, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	now := time.Now()
	brand.CreatedAt = now
	brand.UpdatedAt = now
	if _, err := executor.Exec(query, brand.ID, brand.Name, brand.Country, now, now); err != nil {
		return mapCatalogWriteError(err, "creating brand")
	}
	return nil
}

func (r *catalogRepository) GetBrands() ([]models.Brand, error) {
	query := `SELECT id, name, country, created_at, updated_at FROM brands ORDER BY name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing brands: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Country, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning brand: %v", ErrDatabaseError, err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *catalogRepository) GetBrandByID(id string) (*models.Brand, error) {
	b := &models.Brand{}
	query := `SELECT id, name, country, created_at, updated_at FROM brands WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&b.ID, &b.Name, &b.Country, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting brand %s: %v", ErrDatabaseError, id, err)
	}
	return b, nil
}

func (r *catalogRepository) UpdateBrand(executor SQLExecutor, brand *models.Brand) error {
	query := `UPDATE brands SET name = $1, country = $2, updated_at = $3 WHERE id = $4`
	res, err := executor.Exec(query, brand.Name, brand.Country, time.Now(), brand.ID)
	if err != nil {
		return mapCatalogWriteError(err, "updating brand")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteBrand(executor SQLExecutor, id string) error {
	res, err := executor.Exec(`DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return mapCatalogWriteError(err, "deleting brand")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Models ---

func (r *catalogRepository) CreateModel(executor SQLExecutor, model *models.WatchModel) error {
	query := `INSERT INTO watch_models (id, brand_id, name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now
	if _, err := executor.Exec(query, model.ID, model.BrandID, model.Name, now, now); err != nil {
		return mapCatalogWriteError(err, "creating model")
	}
	return nil
}

func (r *catalogRepository) GetModelsByBrand(brandID string) ([]models.WatchModel, error) {
	query := `SELECT id, brand_id, name, created_at, updated_at FROM watch_models WHERE brand_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(query, brandID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing models for brand %s: %v", ErrDatabaseError, brandID, err)
	}
	defer rows.Close()

	list := []models.WatchModel{}
	for rows.Next() {
		var m models.WatchModel
		if err := rows.Scan(&m.ID, &m.BrandID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning model: %v", ErrDatabaseError, err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *catalogRepository) GetModelByID(id string) (*models.WatchModel, error) {
	m := &models.WatchModel{}
	query := `SELECT id, brand_id, name, created_at, updated_at FROM watch_models WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&m.ID, &m.BrandID, &m.Name, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting model %s: %v", ErrDatabaseError, id, err)
	}
	return m, nil
}

func (r *catalogRepository) UpdateModel(executor SQLExecutor, model *models.WatchModel) error {
	query := `UPDATE watch_models SET name = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.Exec(query, model.Name, time.Now(), model.ID)
	if err != nil {
		return mapCatalogWriteError(err, "updating model")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteModel(executor SQLExecutor, id string) error {
	res, err := executor.Exec(`DELETE FROM watch_models WHERE id = $1`, id)
	if err != nil {
		return mapCatalogWriteError(err, "deleting model")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- References ---

func (r *catalogRepository) CreateReference(executor SQLExecutor, ref *models.Reference) error {
	query := `INSERT INTO watch_references (id, model_id, code, description, retail_price, image_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now()
	ref.CreatedAt = now
	ref.UpdatedAt = now
	_, err := executor.Exec(query, ref.ID, ref.ModelID, ref.Code, ref.Description, ref.RetailPrice, ref.ImageURL, now, now)
	if err != nil {
		return mapCatalogWriteError(err, "creating reference")
	}
	return nil
}

func (r *catalogRepository) GetReferencesByModel(modelID string) ([]models.Reference, error) {
	query := `SELECT id, model_id, code, description, retail_price, image_url, created_at, updated_at
	          FROM watch_references WHERE model_id = $1 ORDER BY code ASC`
	rows, err := r.db.Query(query, modelID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing references for model %s: %v", ErrDatabaseError, modelID, err)
	}
	defer rows.Close()

	refs := []models.Reference{}
	for rows.Next() {
		var ref models.Reference
		if err := rows.Scan(&ref.ID, &ref.ModelID, &ref.Code, &ref.Description, &ref.RetailPrice, &ref.ImageURL, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning reference: %v", ErrDatabaseError, err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *catalogRepository) GetReferenceByID(id string) (*models.Reference, error) {
	ref := &models.Reference{}
	query := `SELECT id, model_id, code, description, retail_price, image_url, created_at, updated_at
	          FROM watch_references WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&ref.ID, &ref.ModelID, &ref.Code, &ref.Description, &ref.RetailPrice, &ref.ImageURL, &ref.CreatedAt, &ref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting reference %s: %v", ErrDatabaseError, id, err)
	}
	return ref, nil
}

func (r *catalogRepository) UpdateReference(executor SQLExecutor, ref *models.Reference) error {
	query := `UPDATE watch_references SET code = $1, description = $2, retail_price = $3, image_url = $4, updated_at = $5 WHERE id = $6`
	res, err := executor.Exec(query, ref.Code, ref.Description, ref.RetailPrice, ref.ImageURL, time.Now(), ref.ID)
	if err != nil {
		return mapCatalogWriteError(err, "updating reference")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) DeleteReference(executor SQLExecutor, id string) error {
	res, err := executor.Exec(`DELETE FROM watch_references WHERE id = $1`, id)
	if err != nil {
		return mapCatalogWriteError(err, "deleting reference")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
