package models

import "time"

// Brand is the top level of the catalog hierarchy (e.g. Rolex, Omega).
type Brand struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Country   *string   `json:"country,omitempty" db:"country"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WatchModel is a model line belonging to a brand (e.g. Submariner).
type WatchModel struct {
	ID        string    `json:"id" db:"id"`
	BrandID   string    `json:"brand_id" db:"brand_id" binding:"required"`
	Name      string    `json:"name" db:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Brand     *Brand    `json:"brand,omitempty"` // For joining with Brand
}

// Reference is a concrete catalog reference within a model line
// (e.g. 126610LN). Inventory items link here, never to Brand/WatchModel
// directly.
type Reference struct {
	ID          string      `json:"id" db:"id"`
	ModelID     string      `json:"model_id" db:"model_id" binding:"required"`
	Code        string      `json:"code" db:"code" binding:"required"`
	Description *string     `json:"description,omitempty" db:"description"`
	RetailPrice *string     `json:"retail_price,omitempty" db:"retail_price"` // advisory, free-form
	ImageURL    *string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	Model       *WatchModel `json:"model,omitempty"` // For joining with WatchModel
}
