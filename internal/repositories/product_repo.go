package repositories

import (
	"context"
	"errors"

	"productapi/internal/models"
)

// ErrProductNotFound is returned when no row matches the requested ID.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update overwrites the business fields of the row with the given ID.
	// A missing row is not an error; callers detect it by reading back.
	Update(ctx context.Context, id uint, product *models.Product) error
	// Delete removes the row with the given ID, if any.
	Delete(ctx context.Context, id uint) error
}
