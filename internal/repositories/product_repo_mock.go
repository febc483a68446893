package repositories

import (
	"context"
	"fmt"
	"sync"

	"productapi/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It keeps insertion order and assigns increasing IDs like an auto-increment column.
type MockProductRepository struct {
	mu       sync.RWMutex
	products map[uint]models.Product
	order    []uint
	nextID   uint
	err      error
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (r *MockProductRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// GetAll returns all products in insertion order.
func (r *MockProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	productList := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		productList = append(productList, r.products[id])
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product and assigns its ID.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// Update overwrites the business fields of an existing product.
func (r *MockProductRepository) Update(_ context.Context, id uint, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	stored, ok := r.products[id]
	if !ok {
		return nil
	}
	stored.Name = product.Name
	stored.Brand = product.Brand
	stored.Category = product.Category
	stored.Price = product.Price
	stored.Description = product.Description
	r.products[id] = stored
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	if _, ok := r.products[id]; !ok {
		return nil
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
