package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/validation"

	"github.com/rs/zerolog"
)

// Routing keys used for product change events.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// ValidationError carries the field-level messages of a rejected candidate record.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product: %d field(s) failed validation", len(e.Fields))
}

// EventPublisher publishes a message to the broker under the given routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a ProductService.
type Option func(*ProductService)

// WithPublisher enables product change events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *ProductService) { s.publisher = p }
}

// WithLogger sets the logger used for event publishing diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(s *ProductService) { s.log = log }
}

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *ProductService) { s.now = now }
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...Option) *ProductService {
	s := &ProductService{
		repo: repo,
		log:  zerolog.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates input, inserts it and returns the row as persisted.
func (s *ProductService) CreateProduct(ctx context.Context, input validation.ProductInput) (*models.Product, error) {
	product, err := s.fromInput(input)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, product.ID)
	if errors.Is(err, repositories.ErrProductNotFound) {
		// Deleted concurrently between insert and read-back; not the client's 404.
		return nil, fmt.Errorf("product %d not found after create", product.ID)
	}
	if err != nil {
		return nil, err
	}

	s.publish(EventProductCreated, created.ID, created)
	return created, nil
}

// UpdateProduct validates input, overwrites the business fields of product id and
// returns the row as persisted. ErrProductNotFound is returned if no row has that id.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, input validation.ProductInput) (*models.Product, error) {
	product, err := s.fromInput(input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, product); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(EventProductUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteProduct deletes a product by its ID. Deleting a missing product is not an error.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(EventProductDeleted, id, nil)
	return nil
}

func (s *ProductService) fromInput(input validation.ProductInput) (*models.Product, error) {
	result := validation.ValidateProduct(input)
	if result.HasErrors() {
		return nil, &ValidationError{Fields: result.Errors}
	}
	price, _ := validation.ParsePrice(input.Price)
	return &models.Product{
		Name:        input.Name,
		Brand:       input.Brand,
		Category:    input.Category,
		Price:       price,
		Description: input.Description,
	}, nil
}

// productEvent is the message body of a product change event.
type productEvent struct {
	Event      string          `json:"event"`
	ProductID  uint            `json:"product_id"`
	Product    *models.Product `json:"product,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// publish is best effort: a broker failure is logged and never fails the request.
func (s *ProductService) publish(event string, id uint, product *models.Product) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(productEvent{
		Event:      event,
		ProductID:  id,
		Product:    product,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Uint("product_id", id).Msg("failed to marshal product event")
		return
	}
	if err := s.publisher.Publish(event, body); err != nil {
		s.log.Warn().Err(err).Str("event", event).Uint("product_id", id).Msg("failed to publish product event")
		return
	}
	s.log.Debug().Str("event", event).Uint("product_id", id).Msg("published product event")
}
