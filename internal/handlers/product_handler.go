package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"productapi/internal/models"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// ProductService is the behavior ProductHandler needs from the service layer.
type ProductService interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, input validation.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, input validation.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service ProductService
	log     zerolog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns every product, or an empty list.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return h.storeError(c, err, "Error getting all products")
	}
	return c.Status(fiber.StatusOK).JSON(products)
}

// HandleGetProductByID returns a single product, or 404 with an empty body.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), productID(c))
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFound(c)
		}
		return h.storeError(c, err, "Error getting product by ID")
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// HandleCreateProduct validates the body, creates the product and returns it as stored.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	input, err := h.parseInput(c)
	if err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(validationErr.Fields)
		}
		return h.storeError(c, err, "Error creating product")
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// HandleUpdateProduct validates the body, overwrites the product and returns it as stored.
// An unknown ID answers 404 with an empty body, like HandleGetProductByID.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	input, err := h.parseInput(c)
	if err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), productID(c), input)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(validationErr.Fields)
		}
		if errors.Is(err, repositories.ErrProductNotFound) {
			return notFound(c)
		}
		return h.storeError(c, err, "Error updating product")
	}
	return c.Status(fiber.StatusOK).JSON(product)
}

// HandleDeleteProduct deletes the product without checking that it exists.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), productID(c)); err != nil {
		return h.storeError(c, err, "Error deleting product")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("Product with ID %s deleted successfully", id),
	})
}

// parseInput decodes the JSON body into a candidate record. An empty body is an empty record.
func (h *ProductHandler) parseInput(c *fiber.Ctx) (validation.ProductInput, error) {
	var input validation.ProductInput
	body := c.Body()
	if len(body) == 0 {
		return input, nil
	}
	if err := c.App().Config().JSONDecoder(body, &input); err != nil {
		h.log.Debug().Err(err).Str("path", c.Path()).Msg("Error parsing product body")
		return input, err
	}
	return input, nil
}

// storeError answers 500 with the underlying error message.
func (h *ProductHandler) storeError(c *fiber.Ctx, err error, msg string) error {
	h.log.Error().Err(err).Str("path", c.Path()).Msg(msg)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": err.Error(),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body: " + err.Error(),
	})
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Send(nil)
}

// productID parses the :id path parameter. Anything that is not an unsigned
// integer maps to 0, which no auto-increment row ever holds.
func productID(c *fiber.Ctx) uint {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
