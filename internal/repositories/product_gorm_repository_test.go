package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"productapi/internal/models"
	"productapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB opens a private in-memory SQLite database for one test.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newProduct(name string) *models.Product {
	return &models.Product{
		Name:        name,
		Brand:       "Acme",
		Category:    "Office",
		Price:       1.5,
		Description: "Blue ink",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestGORMProductRepository_CreateAndGetByID(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))
	ctx := context.Background()

	product := newProduct("Pen")
	require.NoError(t, repo.Create(ctx, product))
	assert.NotZero(t, product.ID)

	fetched, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, fetched.Name)
	assert.Equal(t, product.Brand, fetched.Brand)
	assert.Equal(t, product.Category, fetched.Category)
	assert.Equal(t, product.Price, fetched.Price)
	assert.Equal(t, product.Description, fetched.Description)
	assert.True(t, product.CreatedAt.Equal(fetched.CreatedAt))
}

func TestGORMProductRepository_GetByIDNotFound(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))

	product, err := repo.GetByID(context.Background(), 999)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestGORMProductRepository_GetAll(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))
	ctx := context.Background()

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	require.NoError(t, repo.Create(ctx, newProduct("Pen")))
	require.NoError(t, repo.Create(ctx, newProduct("Pencil")))

	products, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Pen", products[0].Name)
	assert.Equal(t, "Pencil", products[1].Name)
}

func TestGORMProductRepository_UpdateKeepsCreatedAt(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))
	ctx := context.Background()

	product := newProduct("Pen")
	require.NoError(t, repo.Create(ctx, product))

	changes := &models.Product{
		Name:        "Marker",
		Brand:       "Zebra",
		Category:    "Art",
		Price:       3.25,
		Description: "Permanent",
		CreatedAt:   time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Update(ctx, product.ID, changes))

	fetched, err := repo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marker", fetched.Name)
	assert.Equal(t, "Zebra", fetched.Brand)
	assert.Equal(t, "Art", fetched.Category)
	assert.Equal(t, 3.25, fetched.Price)
	assert.Equal(t, "Permanent", fetched.Description)
	assert.True(t, product.CreatedAt.Equal(fetched.CreatedAt))
}

func TestGORMProductRepository_UpdateMissingRow(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))

	err := repo.Update(context.Background(), 42, newProduct("Ghost"))
	assert.NoError(t, err)
}

func TestGORMProductRepository_Delete(t *testing.T) {
	repo := repositories.NewGORMProductRepository(setupDB(t))
	ctx := context.Background()

	product := newProduct("Pen")
	require.NoError(t, repo.Create(ctx, product))

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err := repo.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	// Deleting again is not an error.
	assert.NoError(t, repo.Delete(ctx, product.ID))
}

func TestGORMProductRepository_StoreError(t *testing.T) {
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, db.Migrator().DropTable(&models.Product{}))

	_, err := repo.GetAll(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Contains(t, err.Error(), "failed to get all products")
}

func TestMockProductRepository(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	ctx := context.Background()

	first := newProduct("Pen")
	second := newProduct("Pencil")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, uint(1), first.ID)
	assert.Equal(t, uint(2), second.ID)

	require.NoError(t, repo.Update(ctx, first.ID, newProduct("Fountain pen")))
	fetched, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fountain pen", fetched.Name)

	require.NoError(t, repo.Delete(ctx, first.ID))
	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Pencil", products[0].Name)

	repo.FailWith(fmt.Errorf("connection refused"))
	_, err = repo.GetAll(ctx)
	assert.EqualError(t, err, "connection refused")
}
