package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/printmart/catalog-ingest/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCatalogRepository creates a GormCatalogRepository with a mocked SQL connection
func newMockCatalogRepository(t *testing.T) (*GormCatalogRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCatalogRepository(gormDB), mock, mockDB
}

func TestGormCatalogRepository_UpsertProduct_DBError(t *testing.T) {
	repo, mock, mockDB := newMockCatalogRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WithArgs("42").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.UpsertProduct(context.Background(), catalog.ProductRef{
		ID:      "42",
		RawJSON: json.RawMessage(`{"id":42}`),
	})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCatalogRepository_PersistRegular_RollsBackOnError(t *testing.T) {
	repo, mock, mockDB := newMockCatalogRepository(t)
	defer mockDB.Close()

	// The stale-family cleanup fails mid-transaction; the pair's transaction
	// must roll back and the error surface to the caller.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "roll_label_options"`).
		WithArgs("42", "en_us").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	d := catalog.Classify(json.RawMessage(`[[{"id":1,"group":"g","name":"n"}],[],[]]`))
	require.Equal(t, catalog.FamilyRegular, d.Family)

	_, err := repo.PersistRegular(context.Background(), "42", "en_us", d)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
