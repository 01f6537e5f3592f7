package persistence

import (
	"context"

	"github.com/printmart/catalog-ingest/internal/domain/catalog"
	"github.com/printmart/catalog-ingest/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogRepository implements catalog.IngestRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// UpsertProduct creates or refreshes the product row by its vendor product id.
// The raw JSON comes from the catalog listing, not the detail payload.
func (r *GormCatalogRepository) UpsertProduct(ctx context.Context, ref catalog.ProductRef) (catalog.PersistResult, error) {
	res := catalog.PersistResult{}
	m := models.ProductModelFromRef(ref)

	inserted, err := upsertRow(r.db.WithContext(ctx), m,
		keyWhere("product_id = ?", ref.ID),
		[]string{"product_id"},
		[]string{"name", "sku", "raw_json", "updated_at"},
	)
	if err != nil {
		return nil, err
	}
	res.Add(models.ProductModel{}.TableName(), inserted)
	return res, nil
}

// PersistRegular writes the option, pricing and metadata rows of a regular
// detail payload for one (product, store) pair in a single transaction. Any
// roll-label rows for the pair are cleared first.
func (r *GormCatalogRepository) PersistRegular(ctx context.Context, productID, storeCode string, d catalog.Detail) (catalog.PersistResult, error) {
	res := catalog.PersistResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRollLabelRows(tx, productID, storeCode); err != nil {
			return err
		}

		for _, raw := range d.Options {
			m, ok := models.ProductOptionFromElement(productID, storeCode, raw)
			if !ok {
				continue
			}
			inserted, err := upsertRow(tx, m,
				keyWhere("product_id = ? AND store_code = ? AND option_id = ?", productID, storeCode, m.OptionID),
				[]string{"product_id", "store_code", "option_id"},
				[]string{"option_group", "option_name", "raw_json", "updated_at"},
			)
			if err != nil {
				return err
			}
			res.Add(m.TableName(), inserted)
		}

		for _, raw := range d.Pricing {
			m, ok := models.ProductPricingFromElement(productID, storeCode, raw)
			if !ok {
				continue
			}
			inserted, err := upsertRow(tx, m,
				keyWhere("product_id = ? AND store_code = ? AND hash = ?", productID, storeCode, m.Hash),
				[]string{"product_id", "store_code", "hash"},
				[]string{"value", "amount", "raw_json", "updated_at"},
			)
			if err != nil {
				return err
			}
			res.Add(m.TableName(), inserted)
		}

		for i, raw := range d.Contents {
			m := models.ProductMetadataFromElement(productID, storeCode, i, raw)
			inserted, err := upsertRow(tx, m,
				keyWhere("product_id = ? AND store_code = ? AND metadata_index = ?", productID, storeCode, i),
				[]string{"product_id", "store_code", "metadata_index"},
				[]string{"raw_json", "updated_at"},
			)
			if err != nil {
				return err
			}
			res.Add(m.TableName(), inserted)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PersistRollLabel writes the option-value, exclusion and content rows of a
// roll-label detail payload for one (product, store) pair in a single
// transaction. Any regular-family rows for the pair are cleared first.
func (r *GormCatalogRepository) PersistRollLabel(ctx context.Context, productID, storeCode string, d catalog.Detail) (catalog.PersistResult, error) {
	res := catalog.PersistResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteRegularRows(tx, productID, storeCode); err != nil {
			return err
		}

		for _, raw := range d.Options {
			m, ok := models.RollLabelOptionFromElement(productID, storeCode, raw)
			if !ok {
				continue
			}
			inserted, err := upsertRow(tx, m,
				keyWhere("product_id = ? AND store_code = ? AND option_id = ? AND opt_val_id = ?",
					productID, storeCode, m.OptionID, m.OptValID),
				[]string{"product_id", "store_code", "option_id", "opt_val_id"},
				[]string{"name", "label", "option_val", "html_type", "sort_order",
					"value_sort_order", "img_src", "extra_turnaround_days", "raw_json", "updated_at"},
			)
			if err != nil {
				return err
			}
			res.Add(m.TableName(), inserted)
		}

		for i, raw := range d.Pricing {
			m := models.RollLabelExclusionFromElement(productID, storeCode, i, raw)
			inserted, err := upsertRow(tx, m,
				keyWhere("product_id = ? AND store_code = ? AND exclusion_index = ?", productID, storeCode, i),
				[]string{"product_id", "store_code", "exclusion_index"},
				[]string{"size_id", "qty", "first_entity", "first_value",
					"second_entity", "second_value", "raw_json", "updated_at"},
			)
			if err != nil {
				return err
			}
			res.Add(m.TableName(), inserted)
		}

		for _, raw := range d.Contents {
			m, ok := models.RollLabelContentFromElement(productID, storeCode, raw)
			if !ok {
				continue
			}
			inserted, err := upsertRow(tx, m,
				keyWhere("product_id = ? AND store_code = ? AND pricing_option_value_entity_id = ? AND content_type = ?",
					productID, storeCode, m.PricingOptionValueEntityID, m.ContentType),
				[]string{"product_id", "store_code", "pricing_option_value_entity_id", "content_type"},
				[]string{"content", "raw_json", "updated_at"},
			)
			if err != nil {
				return err
			}
			res.Add(m.TableName(), inserted)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// pairWhere is a keyed condition used both for the pre-upsert probe and the
// stale-family cleanup.
type pairWhere struct {
	cond string
	args []any
}

func keyWhere(cond string, args ...any) pairWhere {
	return pairWhere{cond: cond, args: args}
}

// upsertRow performs INSERT ... ON CONFLICT (<key columns>) DO UPDATE for one
// model row. The composite key is probed first so the caller can tell inserts
// from updates; the probe and the write run on the same transaction handle,
// so the distinction stays accurate under the per-pair isolation the worker
// partitioning guarantees.
func upsertRow(tx *gorm.DB, model any, key pairWhere, keyColumns, updateColumns []string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(key.cond, key.args...).Count(&count).Error; err != nil {
		return false, err
	}

	columns := make([]clause.Column, len(keyColumns))
	for i, c := range keyColumns {
		columns[i] = clause.Column{Name: c}
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   columns,
		DoUpdates: clause.AssignmentColumns(updateColumns),
	}).Create(model).Error; err != nil {
		return false, err
	}

	return count == 0, nil
}

// deleteRollLabelRows clears all roll-label family rows for a pair before
// regular rows are written.
func deleteRollLabelRows(tx *gorm.DB, productID, storeCode string) error {
	for _, model := range []any{
		&models.RollLabelOptionModel{},
		&models.RollLabelExclusionModel{},
		&models.RollLabelContentModel{},
	} {
		if err := tx.Where("product_id = ? AND store_code = ?", productID, storeCode).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteRegularRows clears all regular family rows for a pair before
// roll-label rows are written.
func deleteRegularRows(tx *gorm.DB, productID, storeCode string) error {
	for _, model := range []any{
		&models.ProductOptionModel{},
		&models.ProductPricingModel{},
		&models.ProductMetadataModel{},
	} {
		if err := tx.Where("product_id = ? AND store_code = ?", productID, storeCode).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// AllModels lists every catalog model, in creation order. Used by tests and
// by AutoMigrate-based schema setup.
func AllModels() []any {
	return []any{
		&models.ProductModel{},
		&models.ProductOptionModel{},
		&models.ProductPricingModel{},
		&models.ProductMetadataModel{},
		&models.RollLabelOptionModel{},
		&models.RollLabelExclusionModel{},
		&models.RollLabelContentModel{},
	}
}

// Ensure GormCatalogRepository implements IngestRepository
var _ catalog.IngestRepository = (*GormCatalogRepository)(nil)
