package models

import (
	"encoding/json"

	"github.com/printmart/catalog-ingest/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProductModel is one vendor product from the catalog listing. Rows are
// created or refreshed on every pass and never deleted by the pipeline.
type ProductModel struct {
	BaseModel
	ProductID string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_product_id"`
	Name      string         `gorm:"type:varchar(255)"`
	SKU       string         `gorm:"type:varchar(128)"`
	RawJSON   datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ProductModelFromRef builds the product row from a catalog listing entry.
func ProductModelFromRef(ref catalog.ProductRef) *ProductModel {
	return &ProductModel{
		ProductID: ref.ID,
		Name:      ref.Name,
		SKU:       ref.SKU,
		RawJSON:   datatypes.JSON(ref.RawJSON),
	}
}

// ProductOptionModel is one selectable option of a regular product.
type ProductOptionModel struct {
	BaseModel
	ProductID   string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_options_key,priority:1"`
	StoreCode   string         `gorm:"type:varchar(16);not null;uniqueIndex:idx_product_options_key,priority:2"`
	OptionID    string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_options_key,priority:3"`
	OptionGroup string         `gorm:"type:varchar(128)"`
	OptionName  string         `gorm:"type:varchar(255)"`
	RawJSON     datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductOptionModel) TableName() string {
	return "product_options"
}

// ProductOptionFromElement maps one arr1 element of a regular payload.
// Elements without id, group and name are not persisted.
func ProductOptionFromElement(productID, storeCode string, raw json.RawMessage) (*ProductOptionModel, bool) {
	obj, ok := catalog.DecodeObject(raw)
	if !ok || !obj.Has("id", "group", "name") {
		return nil, false
	}
	return &ProductOptionModel{
		ProductID:   productID,
		StoreCode:   storeCode,
		OptionID:    obj.String("id"),
		OptionGroup: obj.String("group"),
		OptionName:  obj.String("name"),
		RawJSON:     datatypes.JSON(raw),
	}, true
}

// ProductPricingModel is one pricing-hash row of a regular product. Value is
// the vendor's opaque price string; Amount carries the parsed numeric price
// when the string is numeric and zero otherwise.
type ProductPricingModel struct {
	BaseModel
	ProductID string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_pricing_key,priority:1"`
	StoreCode string          `gorm:"type:varchar(16);not null;uniqueIndex:idx_product_pricing_key,priority:2"`
	Hash      string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_product_pricing_key,priority:3"`
	Value     string          `gorm:"type:varchar(255)"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RawJSON   datatypes.JSON  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductPricingModel) TableName() string {
	return "product_pricing"
}

// ProductPricingFromElement maps one arr2 element of a regular payload.
// Elements without a non-empty hash are not persisted.
func ProductPricingFromElement(productID, storeCode string, raw json.RawMessage) (*ProductPricingModel, bool) {
	obj, ok := catalog.DecodeObject(raw)
	if !ok {
		return nil, false
	}
	hash := obj.String("hash")
	if hash == "" {
		return nil, false
	}

	value := obj.String("value")
	amount, err := decimal.NewFromString(value)
	if err != nil {
		amount = decimal.Zero
	}

	return &ProductPricingModel{
		ProductID: productID,
		StoreCode: storeCode,
		Hash:      hash,
		Value:     value,
		Amount:    amount,
		RawJSON:   datatypes.JSON(raw),
	}, true
}

// ProductMetadataModel is one metadata fragment of a regular product, one row
// per arr3 element, numbered positionally.
type ProductMetadataModel struct {
	BaseModel
	ProductID     string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_metadata_key,priority:1"`
	StoreCode     string         `gorm:"type:varchar(16);not null;uniqueIndex:idx_product_metadata_key,priority:2"`
	MetadataIndex int            `gorm:"not null;uniqueIndex:idx_product_metadata_key,priority:3"`
	RawJSON       datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductMetadataModel) TableName() string {
	return "product_metadata"
}

// ProductMetadataFromElement maps one arr3 element of a regular payload.
func ProductMetadataFromElement(productID, storeCode string, index int, raw json.RawMessage) *ProductMetadataModel {
	return &ProductMetadataModel{
		ProductID:     productID,
		StoreCode:     storeCode,
		MetadataIndex: index,
		RawJSON:       datatypes.JSON(raw),
	}
}

// RollLabelOptionModel is one option value of a roll-label product.
type RollLabelOptionModel struct {
	BaseModel
	ProductID           string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_options_key,priority:1"`
	StoreCode           string         `gorm:"type:varchar(16);not null;uniqueIndex:idx_roll_label_options_key,priority:2"`
	OptionID            string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_options_key,priority:3"`
	OptValID            string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_options_key,priority:4"`
	Name                string         `gorm:"type:varchar(255)"`
	Label               string         `gorm:"type:varchar(255)"`
	OptionVal           string         `gorm:"type:varchar(255)"`
	HTMLType            string         `gorm:"type:varchar(64)"`
	SortOrder           int            `gorm:"not null;default:0"`
	ValueSortOrder      int            `gorm:"not null;default:0"`
	ImgSrc              string         `gorm:"type:text"`
	ExtraTurnaroundDays int            `gorm:"not null;default:0"`
	RawJSON             datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RollLabelOptionModel) TableName() string {
	return "roll_label_options"
}

// RollLabelOptionFromElement maps one arr1 element of a roll-label payload.
// Elements without both option_id and opt_val_id are not persisted.
func RollLabelOptionFromElement(productID, storeCode string, raw json.RawMessage) (*RollLabelOptionModel, bool) {
	obj, ok := catalog.DecodeObject(raw)
	if !ok || !obj.Has("option_id", "opt_val_id") {
		return nil, false
	}
	return &RollLabelOptionModel{
		ProductID:           productID,
		StoreCode:           storeCode,
		OptionID:            obj.String("option_id"),
		OptValID:            obj.String("opt_val_id"),
		Name:                obj.String("name"),
		Label:               obj.String("label"),
		OptionVal:           obj.String("option_val"),
		HTMLType:            obj.String("html_type"),
		SortOrder:           obj.Int("sort_order"),
		ValueSortOrder:      obj.Int("opt_sort_order"),
		ImgSrc:              obj.String("img_src"),
		ExtraTurnaroundDays: obj.Int("extra_turnaround_days"),
		RawJSON:             datatypes.JSON(raw),
	}, true
}

// RollLabelExclusionModel is one exclusion rule between two option-value
// combinations of a roll-label product. Rules carry no natural key upstream,
// so rows are numbered by position within the payload.
type RollLabelExclusionModel struct {
	BaseModel
	ProductID      string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_exclusions_key,priority:1"`
	StoreCode      string         `gorm:"type:varchar(16);not null;uniqueIndex:idx_roll_label_exclusions_key,priority:2"`
	ExclusionIndex int            `gorm:"not null;uniqueIndex:idx_roll_label_exclusions_key,priority:3"`
	SizeID         string         `gorm:"type:varchar(64)"`
	Qty            string         `gorm:"type:varchar(64)"`
	FirstEntity    string         `gorm:"type:varchar(64)"`
	FirstValue     string         `gorm:"type:varchar(64)"`
	SecondEntity   string         `gorm:"type:varchar(64)"`
	SecondValue    string         `gorm:"type:varchar(64)"`
	RawJSON        datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RollLabelExclusionModel) TableName() string {
	return "roll_label_exclusions"
}

// RollLabelExclusionFromElement maps one arr2 element of a roll-label payload.
func RollLabelExclusionFromElement(productID, storeCode string, index int, raw json.RawMessage) *RollLabelExclusionModel {
	m := &RollLabelExclusionModel{
		ProductID:      productID,
		StoreCode:      storeCode,
		ExclusionIndex: index,
		RawJSON:        datatypes.JSON(raw),
	}
	if obj, ok := catalog.DecodeObject(raw); ok {
		m.SizeID = obj.String("size_id")
		m.Qty = obj.String("qty")
		m.FirstEntity = obj.String("first_entity")
		m.FirstValue = obj.String("first_value")
		m.SecondEntity = obj.String("second_entity")
		m.SecondValue = obj.String("second_value")
	}
	return m
}

// RollLabelContentModel is one rich-content fragment attached to a pricing
// option value of a roll-label product.
type RollLabelContentModel struct {
	BaseModel
	ProductID                  string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_contents_key,priority:1"`
	StoreCode                  string         `gorm:"type:varchar(16);not null;uniqueIndex:idx_roll_label_contents_key,priority:2"`
	PricingOptionValueEntityID string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_contents_key,priority:3"`
	ContentType                string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_roll_label_contents_key,priority:4"`
	Content                    string         `gorm:"type:text"`
	RawJSON                    datatypes.JSON `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RollLabelContentModel) TableName() string {
	return "roll_label_contents"
}

// RollLabelContentFromElement maps one arr3 element of a roll-label payload.
// Elements without a pricing_product_option_value_entity_id are not persisted.
func RollLabelContentFromElement(productID, storeCode string, raw json.RawMessage) (*RollLabelContentModel, bool) {
	obj, ok := catalog.DecodeObject(raw)
	if !ok || !obj.Has("pricing_product_option_value_entity_id") {
		return nil, false
	}
	return &RollLabelContentModel{
		ProductID:                  productID,
		StoreCode:                  storeCode,
		PricingOptionValueEntityID: obj.String("pricing_product_option_value_entity_id"),
		ContentType:                obj.String("content_type"),
		Content:                    obj.String("content"),
		RawJSON:                    datatypes.JSON(raw),
	}, true
}
