package catalog

import "context"

// TableCounts tracks how many rows an operation inserted versus updated.
type TableCounts struct {
	Inserted int
	Updated  int
}

// PersistResult carries per-table insert/update counts, keyed by table name.
type PersistResult map[string]TableCounts

// Add records one upserted row for table.
func (r PersistResult) Add(table string, inserted bool) {
	c := r[table]
	if inserted {
		c.Inserted++
	} else {
		c.Updated++
	}
	r[table] = c
}

// Merge folds other into r.
func (r PersistResult) Merge(other PersistResult) {
	for table, c := range other {
		cur := r[table]
		cur.Inserted += c.Inserted
		cur.Updated += c.Updated
		r[table] = cur
	}
}

// IngestRepository persists classified detail payloads. Persist operations
// run inside one transaction per (product, store) pair and clear the other
// family's rows for that pair before writing, so a pair never holds rows in
// both families.
type IngestRepository interface {
	UpsertProduct(ctx context.Context, ref ProductRef) (PersistResult, error)
	PersistRegular(ctx context.Context, productID, storeCode string, d Detail) (PersistResult, error)
	PersistRollLabel(ctx context.Context, productID, storeCode string, d Detail) (PersistResult, error)
}
