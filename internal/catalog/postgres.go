package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

const referenceDDL = `
CREATE TABLE IF NOT EXISTS reference_prices (
	category_name  TEXT NOT NULL,
	item_name      TEXT NOT NULL,
	item_code      TEXT NOT NULL DEFAULT '',
	ceiling_price  DOUBLE PRECISION NOT NULL,
	unit           TEXT NOT NULL DEFAULT '',
	source         TEXT NOT NULL DEFAULT '',
	published_date TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (category_name, item_name)
);
`

// EnsureReferenceSchema creates the reference price table when absent.
func EnsureReferenceSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, referenceDDL); err != nil {
		return fmt.Errorf("create reference_prices table: %w", err)
	}
	return nil
}

// ImportEntries upserts entries into the reference price table and returns
// how many rows were written. Invalid entries are skipped, same as New.
func ImportEntries(ctx context.Context, pool *pgxpool.Pool, entries []Entry, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	const q = `
INSERT INTO reference_prices (
	category_name, item_name, item_code, ceiling_price, unit, source, published_date
) VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (category_name, item_name) DO UPDATE SET
	item_code      = EXCLUDED.item_code,
	ceiling_price  = EXCLUDED.ceiling_price,
	unit           = EXCLUDED.unit,
	source         = EXCLUDED.source,
	published_date = EXCLUDED.published_date`

	written := 0
	for _, e := range entries {
		if e.ItemName == "" || e.CeilingPrice <= 0 {
			logger.Warn("catalog.import.skipped", "item", e.ItemName, "ceiling", e.CeilingPrice)
			continue
		}
		if _, err := pool.Exec(ctx, q,
			e.CategoryName, e.ItemName, e.ItemCode, e.CeilingPrice,
			e.Unit, e.Source, e.PublishedDate,
		); err != nil {
			return written, fmt.Errorf("import %q: %w", e.ItemName, err)
		}
		written++
	}
	logger.Info("catalog.import.ok", "rows", written, "skipped", len(entries)-written)
	return written, nil
}

// LoadPostgres builds the catalog from the reference price table.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*Catalog, error) {
	const q = `
SELECT category_name, item_name, item_code, ceiling_price, unit, source, published_date
FROM reference_prices
ORDER BY category_name, item_name`

	rows, err := pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query reference prices: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.CategoryName, &e.ItemName, &e.ItemCode, &e.CeilingPrice,
			&e.Unit, &e.Source, &e.PublishedDate,
		); err != nil {
			return nil, fmt.Errorf("scan reference price row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reference prices: %w", err)
	}
	return New(entries, logger)
}
