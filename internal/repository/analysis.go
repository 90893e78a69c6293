package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medbillguard/medbillguard/internal/common"
	"github.com/medbillguard/medbillguard/internal/pipeline"
)

// AnalysisRecord is the persisted view of one completed bill analysis.
type AnalysisRecord struct {
	ID               uuid.UUID
	HospitalName     string
	BillNumber       string
	BillDate         string
	ParsingMethod    string
	OCRConfidence    float32
	TotalBilled      float64
	TotalOvercharge  float64
	SavingsPercent   float64
	ItemCount        int
	OverchargedCount int
	CreatedAt        time.Time
}

// AnalysisRepository stores analysis history in Postgres. Persistence is
// optional: callers skip construction entirely when no DSN is configured.
type AnalysisRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAnalysisRepository(pool *pgxpool.Pool, logger *slog.Logger) *AnalysisRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisRepository{pool: pool, logger: logger}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS bill_analyses (
	id                UUID PRIMARY KEY,
	hospital_name     TEXT NOT NULL,
	bill_number       TEXT NOT NULL DEFAULT '',
	bill_date         TEXT NOT NULL DEFAULT '',
	parsing_method    TEXT NOT NULL,
	ocr_confidence    REAL NOT NULL DEFAULT 0,
	total_billed      DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_overcharge  DOUBLE PRECISION NOT NULL DEFAULT 0,
	savings_percent   DOUBLE PRECISION NOT NULL DEFAULT 0,
	item_count        INTEGER NOT NULL DEFAULT 0,
	overcharged_count INTEGER NOT NULL DEFAULT 0,
	items             JSONB NOT NULL DEFAULT '[]',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bill_analyses_created_at_idx ON bill_analyses (created_at DESC);
`

// EnsureSchema creates the history table when it does not exist yet.
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return common.NewAppError("DB_MIGRATE", "create bill_analyses table", err)
	}
	return nil
}

// Save persists one finished analysis, items included.
func (r *AnalysisRepository) Save(ctx context.Context, res pipeline.AnalysisResult) error {
	items, err := json.Marshal(res.Items)
	if err != nil {
		return common.NewAppError("DB_ENCODE", "marshal analysis items", err)
	}

	const q = `
INSERT INTO bill_analyses (
	id, hospital_name, bill_number, bill_date, parsing_method, ocr_confidence,
	total_billed, total_overcharge, savings_percent, item_count, overcharged_count,
	items, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err = r.pool.Exec(ctx, q,
		res.AnalysisID,
		res.Header.HospitalName,
		res.Header.BillNumber,
		res.Header.BillDate,
		string(res.ParsingMethod),
		res.OCRConfidence,
		res.Summary.TotalBilled,
		res.Summary.TotalOvercharge,
		res.Summary.SavingsPercent,
		len(res.Items),
		res.Summary.OverchargedCount,
		items,
		res.AnalyzedAt,
	)
	if err != nil {
		r.logger.Error("repository.analysis.save_failed", "analysis_id", res.AnalysisID, "error", err)
		return common.NewAppError("DB_INSERT", "save analysis", err)
	}
	r.logger.Info("repository.analysis.saved", "analysis_id", res.AnalysisID)
	return nil
}

// List returns the most recent analyses, newest first.
func (r *AnalysisRepository) List(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	const q = `
SELECT id, hospital_name, bill_number, bill_date, parsing_method, ocr_confidence,
       total_billed, total_overcharge, savings_percent, item_count, overcharged_count,
       created_at
FROM bill_analyses
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, common.NewAppError("DB_QUERY", "list analyses", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(
			&rec.ID, &rec.HospitalName, &rec.BillNumber, &rec.BillDate,
			&rec.ParsingMethod, &rec.OCRConfidence,
			&rec.TotalBilled, &rec.TotalOvercharge, &rec.SavingsPercent,
			&rec.ItemCount, &rec.OverchargedCount, &rec.CreatedAt,
		); err != nil {
			return nil, common.NewAppError("DB_SCAN", "scan analysis row", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
