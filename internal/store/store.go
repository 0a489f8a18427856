package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/pkg/database"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Store persists finished cycles to Postgres for history queries. It is
// optional: the pipeline runs identically without a DATABASE_URL, writing
// only the file artifacts.
type Store struct {
	db     *database.DB
	logger *logger.Logger
}

// New creates a cycle store over an established pool.
func New(db *database.DB, log *logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log,
	}
}

// Migrate creates the history tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS scan_cycles (
			cycle_id     TEXT PRIMARY KEY,
			started_at   TIMESTAMPTZ NOT NULL,
			finished_at  TIMESTAMPTZ NOT NULL,
			bias_score   DOUBLE PRECISION NOT NULL,
			bias_label   TEXT NOT NULL,
			universe     INTEGER NOT NULL,
			scored       INTEGER NOT NULL,
			skipped      INTEGER NOT NULL,
			summary      JSONB
		);
		CREATE TABLE IF NOT EXISTS scan_opportunities (
			cycle_id     TEXT NOT NULL REFERENCES scan_cycles(cycle_id) ON DELETE CASCADE,
			symbol       TEXT NOT NULL,
			sector       TEXT NOT NULL,
			skipped      BOOLEAN NOT NULL,
			skip_reason  TEXT,
			score        DOUBLE PRECISION,
			direction    TEXT,
			confidence   DOUBLE PRECISION,
			regulatory   BOOLEAN NOT NULL DEFAULT FALSE,
			sector_risk  TEXT,
			detail       JSONB,
			PRIMARY KEY (cycle_id, symbol)
		);
	`)
	if err != nil {
		return fmt.Errorf("migrate cycle tables: %w", err)
	}
	return nil
}

// SaveCycle writes one finished cycle and its per-instrument outcomes in a
// single transaction.
func (s *Store) SaveCycle(ctx context.Context, report *contracts.CycleReport) error {
	summary, err := json.Marshal(report.FactorView)
	if err != nil {
		return fmt.Errorf("marshal factor view: %w", err)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cycle transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO scan_cycles
			(cycle_id, started_at, finished_at, bias_score, bias_label, universe, scored, skipped, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (cycle_id) DO NOTHING`,
		report.CycleID, report.StartedAt, report.FinishedAt,
		report.MarketBias.Score, string(report.MarketBias.Label),
		report.Universe, report.Scored, report.SkippedSize, summary,
	)
	if err != nil {
		return fmt.Errorf("insert cycle %s: %w", report.CycleID, err)
	}

	for _, outcome := range report.Outcomes {
		if err := s.insertOutcome(ctx, tx, report.CycleID, outcome); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cycle %s: %w", report.CycleID, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"cycle_id": report.CycleID,
		"outcomes": len(report.Outcomes),
	}).Info("Cycle persisted")

	return nil
}

func (s *Store) insertOutcome(ctx context.Context, tx pgx.Tx, cycleID string, outcome contracts.InstrumentOutcome) error {
	detail, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome %s: %w", outcome.Symbol, err)
	}

	var (
		score, confidence *float64
		direction         *string
		regulatory        bool
		sectorRisk        *string
	)
	if outcome.Scored() {
		score = &outcome.Opportunity.Score
		regulatory = outcome.Opportunity.Regulatory
		risk := string(outcome.Opportunity.SectorRisk)
		sectorRisk = &risk
	}
	if outcome.Prediction != nil {
		confidence = &outcome.Prediction.Confidence
		dir := string(outcome.Prediction.Direction)
		direction = &dir
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO scan_opportunities
			(cycle_id, symbol, sector, skipped, skip_reason, score, direction, confidence, regulatory, sector_risk, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (cycle_id, symbol) DO NOTHING`,
		cycleID, outcome.Symbol, outcome.Sector, outcome.Skipped, outcome.SkipReason,
		score, direction, confidence, regulatory, sectorRisk, detail,
	)
	if err != nil {
		return fmt.Errorf("insert outcome %s: %w", outcome.Symbol, err)
	}
	return nil
}

// CycleSummary is one row of the persisted cycle history.
type CycleSummary struct {
	CycleID    string    `json:"cycle_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	BiasScore  float64   `json:"bias_score"`
	BiasLabel  string    `json:"bias_label"`
	Universe   int       `json:"universe"`
	Scored     int       `json:"scored"`
	Skipped    int       `json:"skipped"`
}

// RecentCycles returns the latest persisted cycles, newest first.
func (s *Store) RecentCycles(ctx context.Context, limit int) ([]CycleSummary, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT cycle_id, started_at, finished_at, bias_score, bias_label, universe, scored, skipped
		FROM scan_cycles
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent cycles: %w", err)
	}
	defer rows.Close()

	var out []CycleSummary
	for rows.Next() {
		var c CycleSummary
		if err := rows.Scan(&c.CycleID, &c.StartedAt, &c.FinishedAt,
			&c.BiasScore, &c.BiasLabel, &c.Universe, &c.Scored, &c.Skipped); err != nil {
			return nil, fmt.Errorf("scan cycle row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
