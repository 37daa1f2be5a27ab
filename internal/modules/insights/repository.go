// Package insights persists scoring, risk and optimization outputs.
package insights

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/stockdash/backend/internal/domain"
)

// Kind identifies the stored output
type Kind string

const (
	KindScore        Kind = "score"
	KindRisk         Kind = "risk"
	KindOptimization Kind = "optimization"
)

// DefaultLimit caps Recent when the caller passes a non-positive limit
const DefaultLimit = 20

// MaxLimit is the largest page Recent returns
const MaxLimit = 200

// Insight is one stored output. Data holds a pointer to the decoded domain
// value: *domain.ScoreResult, *domain.RiskAssessment or *domain.OptimizationResult.
type Insight struct {
	ID        string      `json:"id"`
	Kind      Kind        `json:"kind"`
	Symbol    string      `json:"symbol,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	Data      interface{} `json:"data"`
}

// Repository stores insights in insights.db. It implements domain.InsightStore.
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates an insight repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repository", "insights").Logger(),
	}
}

// SaveScore stores a symbol score
func (r *Repository) SaveScore(ctx context.Context, result domain.ScoreResult) error {
	_, err := r.insert(ctx, KindScore, result.Symbol, result)
	return err
}

// SaveRisk stores a portfolio risk assessment
func (r *Repository) SaveRisk(ctx context.Context, assessment domain.RiskAssessment) error {
	_, err := r.insert(ctx, KindRisk, "", assessment)
	return err
}

// SaveOptimization stores a portfolio optimization
func (r *Repository) SaveOptimization(ctx context.Context, result domain.OptimizationResult) error {
	_, err := r.insert(ctx, KindOptimization, "", result)
	return err
}

func (r *Repository) insert(ctx context.Context, kind Kind, symbol string, v interface{}) (string, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s insight: %w", kind, err)
	}

	id := uuid.New().String()

	var sym sql.NullString
	if symbol != "" {
		sym = sql.NullString{String: strings.ToUpper(symbol), Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO insights (id, kind, symbol, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(kind), sym, payload, r.now().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert %s insight: %w", kind, err)
	}

	r.log.Debug().Str("id", id).Str("kind", string(kind)).Str("symbol", symbol).Msg("Stored insight")
	return id, nil
}

// Recent returns the newest insights for symbol, newest first
func (r *Repository) Recent(ctx context.Context, symbol string, limit int) ([]Insight, error) {
	return r.query(ctx,
		`SELECT id, kind, symbol, payload, created_at FROM insights
		 WHERE symbol = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		strings.ToUpper(strings.TrimSpace(symbol)), clampLimit(limit),
	)
}

// RecentByKind returns the newest insights of one kind, newest first
func (r *Repository) RecentByKind(ctx context.Context, kind Kind, limit int) ([]Insight, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("%w: unknown insight kind %q", domain.ErrInvalidInput, kind)
	}
	return r.query(ctx,
		`SELECT id, kind, symbol, payload, created_at FROM insights
		 WHERE kind = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		string(kind), clampLimit(limit),
	)
}

// DeleteOlderThan removes insights created before cutoff and returns the count
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM insights WHERE created_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old insights: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repository) query(ctx context.Context, q string, args ...interface{}) ([]Insight, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	out := []Insight{}
	for rows.Next() {
		var (
			in        Insight
			kind      string
			symbol    sql.NullString
			payload   []byte
			createdAt int64
		)
		if err := rows.Scan(&in.ID, &kind, &symbol, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}

		in.Kind = Kind(kind)
		in.Symbol = symbol.String
		in.CreatedAt = time.UnixMilli(createdAt).UTC()

		data, err := decode(in.Kind, payload)
		if err != nil {
			r.log.Warn().Err(err).Str("id", in.ID).Msg("Skipping undecodable insight")
			continue
		}
		in.Data = data
		out = append(out, in)
	}

	return out, rows.Err()
}

func decode(kind Kind, payload []byte) (interface{}, error) {
	var v interface{}
	switch kind {
	case KindScore:
		v = &domain.ScoreResult{}
	case KindRisk:
		v = &domain.RiskAssessment{}
	case KindOptimization:
		v = &domain.OptimizationResult{}
	default:
		return nil, fmt.Errorf("unknown insight kind %q", kind)
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (k Kind) valid() bool {
	return k == KindScore || k == KindRisk || k == KindOptimization
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
