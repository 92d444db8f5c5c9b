package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"claritax/internal/port"
)

type insightRepo struct {
	db *sqlx.DB
}

// NewInsightRepo creates a new PostgreSQL-backed InsightRepository.
func NewInsightRepo(db *sqlx.DB) port.InsightRepository {
	return &insightRepo{db: db}
}

func (r *insightRepo) GetShortForm(ctx context.Context, cst, classCode string) (string, error) {
	return r.get(ctx, "tax_insights_short", cst, classCode)
}

func (r *insightRepo) GetLongForm(ctx context.Context, cst, classCode string) (string, error) {
	return r.get(ctx, "tax_insights_long", cst, classCode)
}

func (r *insightRepo) get(ctx context.Context, table, cst, classCode string) (string, error) {
	var text string
	err := r.db.GetContext(ctx, &text,
		`SELECT insight_text FROM `+table+` WHERE cst = $1 AND c_class = $2`,
		cst, classCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("insightRepo.get %s: %w", table, err)
	}
	return text, nil
}
