package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"shiftbot/core"
	"shiftbot/models"
)

type PostgresWarningsRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for warnings table
var warningsColumns = []string{
	"id",
	"discord_user_id",
	"moderator_id",
	"reason",
	"created_at",
}

func NewPostgresWarningsRepository(db *sqlx.DB, schema string) *PostgresWarningsRepository {
	return &PostgresWarningsRepository{db: db, schema: schema}
}

// AddWarning records a new warning against a Discord user
func (r *PostgresWarningsRepository) AddWarning(
	ctx context.Context,
	discordUserID, moderatorID, reason string,
) (*models.Warning, error) {
	returningStr := strings.Join(warningsColumns, ", ")
	id := core.NewID("w")

	query := fmt.Sprintf(`
		INSERT INTO %s.warnings (id, discord_user_id, moderator_id, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING %s`,
		r.schema, returningStr)

	warning := &models.Warning{}
	if err := r.db.QueryRowxContext(ctx, query, id, discordUserID, moderatorID, reason).StructScan(warning); err != nil {
		return nil, fmt.Errorf("failed to add warning: %w", err)
	}

	return warning, nil
}

// ListWarnings returns all warnings for a Discord user, newest first
func (r *PostgresWarningsRepository) ListWarnings(
	ctx context.Context,
	discordUserID string,
) ([]models.Warning, error) {
	returningStr := strings.Join(warningsColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.warnings
		WHERE discord_user_id = $1
		ORDER BY created_at DESC`,
		returningStr, r.schema)

	warnings := []models.Warning{}
	if err := r.db.SelectContext(ctx, &warnings, query, discordUserID); err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}

	return warnings, nil
}

// RemoveWarning deletes a single warning by ID, scoped to the warned user
func (r *PostgresWarningsRepository) RemoveWarning(
	ctx context.Context,
	id, discordUserID string,
) error {
	query := fmt.Sprintf(`
		DELETE FROM %s.warnings
		WHERE id = $1 AND discord_user_id = $2`,
		r.schema)

	result, err := r.db.ExecContext(ctx, query, id, discordUserID)
	if err != nil {
		return fmt.Errorf("failed to remove warning: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removed warning: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("warning %s for user %s: %w", id, discordUserID, core.ErrNotFound)
	}

	return nil
}

// CountWarnings returns the number of warnings on record for a Discord user
func (r *PostgresWarningsRepository) CountWarnings(
	ctx context.Context,
	discordUserID string,
) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.warnings
		WHERE discord_user_id = $1`,
		r.schema)

	var count int
	if err := r.db.GetContext(ctx, &count, query, discordUserID); err != nil {
		return 0, fmt.Errorf("failed to count warnings: %w", err)
	}

	return count, nil
}
