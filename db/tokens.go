package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	// necessary import to wire up the postgres driver
	_ "github.com/lib/pq"

	"shiftbot/models"
)

type PostgresTokensRepository struct {
	db     *sqlx.DB
	schema string
}

// Column names for pocketbase_tokens table
var tokensColumns = []string{
	"discord_user_id",
	"auth_token",
	"created_at",
	"updated_at",
}

func NewPostgresTokensRepository(db *sqlx.DB, schema string) *PostgresTokensRepository {
	return &PostgresTokensRepository{db: db, schema: schema}
}

// SetToken stores or replaces the PocketBase auth key linked to a Discord user
func (r *PostgresTokensRepository) SetToken(
	ctx context.Context,
	discordUserID, authToken string,
) (*models.PocketBaseToken, error) {
	returningStr := strings.Join(tokensColumns, ", ")

	query := fmt.Sprintf(`
		INSERT INTO %s.pocketbase_tokens (discord_user_id, auth_token, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (discord_user_id)
		DO UPDATE SET auth_token = EXCLUDED.auth_token, updated_at = NOW()
		RETURNING %s`,
		r.schema, returningStr)

	token := &models.PocketBaseToken{}
	if err := r.db.QueryRowxContext(ctx, query, discordUserID, authToken).StructScan(token); err != nil {
		return nil, fmt.Errorf("failed to set pocketbase token: %w", err)
	}

	return token, nil
}

// GetToken returns the linked token for a Discord user, nil when none is linked
func (r *PostgresTokensRepository) GetToken(
	ctx context.Context,
	discordUserID string,
) (*models.PocketBaseToken, error) {
	returningStr := strings.Join(tokensColumns, ", ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s.pocketbase_tokens
		WHERE discord_user_id = $1`,
		returningStr, r.schema)

	token := &models.PocketBaseToken{}
	err := r.db.QueryRowxContext(ctx, query, discordUserID).StructScan(token)
	if err != nil {
		if strings.Contains(err.Error(), "no rows") {
			return nil, nil // No token linked
		}
		return nil, fmt.Errorf("failed to get pocketbase token: %w", err)
	}

	return token, nil
}

// ClearToken removes the linked token for a Discord user. Clearing an unlinked
// user is not an error.
func (r *PostgresTokensRepository) ClearToken(ctx context.Context, discordUserID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s.pocketbase_tokens
		WHERE discord_user_id = $1`,
		r.schema)

	if _, err := r.db.ExecContext(ctx, query, discordUserID); err != nil {
		return fmt.Errorf("failed to clear pocketbase token: %w", err)
	}

	return nil
}
