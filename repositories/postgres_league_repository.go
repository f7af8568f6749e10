package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/fidel-league/models"
)

type postgresLeagueRepository struct {
	db   *sql.DB
	name string
}

// NewPostgresLeagueRepository stores the league as one JSONB row keyed by name
// in the league_documents table (see db.EnsureSchema).
func NewPostgresLeagueRepository(db *sql.DB, name string) LeagueRepository {
	return &postgresLeagueRepository{db: db, name: name}
}

func (r *postgresLeagueRepository) Load(ctx context.Context) (*models.LeagueDocument, error) {
	query := `SELECT document FROM league_documents WHERE name = $1`

	var data []byte
	err := r.db.QueryRowContext(ctx, query, r.name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewLeagueDocument(), nil
		}
		return nil, fmt.Errorf("failed to load league document %q: %w", r.name, err)
	}
	return decodeDocument(data)
}

func (r *postgresLeagueRepository) Save(ctx context.Context, doc *models.LeagueDocument) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO league_documents (name, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, r.name, data); err != nil {
		return fmt.Errorf("failed to save league document %q: %w", r.name, err)
	}
	return nil
}

func (r *postgresLeagueRepository) Backup(ctx context.Context, at time.Time) (string, error) {
	dst := backupName(r.name, at)
	query := `
		INSERT INTO league_documents (name, document, updated_at)
		SELECT $2, document, NOW() FROM league_documents WHERE name = $1`

	result, err := r.db.ExecContext(ctx, query, r.name, dst)
	if err != nil {
		return "", fmt.Errorf("failed to back up league document %q: %w", r.name, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rows == 0 {
		return "", ErrLeagueNotFound
	}
	return dst, nil
}
