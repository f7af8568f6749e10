package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/storage"
)

var ErrLeagueNotFound = errors.New("league document not found")

// LeagueRepository loads and saves a whole league document at once. Load
// returns an empty document when nothing has been stored yet.
type LeagueRepository interface {
	Load(ctx context.Context) (*models.LeagueDocument, error)
	Save(ctx context.Context, doc *models.LeagueDocument) error
	// Backup copies the stored document aside and returns where it went.
	Backup(ctx context.Context, at time.Time) (string, error)
}

type blobLeagueRepository struct {
	store storage.BlobStore
	key   string
}

func NewBlobLeagueRepository(store storage.BlobStore, key string) LeagueRepository {
	return &blobLeagueRepository{store: store, key: key}
}

func (r *blobLeagueRepository) Load(ctx context.Context) (*models.LeagueDocument, error) {
	data, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return models.NewLeagueDocument(), nil
		}
		return nil, fmt.Errorf("failed to load league document %s: %w", r.key, err)
	}
	return decodeDocument(data)
}

func (r *blobLeagueRepository) Save(ctx context.Context, doc *models.LeagueDocument) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, r.key, "application/json", data); err != nil {
		return fmt.Errorf("failed to save league document %s: %w", r.key, err)
	}
	return nil
}

func (r *blobLeagueRepository) Backup(ctx context.Context, at time.Time) (string, error) {
	dst := backupName(r.key, at)
	if err := r.store.Copy(ctx, r.key, dst); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", ErrLeagueNotFound
		}
		return "", fmt.Errorf("failed to back up league document %s: %w", r.key, err)
	}
	return dst, nil
}

func decodeDocument(data []byte) (*models.LeagueDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.NewLeagueDocument(), nil
	}

	var doc models.LeagueDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode league document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

func encodeDocument(doc *models.LeagueDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode league document: %w", err)
	}
	return data, nil
}

func backupName(key string, at time.Time) string {
	return key + ".bak." + strconv.FormatInt(at.UnixMilli(), 10)
}
