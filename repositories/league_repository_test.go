package repositories

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/storage"
)

func newTestRepository(t *testing.T) (LeagueRepository, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	return NewBlobLeagueRepository(store, "db.json"), dir
}

func TestBlobLeagueRepository_loadMissing(t *testing.T) {
	repo, _ := newTestRepository(t)

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Teams)
	assert.Empty(t, doc.Matches)
	assert.Equal(t, 1, doc.NextTeamID)
	assert.Equal(t, 1, doc.NextMatchID)
}

func TestBlobLeagueRepository_loadEmptyFile(t *testing.T) {
	repo, dir := newTestRepository(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.json"), []byte("  \n"), 0o644))

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Teams)
}

func TestBlobLeagueRepository_loadLegacyDocument(t *testing.T) {
	repo, dir := newTestRepository(t)
	legacy := `{
  "teams": [
    {"id": 1, "name": "Alpha", "elo": 1510, "wins": 1, "losses": 0, "plus_minus": 3},
    {"id": 2, "name": "Bravo", "elo": 1490, "wins": 0, "losses": 1, "plus_minus": -3}
  ],
  "matches": [
    {"id": 4, "team_a_id": 1, "team_b_id": 2, "score_a": 10, "score_b": 7}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.json"), []byte(legacy), 0o644))

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Teams, 2)
	require.Len(t, doc.Matches, 1)
	assert.Equal(t, 3, doc.NextTeamID)
	assert.Equal(t, 5, doc.NextMatchID)
	require.NotNil(t, doc.Matches[0].ScoreA)
	assert.Equal(t, 10.0, *doc.Matches[0].ScoreA)
}

func TestBlobLeagueRepository_loadCorrupt(t *testing.T) {
	repo, dir := newTestRepository(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.json"), []byte("{not json"), 0o644))

	_, err := repo.Load(context.Background())
	require.Error(t, err)
}

func TestBlobLeagueRepository_saveAndBackup(t *testing.T) {
	ctx := context.Background()
	repo, dir := newTestRepository(t)

	at := time.UnixMilli(1700000000000)
	_, err := repo.Backup(ctx, at)
	require.ErrorIs(t, err, ErrLeagueNotFound)

	doc := models.NewLeagueDocument()
	doc.Teams = append(doc.Teams, models.Team{ID: 1, Name: "Alpha", Rating: 1500})
	doc.NextTeamID = 2
	require.NoError(t, repo.Save(ctx, doc))

	raw, err := os.ReadFile(filepath.Join(dir, "db.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"teams\": [")
	assert.Contains(t, string(raw), `"nextTeamId": 2`)

	name, err := repo.Backup(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, "db.json.bak.1700000000000", name)

	backup, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, raw, backup)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Teams, 1)
	assert.Equal(t, "Alpha", loaded.Teams[0].Name)
}
