package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storedLeague = `{
  "teams": [
    {"id": 1, "name": "Alpha", "elo": 1510, "wins": 1, "losses": 0, "plus_minus": 3},
    {"id": 2, "name": "Bravo", "elo": 1490, "wins": 0, "losses": 1, "plus_minus": -3}
  ],
  "matches": [
    {"id": 1, "winner_id": 1, "loser_id": 2, "loser_score": 7, "winner_score": 10}
  ],
  "nextTeamId": 3,
  "nextMatchId": 2
}`

func setupLeague(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LEAGUE_KEY", "db.json")
	t.Setenv("LOG_LEVEL", "error")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.json"), []byte(storedLeague), 0o644))
	return dir
}

func TestRun_requiresConfirmation(t *testing.T) {
	dir := setupLeague(t)

	err := run(false, time.Second, &bytes.Buffer{})
	require.ErrorIs(t, err, errNotConfirmed)

	raw, err := os.ReadFile(filepath.Join(dir, "db.json"))
	require.NoError(t, err)
	assert.Equal(t, storedLeague, string(raw))
}

func TestRun_clearsWithBackup(t *testing.T) {
	dir := setupLeague(t)

	var out bytes.Buffer
	require.NoError(t, run(true, 5*time.Second, &out))
	assert.Contains(t, out.String(), "removed 1 matches")

	backups, err := filepath.Glob(filepath.Join(dir, "db.json.bak.*"))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	raw, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, storedLeague, string(raw))

	cleared, err := os.ReadFile(filepath.Join(dir, "db.json"))
	require.NoError(t, err)
	assert.Contains(t, string(cleared), `"matches": []`)
	assert.Contains(t, string(cleared), `"elo": 1500`)
	assert.Contains(t, string(cleared), `"nextMatchId": 2`)
}
