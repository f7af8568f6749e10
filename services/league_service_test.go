package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/fidel-league/league"
	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/repositories"
	"github.com/Dosada05/fidel-league/storage"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls [][]models.Team
}

func (p *recordingPublisher) PublishStandings(teams []models.Team) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, teams)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type mockLeagueRepository struct {
	mock.Mock
}

func (m *mockLeagueRepository) Load(ctx context.Context) (*models.LeagueDocument, error) {
	args := m.Called(ctx)
	doc, _ := args.Get(0).(*models.LeagueDocument)
	return doc, args.Error(1)
}

func (m *mockLeagueRepository) Save(ctx context.Context, doc *models.LeagueDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockLeagueRepository) Backup(ctx context.Context, at time.Time) (string, error) {
	args := m.Called(ctx, at)
	return args.String(0), args.Error(1)
}

// gatedRepository holds the first Load after arm until the gate is closed.
// The document is read before blocking, so a held load returns what was
// stored when it started.
type gatedRepository struct {
	repositories.LeagueRepository

	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	gate    chan struct{}
	ctxErr  error
}

func (r *gatedRepository) arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = true
	r.entered = make(chan struct{})
	r.gate = make(chan struct{})
}

func (r *gatedRepository) Load(ctx context.Context) (*models.LeagueDocument, error) {
	r.mu.Lock()
	held := r.armed
	r.armed = false
	r.mu.Unlock()

	doc, err := r.LeagueRepository.Load(ctx)
	if held {
		close(r.entered)
		<-r.gate
		r.mu.Lock()
		r.ctxErr = ctx.Err()
		r.mu.Unlock()
	}
	return doc, err
}

func newGatedService(t *testing.T) (LeagueService, *gatedRepository) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	repo := &gatedRepository{LeagueRepository: repositories.NewBlobLeagueRepository(store, "db.json")}
	return NewLeagueService(repo, &fixedClock{now: testNow}, nil, discardLogger()), repo
}

var testNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFileService(t *testing.T) (LeagueService, repositories.LeagueRepository, *fixedClock, *recordingPublisher) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	repo := repositories.NewBlobLeagueRepository(store, "db.json")
	clk := &fixedClock{now: testNow}
	pub := &recordingPublisher{}
	return NewLeagueService(repo, clk, pub, discardLogger()), repo, clk, pub
}

func TestLeagueService_recordMatchPersists(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, pub := newFileService(t)

	a, err := svc.AddTeam(ctx, "Alpha")
	require.NoError(t, err)
	b, err := svc.AddTeam(ctx, "Bravo")
	require.NoError(t, err)

	res, err := svc.RecordMatch(ctx, league.MatchInput{WinnerID: a.ID, LoserID: b.ID, LoserScore: 7})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Delta.Winner)
	assert.Equal(t, -10.0, res.Delta.Loser)
	require.Len(t, res.Standings, 2)
	assert.Equal(t, a.ID, res.Standings[0].ID)
	assert.Equal(t, 1510.0, res.Standings[0].Rating)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored.Matches, 1)
	assert.Equal(t, res.Match.ID, stored.Matches[0].ID)
	assert.Equal(t, 3, stored.Teams[0].PointDifferential)
	assert.Equal(t, -3, stored.Teams[1].PointDifferential)

	assert.Equal(t, 3, pub.count())
}

func TestLeagueService_validationLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, pub := newFileService(t)

	a, err := svc.AddTeam(ctx, "Alpha")
	require.NoError(t, err)
	_, err = svc.AddTeam(ctx, "alpha ")
	require.ErrorIs(t, err, league.ErrTeamNameConflict)
	require.ErrorIs(t, err, league.ErrValidationFailed)

	_, err = svc.RecordMatch(ctx, league.MatchInput{WinnerID: a.ID, LoserID: 99, LoserScore: 3})
	require.ErrorIs(t, err, league.ErrMatchTeamNotFound)

	_, err = svc.DeleteMatch(ctx, 42)
	require.ErrorIs(t, err, league.ErrMatchNotFound)
	require.ErrorIs(t, err, league.ErrNotFound)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored.Teams, 1)
	assert.Empty(t, stored.Matches)
	assert.Equal(t, 1, pub.count())
}

func TestLeagueService_deleteReplays(t *testing.T) {
	ctx := context.Background()
	svc, _, clk, _ := newFileService(t)

	a, _ := svc.AddTeam(ctx, "Alpha")
	b, _ := svc.AddTeam(ctx, "Bravo")
	c, _ := svc.AddTeam(ctx, "Charlie")

	m1, err := svc.RecordMatch(ctx, league.MatchInput{WinnerID: a.ID, LoserID: b.ID, LoserScore: 4})
	require.NoError(t, err)
	clk.Add(time.Minute)
	m2, err := svc.RecordMatch(ctx, league.MatchInput{WinnerID: b.ID, LoserID: c.ID, LoserScore: 9})
	require.NoError(t, err)
	clk.Add(time.Minute)
	_, err = svc.RecordMatch(ctx, league.MatchInput{WinnerID: c.ID, LoserID: a.ID, LoserScore: 2})
	require.NoError(t, err)

	_, err = svc.DeleteMatch(ctx, m2.Match.ID)
	require.NoError(t, err)

	// Same history without the deleted match, built directly.
	want := models.NewLeagueDocument()
	for i, name := range []string{"Alpha", "Bravo", "Charlie"} {
		_, err := league.AddTeam(want, name, testNow.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	_, err = league.RecordMatch(want, league.MatchInput{WinnerID: a.ID, LoserID: b.ID, LoserScore: 4}, testNow)
	require.NoError(t, err)
	_, err = league.RecordMatch(want, league.MatchInput{WinnerID: c.ID, LoserID: a.ID, LoserScore: 2}, testNow.Add(2*time.Minute))
	require.NoError(t, err)

	teams, err := svc.ListTeams(ctx)
	require.NoError(t, err)
	got := make(map[int]float64)
	for _, tm := range teams {
		got[tm.ID] = tm.Rating
	}
	for _, tm := range want.Teams {
		assert.Equal(t, tm.Rating, got[tm.ID], "team %d", tm.ID)
	}

	matches, err := svc.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.NotEqual(t, m2.Match.ID, matches[0].ID)
	assert.Equal(t, m1.Match.ID, matches[1].ID)
}

func TestLeagueService_clearMatchesBacksUp(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newFileService(t)

	a, _ := svc.AddTeam(ctx, "Alpha")
	b, _ := svc.AddTeam(ctx, "Bravo")
	_, err := svc.RecordMatch(ctx, league.MatchInput{WinnerID: a.ID, LoserID: b.ID, LoserScore: 5})
	require.NoError(t, err)

	res, err := svc.ClearMatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, "db.json.bak.1743508800000", res.Backup)

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored.Matches)
	for _, tm := range stored.Teams {
		assert.Equal(t, 1500.0, tm.Rating)
		assert.Zero(t, tm.Wins)
		assert.Zero(t, tm.Losses)
	}
}

func TestLeagueService_previewDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := &mockLeagueRepository{}
	doc := models.NewLeagueDocument()
	_, err := league.AddTeam(doc, "Alpha", testNow)
	require.NoError(t, err)
	_, err = league.AddTeam(doc, "Bravo", testNow)
	require.NoError(t, err)
	repo.On("Load", mock.Anything).Return(doc, nil)

	svc := NewLeagueService(repo, &fixedClock{now: testNow}, nil, discardLogger())
	p, err := svc.PreviewMatch(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Result.Winner)
	assert.Equal(t, 1510.0, p.Result.NewWinnerRating)

	_, err = svc.PreviewMatch(ctx, 1, 1)
	require.ErrorIs(t, err, league.ErrMatchSameTeam)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeagueService_persistenceFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")

	t.Run("load", func(t *testing.T) {
		repo := &mockLeagueRepository{}
		repo.On("Load", mock.Anything).Return(nil, boom)
		svc := NewLeagueService(repo, &fixedClock{now: testNow}, nil, discardLogger())

		_, err := svc.AddTeam(ctx, "Alpha")
		require.ErrorIs(t, err, ErrPersistenceFailed)
		require.ErrorIs(t, err, boom)

		_, err = svc.ListTeams(ctx)
		require.ErrorIs(t, err, ErrPersistenceFailed)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save", func(t *testing.T) {
		repo := &mockLeagueRepository{}
		pub := &recordingPublisher{}
		repo.On("Load", mock.Anything).Return(models.NewLeagueDocument(), nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(boom)
		svc := NewLeagueService(repo, &fixedClock{now: testNow}, pub, discardLogger())

		_, err := svc.AddTeam(ctx, "Alpha")
		require.ErrorIs(t, err, ErrPersistenceFailed)
		require.ErrorIs(t, err, ErrLeagueSaveFailed)
		assert.Zero(t, pub.count())
	})

	t.Run("backup", func(t *testing.T) {
		repo := &mockLeagueRepository{}
		repo.On("Load", mock.Anything).Return(models.NewLeagueDocument(), nil)
		repo.On("Backup", mock.Anything, testNow).Return("", boom)
		svc := NewLeagueService(repo, &fixedClock{now: testNow}, nil, discardLogger())

		_, err := svc.ClearMatches(ctx)
		require.ErrorIs(t, err, ErrPersistenceFailed)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestLeagueService_concurrentRecordsAreSerialised(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newFileService(t)

	a, _ := svc.AddTeam(ctx, "Alpha")
	b, _ := svc.AddTeam(ctx, "Bravo")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := league.MatchInput{WinnerID: a.ID, LoserID: b.ID, LoserScore: float64(i % 10)}
			if i%2 == 1 {
				in.WinnerID, in.LoserID = b.ID, a.ID
			}
			_, err := svc.RecordMatch(ctx, in)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, stored.Matches, 20)

	before := stored.Clone()
	league.Recompute(stored)
	for i := range stored.Teams {
		assert.Equal(t, before.Teams[i].Rating, stored.Teams[i].Rating)
		assert.Equal(t, before.Teams[i].Wins+before.Teams[i].Losses, 20)
	}
}

func TestLeagueService_readAfterWriteSeesTheWrite(t *testing.T) {
	ctx := context.Background()
	svc, repo := newGatedService(t)

	_, err := svc.AddTeam(ctx, "Alpha")
	require.NoError(t, err)

	repo.arm()
	early := make(chan []models.Team, 1)
	go func() {
		teams, err := svc.ListTeams(ctx)
		assert.NoError(t, err)
		early <- teams
	}()
	<-repo.entered

	_, err = svc.AddTeam(ctx, "Bravo")
	require.NoError(t, err)

	late := make(chan []models.Team, 1)
	go func() {
		teams, err := svc.ListTeams(ctx)
		assert.NoError(t, err)
		late <- teams
	}()

	select {
	case teams := <-late:
		assert.Len(t, teams, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("read after a completed write waited on an older load")
	}

	close(repo.gate)
	assert.Len(t, <-early, 1)
}

func TestLeagueService_cancelledReaderDoesNotFailOthers(t *testing.T) {
	svc, repo := newGatedService(t)

	_, err := svc.AddTeam(context.Background(), "Alpha")
	require.NoError(t, err)

	repo.arm()
	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := svc.ListTeams(ctx)
		cancelled <- err
	}()
	<-repo.entered

	cancel()
	select {
	case err := <-cancelled:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled reader did not return")
	}

	other := make(chan []models.Team, 1)
	go func() {
		teams, err := svc.ListTeams(context.Background())
		assert.NoError(t, err)
		other <- teams
	}()

	close(repo.gate)
	assert.Len(t, <-other, 1)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.NoError(t, repo.ctxErr, "shared load must not see the caller's cancellation")
}
