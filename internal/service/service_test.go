package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/sabo-arena/arena-bracket/internal/bracket"
	"github.com/sabo-arena/arena-bracket/internal/middleware"
	"github.com/sabo-arena/arena-bracket/internal/storage"
	"github.com/sabo-arena/arena-bracket/internal/store"
	users "github.com/sabo-arena/arena-bracket/internal/user"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations/sqlite3",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

type published struct {
	tournamentID uuid.UUID
	payload      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishTournament(id uuid.UUID, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{tournamentID: id, payload: payload})
}

func (p *recordingPublisher) last() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type memoryUploader struct {
	objects map[string][]byte
}

func (u *memoryUploader) Upload(_ context.Context, key string, _ string, r io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return storage.PublicURL("https://cdn.saboarena.vn", key)
}

type testEnv struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	publisher   *recordingPublisher
	tournaments *TournamentService
	matches     *MatchService
	players     *PlayerService
	uploader    *memoryUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		db:        db,
		store:     store.NewTournamentStore(db),
		publisher: &recordingPublisher{},
		uploader:  &memoryUploader{objects: map[string][]byte{}},
	}
	env.tournaments = NewTournamentService(db, env.store, env.publisher)
	env.matches = NewMatchService(db, env.store, env.tournaments)
	env.players = NewPlayerService(env.store, env.uploader, env.tournaments)
	return env
}

func guestContext() context.Context {
	return middleware.WithUser(context.Background(), &users.User{ID: users.GuestID, Username: "Guest Operator"})
}

func playerInputs(n int) []PlayerInput {
	inputs := make([]PlayerInput, 0, n)
	for i := 0; i < n; i++ {
		inputs = append(inputs, PlayerInput{Name: fmt.Sprintf("Player %d", i+1)})
	}
	return inputs
}

func (env *testEnv) createTournament(t *testing.T, ctx context.Context, n int, format bracket.Format) uuid.UUID {
	t.Helper()
	id, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:    "SABO Open",
		Format:  format,
		RaceTo:  "7",
		Players: playerInputs(n),
	})
	require.NoError(t, err)
	return id
}

// nextMatch returns the first match an operator could decide right now.
func (env *testEnv) nextMatch(t *testing.T, id uuid.UUID) (*TournamentData, *bracket.Match) {
	t.Helper()
	data, err := env.tournaments.GetTournamentData(context.Background(), id)
	require.NoError(t, err)
	if data.NextMatchID == nil {
		return data, nil
	}
	m, ok := data.Bracket.Match(*data.NextMatchID)
	require.True(t, ok)
	return data, &m
}
