package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/sabo-arena/arena-bracket/internal/bracket"
	"github.com/sabo-arena/arena-bracket/internal/middleware"
	"github.com/sabo-arena/arena-bracket/internal/rating"
	"github.com/sabo-arena/arena-bracket/internal/store"
	"github.com/sabo-arena/arena-bracket/internal/utils"
)

type TournamentService struct {
	db        *sqlx.DB
	store     *store.TournamentStore
	publisher Publisher
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, publisher Publisher) *TournamentService {
	return &TournamentService{db: db, store: store, publisher: orNoop(publisher)}
}

type PlayerInput struct {
	Name string `json:"name"`
	// Either a known ELO or a SABO rank label. Neither means a new player.
	Elo       int    `json:"elo,omitempty"`
	Rank      string `json:"rank,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type CreateTournamentInput struct {
	Name     string         `json:"name"`
	Format   bracket.Format `json:"format"`
	RaceTo   string         `json:"race_to"`
	Handicap string         `json:"handicap"`
	// In seed order
	Players []PlayerInput `json:"players"`
}

type TournamentData struct {
	Tournament      *bracket.Tournament `json:"tournament"`
	Players         []bracket.Entry     `json:"players"`
	Bracket         bracket.Bracket     `json:"bracket"`
	SemifinalsReady bool                `json:"semifinals_ready"`
	Champion        *bracket.Player     `json:"champion"`
	NextMatchID     *uuid.UUID          `json:"next_match_id"`
}

func newTournamentData(t *bracket.Tournament, entries []bracket.Entry, matches []bracket.Match) *TournamentData {
	b := bracket.FromMatches(t.Format, matches)

	var nextMatchID *uuid.UUID
	for _, m := range b.Matches() {
		if m.Ready() && !m.Completed() {
			nextMatchID = utils.Ptr(m.ID)
			break
		}
	}

	return &TournamentData{
		Tournament:      t,
		Players:         entries,
		Bracket:         b,
		SemifinalsReady: b.SemifinalsReady(),
		Champion:        b.Champion(),
		NextMatchID:     nextMatchID,
	}
}

// GetTournamentData loads everything a bracket screen needs. It is public so
// spectators can follow without a session.
func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	var (
		tournament *bracket.Tournament
		entries    []bracket.Entry
		matches    []bracket.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.store.GetTournament(gctx, id)
		tournament = t
		return err
	})
	g.Go(func() error {
		e, err := s.store.GetEntries(gctx, id)
		if err != nil {
			return err
		}
		m, err := s.store.GetMatchesFor(gctx, id, e)
		entries, matches = e, m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newTournamentData(tournament, entries, matches), nil
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context) ([]bracket.Tournament, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("user ID not found in the context")
	}
	return s.store.GetTournamentsByOwner(ctx, userID)
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (uuid.UUID, error) {
	ownerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in the context")
	}

	name := utils.CollapseSpaces(input.Name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: tournament name is required", ErrInvalidInput)
	}
	switch input.Format {
	case "":
		input.Format = bracket.FormatDouble
	case bracket.FormatSingle, bracket.FormatDouble:
	default:
		return uuid.Nil, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, input.Format)
	}

	tournamentID := uuid.New()
	tournament := bracket.Tournament{
		ID:       tournamentID,
		OwnerID:  ownerID,
		Name:     name,
		Slug:     slug.Make(name),
		Status:   bracket.TournamentDraft,
		Format:   input.Format,
		RaceTo:   strings.TrimSpace(input.RaceTo),
		Handicap: strings.TrimSpace(input.Handicap),
	}
	if tournament.Slug == "" {
		tournament.Slug = tournamentID.String()
	}

	entries, err := buildEntries(tournamentID, input.Players)
	if err != nil {
		return uuid.Nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, &tournament); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateEntries(ctx, tx, entries); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create players: %w", err)
	}
	if err := s.startBracket(ctx, tx, &tournament, entries); err != nil {
		return uuid.Nil, err
	}

	return tournamentID, tx.Commit()
}

// RegenerateBracket throws away every result and builds a fresh bracket from
// the registered players.
func (s *TournamentService) RegenerateBracket(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, tournament); err != nil {
		return err
	}
	if tournament.Status == bracket.TournamentCompleted {
		return ErrTournamentCompleted
	}

	entries, err := s.store.GetEntriesTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMatchesTx(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	if err := s.startBracket(ctx, tx, tournament, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.Publish(ctx, id)
	return nil
}

// startBracket generates the matches for entries and moves the tournament to
// started.
func (s *TournamentService) startBracket(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament, entries []bracket.Entry) error {
	b, err := bracket.Generate(bracket.Players(entries), bracket.Options{
		Format:   t.Format,
		GameInfo: t.GameInfo(),
	})
	if err != nil {
		return err
	}

	if err := s.store.CreateMatches(ctx, tx, t.ID, b.Matches()); err != nil {
		return fmt.Errorf("failed to create matches: %w", err)
	}
	if err := s.store.UpdateTournamentStatusTx(ctx, tx, t.ID, bracket.TournamentStarted); err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	t.Status = bracket.TournamentStarted
	return nil
}

func buildEntries(tournamentID uuid.UUID, inputs []PlayerInput) ([]bracket.Entry, error) {
	seen := make(map[string]bool, len(inputs))
	entries := make([]bracket.Entry, 0, len(inputs))

	for i, input := range inputs {
		name := utils.CollapseSpaces(input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: player %d has no name", ErrInvalidInput, i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: player %q is registered twice", ErrInvalidInput, name)
		}
		seen[key] = true

		if input.Elo < 0 {
			return nil, fmt.Errorf("%w: player %q has a negative ELO", ErrInvalidInput, name)
		}
		elo := input.Elo
		if elo == 0 {
			elo = rating.EloFor(strings.ToUpper(strings.TrimSpace(input.Rank)))
		}

		entries = append(entries, bracket.Entry{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         name,
			Seed:         i + 1,
			AvatarURL:    utils.StringOrNil(input.AvatarURL),
			Rank:         rating.RankFor(elo),
			Elo:          elo,
		})
	}

	return entries, nil
}

func authorize(ctx context.Context, t *bracket.Tournament) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return fmt.Errorf("user ID not found in the context")
	}
	if t.OwnerID != userID {
		return ErrNotOwner
	}
	return nil
}

// Publish sends the committed state of a tournament to its live room.
// Failures are logged and dropped.
func (s *TournamentService) Publish(ctx context.Context, id uuid.UUID) {
	data, err := s.GetTournamentData(ctx, id)
	if err != nil {
		slog.Warn("failed to load tournament for live update", "tournament_id", id, "error", err)
		return
	}
	s.publisher.PublishTournament(id, data)
}
