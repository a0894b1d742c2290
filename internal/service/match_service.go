package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sabo-arena/arena-bracket/internal/bracket"
	"github.com/sabo-arena/arena-bracket/internal/rating"
	"github.com/sabo-arena/arena-bracket/internal/store"
)

type MatchService struct {
	db          *sqlx.DB
	store       *store.TournamentStore
	tournaments *TournamentService
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, tournaments *TournamentService) *MatchService {
	return &MatchService{db: db, store: store, tournaments: tournaments}
}

// bracketOp transforms the loaded bracket inside the mutation transaction.
type bracketOp func(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament, entries []bracket.Entry, b bracket.Bracket) (bracket.Bracket, error)

// AdvanceWinner decides a match, moves every player the result unlocks and
// updates both players' ratings. It returns the tournament the match belongs to.
func (s *MatchService) AdvanceWinner(ctx context.Context, matchID, winnerID uuid.UUID, score *bracket.MatchScore) (uuid.UUID, error) {
	return s.mutate(ctx, matchID, func(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament, entries []bracket.Entry, b bracket.Bracket) (bracket.Bracket, error) {
		next, err := b.Advance(matchID, winnerID, score)
		if err != nil {
			return next, err
		}

		decided, _ := next.Match(matchID)
		if err := s.updateRatings(ctx, tx, entries, decided); err != nil {
			return next, err
		}

		if champion := next.Champion(); champion != nil {
			if err := s.store.UpdateTournamentStatusTx(ctx, tx, t.ID, bracket.TournamentCompleted); err != nil {
				return next, fmt.Errorf("failed to update tournament status: %w", err)
			}
			slog.Info("tournament completed", "tournament_id", t.ID, "champion", champion.Name)
		}
		return next, nil
	})
}

// RecordScore stores a running score on a match that is still being played.
func (s *MatchService) RecordScore(ctx context.Context, matchID uuid.UUID, score bracket.MatchScore) (uuid.UUID, error) {
	return s.mutate(ctx, matchID, func(_ context.Context, _ *sqlx.Tx, _ *bracket.Tournament, _ []bracket.Entry, b bracket.Bracket) (bracket.Bracket, error) {
		return b.RecordScore(matchID, score)
	})
}

// AssignGameInfo sets the table, handicap and race of an undecided match.
func (s *MatchService) AssignGameInfo(ctx context.Context, matchID uuid.UUID, info bracket.GameInfo) (uuid.UUID, error) {
	return s.mutate(ctx, matchID, func(_ context.Context, _ *sqlx.Tx, _ *bracket.Tournament, _ []bracket.Entry, b bracket.Bracket) (bracket.Bracket, error) {
		return b.AssignGameInfo(matchID, info)
	})
}

// mutate loads the bracket owning matchID, applies op and writes back only the
// matches op changed, all in one transaction.
func (s *MatchService) mutate(ctx context.Context, matchID uuid.UUID, op bracketOp) (uuid.UUID, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	tournamentID, err := s.store.GetMatchTournamentIDTx(ctx, tx, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("%w: %s", bracket.ErrUnknownMatchID, matchID)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get match: %w", err)
	}

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if err := authorize(ctx, tournament); err != nil {
		return uuid.Nil, err
	}
	if tournament.Status == bracket.TournamentCompleted {
		return uuid.Nil, ErrTournamentCompleted
	}

	entries, err := s.store.GetEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get players: %w", err)
	}
	matches, err := s.store.GetMatchesForTx(ctx, tx, tournamentID, entries)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get matches: %w", err)
	}

	prev := bracket.FromMatches(tournament.Format, matches)
	next, err := op(ctx, tx, tournament, entries, prev)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.store.UpdateMatchesTx(ctx, tx, tournamentID, next.Changed(prev)); err != nil {
		return uuid.Nil, err
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}

	s.tournaments.Publish(ctx, tournamentID)
	return tournamentID, nil
}

func (s *MatchService) updateRatings(ctx context.Context, tx *sqlx.Tx, entries []bracket.Entry, m bracket.Match) error {
	winner, loser := m.Winner, m.Loser()
	if winner == nil || loser == nil {
		return nil
	}

	elo := make(map[uuid.UUID]int, len(entries))
	for _, e := range entries {
		elo[e.ID] = e.Elo
	}

	winnerDelta, loserDelta := rating.EloChange(elo[winner.ID], elo[loser.ID])
	for id, updated := range map[uuid.UUID]int{
		winner.ID: elo[winner.ID] + winnerDelta,
		loser.ID:  max(0, elo[loser.ID]+loserDelta),
	} {
		if err := s.store.UpdateEntryRatingTx(ctx, tx, id, updated, rating.RankFor(updated)); err != nil {
			return fmt.Errorf("failed to update rating: %w", err)
		}
	}
	return nil
}
