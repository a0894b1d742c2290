package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sabo-arena/arena-bracket/internal/bracket"
	"github.com/sabo-arena/arena-bracket/internal/utils"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	tournamentColumns = "id, owner_id, name, slug, status, format, race_to, handicap, created_at"
	entryColumns      = "id, tournament_id, name, seed, avatar_url, rank_label, elo"
	matchColumns      = `id, tournament_id, stage_kind, stage_round, match_order, player_1_id, player_2_id,
		winner_id, score_1, score_2, handicap, table_name, race_to, next_match_id, status, is_bye`

	insertMatchQuery = `INSERT INTO matches (` + matchColumns + `)
		VALUES (:id, :tournament_id, :stage_kind, :stage_round, :match_order, :player_1_id, :player_2_id,
		:winner_id, :score_1, :score_2, :handicap, :table_name, :race_to, :next_match_id, :status, :is_bye)`

	updateMatchQuery = `UPDATE matches SET
		player_1_id = :player_1_id,
		player_2_id = :player_2_id,
		winner_id = :winner_id,
		score_1 = :score_1,
		score_2 = :score_2,
		handicap = :handicap,
		table_name = :table_name,
		race_to = :race_to,
		status = :status
		WHERE id = :id`
)

// matchRow is the flat storage shape of a bracket.Match. Players are kept as
// ids and resolved against the tournament's entries on load.
type matchRow struct {
	ID           uuid.UUID           `db:"id"`
	TournamentID uuid.UUID           `db:"tournament_id"`
	StageKind    bracket.StageKind   `db:"stage_kind"`
	StageRound   int                 `db:"stage_round"`
	Order        int                 `db:"match_order"`
	Player1ID    *uuid.UUID          `db:"player_1_id"`
	Player2ID    *uuid.UUID          `db:"player_2_id"`
	WinnerID     *uuid.UUID          `db:"winner_id"`
	Score1       *int                `db:"score_1"`
	Score2       *int                `db:"score_2"`
	Handicap     string              `db:"handicap"`
	TableName    string              `db:"table_name"`
	RaceTo       string              `db:"race_to"`
	NextMatchID  *uuid.UUID          `db:"next_match_id"`
	Status       bracket.MatchStatus `db:"status"`
	IsBye        bool                `db:"is_bye"`
}

func toRow(tournamentID uuid.UUID, m bracket.Match) matchRow {
	row := matchRow{
		ID:           m.ID,
		TournamentID: tournamentID,
		StageKind:    m.Stage.Kind,
		StageRound:   m.Stage.Round,
		Order:        m.Order,
		Player1ID:    playerID(m.Player1),
		Player2ID:    playerID(m.Player2),
		WinnerID:     playerID(m.Winner),
		Handicap:     m.GameInfo.Handicap,
		TableName:    m.GameInfo.Table,
		RaceTo:       m.GameInfo.RaceTo,
		NextMatchID:  m.NextMatchID,
		Status:       m.Status,
		IsBye:        m.IsBye,
	}
	if m.Score != nil {
		row.Score1 = &m.Score.Player1
		row.Score2 = &m.Score.Player2
	}
	return row
}

func (r matchRow) toMatch(players map[uuid.UUID]*bracket.Player) (bracket.Match, error) {
	m := bracket.Match{
		ID:          r.ID,
		Stage:       bracket.Stage{Kind: r.StageKind, Round: r.StageRound},
		Order:       r.Order,
		NextMatchID: r.NextMatchID,
		Status:      r.Status,
		IsBye:       r.IsBye,
		GameInfo: bracket.GameInfo{
			Handicap: r.Handicap,
			Table:    r.TableName,
			RaceTo:   r.RaceTo,
		},
	}
	if r.Score1 != nil && r.Score2 != nil {
		m.Score = &bracket.MatchScore{Player1: *r.Score1, Player2: *r.Score2}
	}

	var err error
	if m.Player1, err = resolve(players, r.Player1ID); err != nil {
		return m, err
	}
	if m.Player2, err = resolve(players, r.Player2ID); err != nil {
		return m, err
	}
	if m.Winner, err = resolve(players, r.WinnerID); err != nil {
		return m, err
	}
	return m, nil
}

func playerID(p *bracket.Player) *uuid.UUID {
	if p == nil {
		return nil
	}
	return utils.Ptr(p.ID)
}

func resolve(players map[uuid.UUID]*bracket.Player, id *uuid.UUID) (*bracket.Player, error) {
	if id == nil {
		return nil, nil
	}
	p, ok := players[*id]
	if !ok {
		return nil, fmt.Errorf("match references unknown player %s", id)
	}
	return p, nil
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, owner_id, name, slug, status, format, race_to, handicap)
        VALUES (:id, :owner_id, :name, :slug, :status, :format, :race_to, :handicap)`, tournament)
	return err
}

func (s *TournamentStore) CreateEntries(ctx context.Context, tx *sqlx.Tx, entries []bracket.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO players (`+entryColumns+`)
            VALUES (:id, :tournament_id, :name, :seed, :avatar_url, :rank_label, :elo)`, entries)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	rows := make([]matchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, toRow(tournamentID, m))
	}
	_, err := tx.NamedExecContext(ctx, insertMatchQuery, rows)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	query := q.Rebind("SELECT " + tournamentColumns + " FROM tournaments WHERE id = ?")
	if err := sqlx.GetContext(ctx, q, &tournament, query, id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	tournaments := []bracket.Tournament{}
	query := s.db.Rebind("SELECT " + tournamentColumns + " FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC")
	err := s.db.SelectContext(ctx, &tournaments, query, ownerID)
	return tournaments, err
}

func (s *TournamentStore) GetEntries(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	return getEntries(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	return getEntries(ctx, tx, tournamentID)
}

func getEntries(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	entries := []bracket.Entry{}
	query := q.Rebind("SELECT " + entryColumns + " FROM players WHERE tournament_id = ? ORDER BY seed ASC")
	err := sqlx.SelectContext(ctx, q, &entries, query, tournamentID)
	return entries, err
}

func (s *TournamentStore) GetEntry(ctx context.Context, id uuid.UUID) (*bracket.Entry, error) {
	var entry bracket.Entry
	err := s.db.GetContext(ctx, &entry, s.db.Rebind("SELECT "+entryColumns+" FROM players WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetMatchesFor resolves players against entries the caller already loaded.
func (s *TournamentStore) GetMatchesFor(ctx context.Context, tournamentID uuid.UUID, entries []bracket.Entry) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, tournamentID, entries)
}

func (s *TournamentStore) GetMatchesForTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, entries []bracket.Entry) ([]bracket.Match, error) {
	return getMatches(ctx, tx, tournamentID, entries)
}

func getMatches(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID, entries []bracket.Entry) ([]bracket.Match, error) {
	var rows []matchRow
	query := q.Rebind("SELECT " + matchColumns + " FROM matches WHERE tournament_id = ? ORDER BY stage_round ASC, match_order ASC")
	if err := sqlx.SelectContext(ctx, q, &rows, query, tournamentID); err != nil {
		return nil, err
	}

	players := make(map[uuid.UUID]*bracket.Player, len(entries))
	for _, e := range entries {
		p := e.Player()
		players[e.ID] = &p
	}

	matches := make([]bracket.Match, 0, len(rows))
	for _, row := range rows {
		m, err := row.toMatch(players)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", row.ID, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// GetMatchTournamentIDTx finds the tournament a match belongs to.
func (s *TournamentStore) GetMatchTournamentIDTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id, tx.Rebind("SELECT tournament_id FROM matches WHERE id = ?"), matchID)
	return id, err
}

// UpdateMatchesTx writes the mutable columns of each match. Structure
// (stage, order, links) never changes after generation.
func (s *TournamentStore) UpdateMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, matches []bracket.Match) error {
	for _, m := range matches {
		res, err := tx.NamedExecContext(ctx, updateMatchQuery, toRow(tournamentID, m))
		if err != nil {
			return fmt.Errorf("failed to update match %s: %w", m.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("failed to update match %s: no such row", m.ID)
		}
	}
	return nil
}

func (s *TournamentStore) DeleteMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE tournament_id = ?"), tournamentID)
	return err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, tx.Rebind("UPDATE tournaments SET status = ? WHERE id = ?"), status, id)
	return err
}

func (s *TournamentStore) UpdateEntryRatingTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, elo int, rank string) error {
	_, err := tx.ExecContext(ctx, tx.Rebind("UPDATE players SET elo = ?, rank_label = ? WHERE id = ?"), elo, rank, id)
	return err
}

func (s *TournamentStore) UpdateEntryAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE players SET avatar_url = ? WHERE id = ?"), avatarURL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
