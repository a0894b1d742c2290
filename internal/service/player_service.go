package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sabo-arena/arena-bracket/internal/storage"
	"github.com/sabo-arena/arena-bracket/internal/store"
)

const maxAvatarBytes = 2 << 20

var avatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type PlayerService struct {
	store       *store.TournamentStore
	uploader    storage.FileUploader
	tournaments *TournamentService
}

// NewPlayerService takes a nil uploader when avatar storage is not configured.
func NewPlayerService(store *store.TournamentStore, uploader storage.FileUploader, tournaments *TournamentService) *PlayerService {
	return &PlayerService{store: store, uploader: uploader, tournaments: tournaments}
}

// ParsePlayers reads a pasted roster, one player per line in seed order.
// A line is "Name", "Name, RANK" or "Name, ELO"; blank lines and lines
// starting with # are skipped.
func (s *PlayerService) ParsePlayers(roster string) ([]PlayerInput, error) {
	var players []PlayerInput

	scanner := bufio.NewScanner(strings.NewReader(roster))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		name, extra, _ := strings.Cut(text, ",")
		p := PlayerInput{Name: strings.TrimSpace(name)}
		if extra = strings.TrimSpace(extra); extra != "" {
			if elo, err := strconv.Atoi(extra); err == nil {
				p.Elo = elo
			} else {
				p.Rank = strings.ToUpper(extra)
			}
		}
		if p.Name == "" {
			return nil, fmt.Errorf("%w: line %d has no player name", ErrInvalidInput, line)
		}
		players = append(players, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

// UploadAvatar stores an image for a player and returns its public URL.
func (s *PlayerService) UploadAvatar(ctx context.Context, playerID uuid.UUID, contentType string, r io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrStorageUnavailable
	}

	ext, ok := avatarTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}

	entry, err := s.store.GetEntry(ctx, playerID)
	if err != nil {
		return "", err
	}
	tournament, err := s.store.GetTournament(ctx, entry.TournamentID)
	if err != nil {
		return "", err
	}
	if err := authorize(ctx, tournament); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return "", fmt.Errorf("%w: avatar is larger than %d bytes", ErrInvalidInput, maxAvatarBytes)
	}

	key := storage.AvatarKey(tournament.ID.String(), playerID.String(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateEntryAvatar(ctx, playerID, result.Location); err != nil {
		return "", fmt.Errorf("failed to save avatar url: %w", err)
	}

	s.tournaments.Publish(ctx, tournament.ID)
	return result.Location, nil
}
