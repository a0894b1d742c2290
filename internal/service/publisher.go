package service

import "github.com/google/uuid"

// Publisher pushes a tournament's current state to live spectators.
type Publisher interface {
	PublishTournament(tournamentID uuid.UUID, payload any)
}

type noopPublisher struct{}

func (noopPublisher) PublishTournament(uuid.UUID, any) {}

func orNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
