package bracket

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validate checks the invariants every stored or generated collection must
// hold. It reports all violations at once.
func Validate(matches []Match) error {
	var errs []error

	ids := make(map[uuid.UUID]bool, len(matches))
	for _, m := range matches {
		if ids[m.ID] {
			errs = append(errs, fmt.Errorf("match %s appears twice", m.ID))
		}
		ids[m.ID] = true
	}

	for _, m := range matches {
		label := m.Label()
		if !m.Stage.Kind.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown stage %q", label, m.Stage.Kind))
		}
		if (m.Status == MatchCompleted) != (m.Winner != nil) {
			errs = append(errs, fmt.Errorf("%s: status %s does not match winner presence", label, m.Status))
		}
		if m.Winner != nil && !m.HasPlayer(m.Winner.ID) {
			errs = append(errs, fmt.Errorf("%s: winner %s is not seated", label, m.Winner.Name))
		}
		if m.IsBye && m.Player2 != nil {
			errs = append(errs, fmt.Errorf("%s: bye with a second player", label))
		}
		if m.Completed() && !m.IsBye && (m.Player1 == nil || m.Player2 == nil) {
			errs = append(errs, fmt.Errorf("%s: completed with an empty slot", label))
		}
		if m.Player1 != nil && m.Player2 != nil && m.Player1.ID == m.Player2.ID {
			errs = append(errs, fmt.Errorf("%s: player meets themselves", label))
		}
		if m.NextMatchID != nil && !ids[*m.NextMatchID] {
			errs = append(errs, fmt.Errorf("%s: next match %s is missing", label, m.NextMatchID))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidBracket, errors.Join(errs...))
}

func (b Bracket) Validate() error {
	return Validate(b.Matches())
}
