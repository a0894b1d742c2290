package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/markbates/goth"

	"github.com/sabo-arena/arena-bracket/internal/store"
	users "github.com/sabo-arena/arena-bracket/internal/user"
	"github.com/sabo-arena/arena-bracket/internal/utils"
)

type UserService struct {
	store *store.UserStore
}

func NewUserService(store *store.UserStore) *UserService {
	return &UserService{store: store}
}

// FindOrCreateUserByProvider maps an OAuth login onto an operator, creating
// the operator on first login and refreshing name and avatar afterwards.
func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	name := displayName(gothUser)

	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)
	if err == nil {
		avatar := utils.StringOrNil(gothUser.AvatarURL)
		if utils.OrZero(user.AvatarURL) != utils.OrZero(avatar) || user.Username != name {
			user.Username = name
			user.AvatarURL = avatar
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to refresh operator: %w", err)
			}
		}
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if gothUser.Email == "" {
		return nil, fmt.Errorf("%w: %s did not share an email address", ErrInvalidInput, gothUser.Provider)
	}

	newUser := &users.User{
		ID:         uuid.New(),
		Email:      gothUser.Email,
		Username:   name,
		AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		Provider:   utils.Ptr(gothUser.Provider),
		ProviderID: utils.Ptr(gothUser.UserID),
	}
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, err
	}
	slog.Info("operator registered", "user_id", newUser.ID, "provider", gothUser.Provider)
	return newUser, nil
}

func displayName(u goth.User) string {
	for _, name := range []string{u.Name, u.NickName, u.Email} {
		if name = utils.CollapseSpaces(name); name != "" {
			return name
		}
	}
	return u.UserID
}

// EnsureGuestUser returns the shared guest operator, creating it when the
// database was set up without the seed row.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, users.GuestID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:       users.GuestID,
			Email:    "guest@saboarena.vn",
			Username: "Guest Operator",
		}
		if err := s.store.CreateUser(ctx, guestUser); err != nil {
			return nil, err
		}
		return guestUser, nil
	}
	return nil, err
}
