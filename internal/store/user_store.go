package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	users "github.com/sabo-arena/arena-bracket/internal/user"
)

type UserStore struct {
	db *sqlx.DB
}

const (
	userColumns              = "id, email, username, avatar_url, provider, provider_id, created_at"
	getUserQuery             = "SELECT " + userColumns + " FROM users WHERE id = ?"
	getUserByProviderQuery   = "SELECT " + userColumns + " FROM users WHERE provider = ? AND provider_id = ?"
	updateNameAndAvatarQuery = "UPDATE users SET username = :username, avatar_url = :avatar_url WHERE id = :id"
	createUserQuery          = `
		INSERT INTO users (id, email, username, avatar_url, provider, provider_id) VALUES
		(:id, :email, :username, :avatar_url, :provider, :provider_id)
	`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(getUserQuery), id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	var user users.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(getUserByProviderQuery), provider, providerID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) UpdateUserNameAndAvatar(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, updateNameAndAvatarQuery, user)
	return err
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}
