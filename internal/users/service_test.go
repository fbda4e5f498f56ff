package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/terrace-erp/terrace/internal/shared"
)

type memoryRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]*User), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, user *User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return shared.ErrAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memoryRepo) ListActive(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range m.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	service := NewService(newMemoryRepo(), nil)

	user, err := service.Create(context.Background(), CreateUserRequest{
		Name:     "Dana Reed",
		Email:    "dana@terrace.example",
		Role:     RoleManager,
		Password: "s3cret-pass",
	}, 1)
	require.NoError(t, err)
	require.True(t, user.Active)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestVerifyPassword(t *testing.T) {
	service := NewService(newMemoryRepo(), nil)

	created, err := service.Create(context.Background(), CreateUserRequest{
		Name:     "Dana Reed",
		Email:    "dana@terrace.example",
		Role:     RoleAgent,
		Password: "s3cret-pass",
	}, 1)
	require.NoError(t, err)

	user, err := service.VerifyPassword(context.Background(), "dana@terrace.example", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = service.VerifyPassword(context.Background(), "dana@terrace.example", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	active := false
	_, err = service.Update(context.Background(), created.ID, UpdateUserRequest{Active: &active}, 1)
	require.NoError(t, err)
	_, err = service.VerifyPassword(context.Background(), "dana@terrace.example", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestActiveRecipientsExcludesInactive(t *testing.T) {
	service := NewService(newMemoryRepo(), nil)

	a, err := service.Create(context.Background(), CreateUserRequest{Name: "Ana Ward", Email: "ana@terrace.example", Role: RoleAgent, Password: "password1"}, 1)
	require.NoError(t, err)
	b, err := service.Create(context.Background(), CreateUserRequest{Name: "Ben Oz", Email: "ben@terrace.example", Role: RoleAgent, Password: "password2"}, 1)
	require.NoError(t, err)

	active := false
	_, err = service.Update(context.Background(), b.ID, UpdateUserRequest{Active: &active}, 1)
	require.NoError(t, err)

	recipients, err := service.ActiveRecipients(context.Background())
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	require.Equal(t, a.ID, recipients[0].ID)
}
