package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumiteops/kumite-system/models"
	"github.com/kumiteops/kumite-system/repositories"
)

type fakeUserRepo struct {
	users map[string]*models.User // keyed by username
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.Username]; ok {
		return repositories.ErrUsernameConflict
	}
	cp := *user
	r.users[user.Username] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func TestRegisterThenLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "sensei",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleJudge, user.Role, "role defaults to judge")
	assert.Empty(t, user.PasswordHash, "hash never leaves the service")

	logged, err := svc.Login(context.Background(), LoginInput{Username: "sensei", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Empty(t, logged.PasswordHash)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	_, err := svc.Register(context.Background(), RegisterInput{Username: "sensei", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{Username: "sensei", Password: "wrong-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	_, err := svc.Login(context.Background(), LoginInput{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	_, err := svc.Register(context.Background(), RegisterInput{Username: "sensei", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	_, err := svc.Register(context.Background(), RegisterInput{Username: "sensei", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "sensei", Password: "another-horse"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
