package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdrive/nimbus/internal/model"
	"github.com/nimbusdrive/nimbus/internal/repository"
)

type fakeUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*model.User{}, byEmail: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

func newAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	email := NewEmailService("", "test@example.com", "Nimbus", "http://localhost", true)
	return NewAuthService(repo, email, "test-secret", false, time.Hour), repo
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newAuthService()

	user, err := svc.Signup("User@Example.COM", "sup3r-Secret!", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.True(t, user.HasPassword())
	assert.NotNil(t, user.EmailVerifiedAt)

	got, err := svc.Login("user@example.com", "sup3r-Secret!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login("user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "sup3r-Secret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Signup("not-an-email", "sup3r-Secret!", "Ada")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Signup("a@example.com", "sup3r-Secret!", "  ")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Signup("a@example.com", "short", "Ada")
	assert.Error(t, err)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Signup("a@example.com", "sup3r-Secret!", "Ada")
	require.NoError(t, err)

	_, err = svc.Signup("a@example.com", "sup3r-Secret!", "Ada Again")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestLoginPasswordlessAccount(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.AuthenticateOAuth("oauth@example.com", "Oda", "")
	require.NoError(t, err)

	_, err = svc.Login("oauth@example.com", "anything")
	assert.ErrorIs(t, err, ErrPasswordlessLogin)
}

func TestAuthenticateOAuthFindsExistingUser(t *testing.T) {
	svc, _ := newAuthService()

	created, err := svc.AuthenticateOAuth("oauth@example.com", "Oda", "https://img.test/a.png")
	require.NoError(t, err)
	require.NotNil(t, created.AvatarURL)

	again, err := svc.AuthenticateOAuth("OAuth@Example.com", "Different Name", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestJWTRoundTrip(t *testing.T) {
	svc, _ := newAuthService()
	user := &model.User{ID: "user-1", Email: "a@example.com"}

	token, err := svc.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := svc.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, "a@example.com", claims["email"])

	_, err = svc.VerifyJWT(token + "tampered")
	assert.Error(t, err)

	other := NewAuthService(newFakeUserRepo(), nil, "other-secret", false, time.Hour)
	_, err = other.VerifyJWT(token)
	assert.Error(t, err)
}

func TestHashAndComparePassword(t *testing.T) {
	svc, _ := newAuthService()

	hash, err := svc.HashPassword("sup3r-Secret!")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3r-Secret!", hash)

	assert.NoError(t, svc.ComparePassword("sup3r-Secret!", hash))
	assert.Error(t, svc.ComparePassword("wrong", hash))
}
