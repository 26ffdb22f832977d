package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/testutil"
	"vocaman_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "unit-test-secret-unit-test-secret"

type stubGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (s stubGoogle) Verify(string) (*GoogleIdentity, error) {
	return s.identity, s.err
}

func newAuthService(t *testing.T, google GoogleVerifier) (*AuthService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	svc := NewAuthService(
		repository.NewStore(db, 5*time.Second),
		repository.NewUserRepository(db),
		repository.NewCache(nil),
		cfg,
		google,
	)
	return svc, db
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t, stubGoogle{})
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: " Mom@Example.com ", Password: "password1", Nickname: "Mom", Role: model.Parent})
	require.NoError(t, err)
	assert.Equal(t, "mom@example.com", user.Email)
	assert.Equal(t, model.Parent, user.Role)

	_, err = svc.Register(ctx, RegisterInput{Email: "mom@example.com", Password: "password2", Nickname: "Again"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	pair, err := svc.Login(ctx, "MOM@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, pair.User.ID)

	claims, err := util.ParseJWT(pair.AccessToken, util.TokenTypeAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Parent, claims.Role)

	_, err = util.ParseJWT(pair.RefreshToken, util.TokenTypeAccess, testSecret)
	assert.ErrorIs(t, err, util.ErrInvalidToken, "refresh token must not pass as access token")

	_, err = svc.Login(ctx, "mom@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestRegisterRoles(t *testing.T) {
	svc, _ := newAuthService(t, stubGoogle{})
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: "kid@example.com", Password: "password1", Nickname: "Kid"})
	require.NoError(t, err)
	assert.Equal(t, model.Student, user.Role)

	_, err = svc.Register(ctx, RegisterInput{Email: "root@example.com", Password: "password1", Nickname: "Root", Role: model.Admin})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthService(t, stubGoogle{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "kid@example.com", Password: "password1", Nickname: "Kid"})
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "kid@example.com", "password1")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	_, err = util.ParseJWT(access, util.TokenTypeAccess, testSecret)
	assert.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	assert.NoError(t, svc.Logout(ctx, pair.User.ID, pair.RefreshToken))
	assert.ErrorIs(t, svc.Logout(ctx, pair.User.ID+1, pair.RefreshToken), util.ErrForbidden)
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a student", func(t *testing.T) {
		svc, db := newAuthService(t, stubGoogle{identity: &GoogleIdentity{Subject: "g-1", Email: "New@Gmail.com", Name: "New Kid"}})
		pair, err := svc.GoogleLogin(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, model.Student, pair.User.Role)
		assert.Equal(t, "new@gmail.com", pair.User.Email)

		again, err := svc.GoogleLogin(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, pair.User.ID, again.User.ID)

		var count int64
		require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("links an existing account", func(t *testing.T) {
		svc, db := newAuthService(t, stubGoogle{identity: &GoogleIdentity{Subject: "g-2", Email: "mom@example.com"}})
		existing := testutil.CreateUser(t, db, "mom@example.com", model.Parent)

		pair, err := svc.GoogleLogin(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, pair.User.ID)
		assert.Equal(t, model.Parent, pair.User.Role)

		var linked model.User
		require.NoError(t, db.First(&linked, existing.ID).Error)
		require.NotNil(t, linked.GoogleID)
		assert.Equal(t, "g-2", *linked.GoogleID)

		// no password was ever set
		_, err = svc.Login(ctx, "mom@example.com", "")
		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	})

	t.Run("verifier errors pass through", func(t *testing.T) {
		svc, _ := newAuthService(t, stubGoogle{err: errors.Join(util.ErrInvalidToken, errors.New("bad audience"))})
		_, err := svc.GoogleLogin(ctx, "token")
		assert.ErrorIs(t, err, util.ErrInvalidToken)
	})

	t.Run("unconfigured client id", func(t *testing.T) {
		svc, _ := newAuthService(t, NewGoogleVerifier(""))
		_, err := svc.GoogleLogin(ctx, "token")
		assert.ErrorIs(t, err, util.ErrGoogleLogin)
	})
}
