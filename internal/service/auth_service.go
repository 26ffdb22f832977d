package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"vocaman_backend/internal/config"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GoogleIdentity is the part of a verified Google ID token the service uses.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

type GoogleVerifier interface {
	Verify(idToken string) (*GoogleIdentity, error)
}

// googleTokenVerifier checks ID tokens against Google's public certificates.
type googleTokenVerifier struct {
	clientID string
	verifier googleAuthIDTokenVerifier.Verifier
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleTokenVerifier{clientID: clientID}
}

func (v *googleTokenVerifier) Verify(idToken string) (*GoogleIdentity, error) {
	if v.clientID == "" {
		return nil, util.ErrGoogleLogin
	}
	if err := v.verifier.VerifyIDToken(idToken, []string{v.clientID}); err != nil {
		return nil, errors.Join(util.ErrInvalidToken, err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, errors.Join(util.ErrInvalidToken, err)
	}
	return &GoogleIdentity{Subject: claimSet.Sub, Email: claimSet.Email, Name: claimSet.Name}, nil
}

type AuthService struct {
	Store    *repository.Store
	UserRepo *repository.UserRepository
	Cache    *repository.Cache
	Cfg      *config.Config
	Google   GoogleVerifier
}

func NewAuthService(store *repository.Store, userRepo *repository.UserRepository, cache *repository.Cache, cfg *config.Config, google GoogleVerifier) *AuthService {
	return &AuthService{
		Store:    store,
		UserRepo: userRepo,
		Cache:    cache,
		Cfg:      cfg,
		Google:   google,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Nickname string
	Role     model.UserRole
}

// TokenPair is returned by every successful login.
type TokenPair struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         *model.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	role := in.Role
	if role == "" {
		role = model.Student
	}
	if role != model.Student && role != model.Parent {
		return nil, fmt.Errorf("%w: role must be student or parent", util.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	user := &model.User{
		Email:        normalizeEmail(in.Email),
		PasswordHash: &hash,
		Nickname:     strings.TrimSpace(in.Nickname),
		Role:         role,
	}

	err = s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		exists, err := users.ExistsByEmail(user.Email)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrEmailRegistered
		}
		return users.Create(user)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user registered", zap.Uint64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var user *model.User
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		user, err = s.UserRepo.WithTx(db).FindByEmail(normalizeEmail(email))
		if repository.IsNotFound(err) {
			return util.ErrInvalidCredentials
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	// accounts created through Google have no password
	if user.PasswordHash == nil {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// GoogleLogin signs in with a Google ID token. The Google account is linked
// to an existing user with the same email, or a new student is created.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*TokenPair, error) {
	identity, err := s.Google.Verify(idToken)
	if err != nil {
		return nil, err
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: google account has no email", util.ErrInvalidInput)
	}

	var user *model.User
	err = s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)

		found, err := users.FindByGoogleID(identity.Subject)
		if err == nil {
			user = found
			return nil
		}
		if !repository.IsNotFound(err) {
			return err
		}

		email := normalizeEmail(identity.Email)
		found, err = users.FindByEmail(email)
		if err == nil {
			if found.GoogleID == nil {
				if err := users.LinkGoogleID(found.ID, identity.Subject); err != nil {
					return err
				}
				found.GoogleID = &identity.Subject
			}
			user = found
			return nil
		}
		if !repository.IsNotFound(err) {
			return err
		}

		nickname := strings.TrimSpace(identity.Name)
		if nickname == "" {
			nickname = strings.Split(email, "@")[0]
		}
		subject := identity.Subject
		user = &model.User{
			Email:    email,
			Nickname: nickname,
			Role:     model.Student,
			GoogleID: &subject,
		}
		return users.Create(user)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("google login", zap.Uint64("user_id", user.ID))
	return s.issueTokens(user)
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := util.ParseJWT(refreshToken, util.TokenTypeRefresh, s.Cfg.JWT.Secret)
	if err != nil {
		return "", err
	}
	if s.Cache.IsTokenRevoked(ctx, claims.ID) {
		return "", util.ErrInvalidToken
	}

	var user *model.User
	err = s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		user, err = s.UserRepo.WithTx(db).FindByID(claims.UserID)
		if repository.IsNotFound(err) {
			return util.ErrInvalidToken
		}
		return err
	})
	if err != nil {
		return "", err
	}

	access, _, err := util.GenerateJWT(user, util.TokenTypeAccess, s.Cfg.JWT.Secret, s.Cfg.JWT.AccessTTL())
	return access, err
}

// Logout revokes the refresh token when one is given. Access tokens are
// short-lived and simply expire.
func (s *AuthService) Logout(ctx context.Context, userID uint64, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := util.ParseJWT(refreshToken, util.TokenTypeRefresh, s.Cfg.JWT.Secret)
	if err != nil {
		// an unusable token needs no revocation
		return nil
	}
	if claims.UserID != userID {
		return util.ErrForbidden
	}
	if err := s.Cache.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		logger.Log.Warn("failed to revoke refresh token", zap.Uint64("user_id", userID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) issueTokens(user *model.User) (*TokenPair, error) {
	access, _, err := util.GenerateJWT(user, util.TokenTypeAccess, s.Cfg.JWT.Secret, s.Cfg.JWT.AccessTTL())
	if err != nil {
		return nil, err
	}
	refresh, _, err := util.GenerateJWT(user, util.TokenTypeRefresh, s.Cfg.JWT.Secret, s.Cfg.JWT.RefreshTTL())
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
