package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserService struct {
	Store    *repository.Store
	UserRepo *repository.UserRepository
	GameRepo *repository.GameRepository
}

func NewUserService(store *repository.Store, userRepo *repository.UserRepository, gameRepo *repository.GameRepository) *UserService {
	return &UserService{
		Store:    store,
		UserRepo: userRepo,
		GameRepo: gameRepo,
	}
}

// GetProfile reads the user fresh from the store so mileage is current.
func (s *UserService) GetProfile(ctx context.Context, userID uint64) (*model.User, error) {
	var user *model.User
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		user, err = s.UserRepo.WithTx(db).FindByID(userID)
		if repository.IsNotFound(err) {
			return util.ErrUserNotFound
		}
		return err
	})
	return user, err
}

func (s *UserService) UpdateNickname(ctx context.Context, userID uint64, nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", fmt.Errorf("%w: nickname is required", util.ErrInvalidInput)
	}

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := s.UserRepo.WithTx(tx).UpdateNickname(userID, nickname)
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Log.Info("user profile updated", zap.Uint64("user_id", userID))
	return nickname, nil
}

// GetSettings returns the stored settings object; an empty or unreadable
// column reads as {}.
func (s *UserService) GetSettings(ctx context.Context, userID uint64) (map[string]interface{}, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings := map[string]interface{}{}
	if len(user.Settings) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(user.Settings, &settings); err != nil || settings == nil {
		logger.Log.Warn("unreadable user settings", zap.Uint64("user_id", userID), zap.Error(err))
		return map[string]interface{}{}, nil
	}
	return settings, nil
}

// ReplaceSettings overwrites the whole settings object.
func (s *UserService) ReplaceSettings(ctx context.Context, userID uint64, settings map[string]interface{}) error {
	if settings == nil {
		return fmt.Errorf("%w: settings must be a JSON object", util.ErrInvalidInput)
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidInput, err)
	}

	return s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		affected, err := s.UserRepo.WithTx(tx).UpdateSettings(userID, datatypes.JSON(raw))
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrUserNotFound
		}
		return nil
	})
}

// GetStats returns the statistics of one language pair, zeros when the user
// has not played it yet. An empty pair lists every pair played.
func (s *UserService) GetStats(ctx context.Context, userID uint64, langPair string) ([]model.UserStats, error) {
	var stats []model.UserStats
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		games := s.GameRepo.WithTx(db)
		if langPair == "" {
			var err error
			stats, err = games.ListStats(userID)
			return err
		}

		found, err := games.FindStats(userID, langPair)
		if repository.IsNotFound(err) {
			stats = []model.UserStats{{UserID: userID, LanguagePairCode: langPair}}
			return nil
		}
		if err != nil {
			return err
		}
		stats = []model.UserStats{*found}
		return nil
	})
	if stats == nil {
		stats = []model.UserStats{}
	}
	return stats, err
}
