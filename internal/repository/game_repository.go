package repository

import (
	"vocaman_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameRepository struct {
	DB *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{DB: db}
}

func (r *GameRepository) WithTx(tx *gorm.DB) *GameRepository {
	return &GameRepository{DB: tx}
}

func (r *GameRepository) CreateLog(log *model.GameLog) error {
	return r.DB.Create(log).Error
}

// LockStats makes sure the (user, language pair) row exists and loads it FOR UPDATE.
func (r *GameRepository) LockStats(userID uint64, pair string) (*model.UserStats, error) {
	seed := model.UserStats{UserID: userID, LanguagePairCode: pair}
	if err := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var stats model.UserStats
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND language_pair_code = ?", userID, pair).
		First(&stats).Error
	return &stats, err
}

func (r *GameRepository) SaveStats(stats *model.UserStats) error {
	return r.DB.Model(&model.UserStats{}).
		Where("user_id = ? AND language_pair_code = ?", stats.UserID, stats.LanguagePairCode).
		Updates(map[string]interface{}{
			"wins":           stats.Wins,
			"losses":         stats.Losses,
			"current_streak": stats.CurrentStreak,
			"best_streak":    stats.BestStreak,
		}).Error
}

func (r *GameRepository) FindStats(userID uint64, pair string) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.DB.Where("user_id = ? AND language_pair_code = ?", userID, pair).First(&stats).Error
	return &stats, err
}

func (r *GameRepository) ListStats(userID uint64) ([]model.UserStats, error) {
	var stats []model.UserStats
	err := r.DB.Where("user_id = ?", userID).Order("language_pair_code").Find(&stats).Error
	return stats, err
}
