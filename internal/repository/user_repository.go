package repository

import (
	"vocaman_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// WithTx returns a repository bound to tx.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint64) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByGoogleID(googleID string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("google_id = ?", googleID).First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// LinkGoogleID attaches a Google account to an existing user that has none yet.
func (r *UserRepository) LinkGoogleID(userID uint64, googleID string) error {
	return r.DB.Model(&model.User{}).
		Where("id = ? AND google_id IS NULL", userID).
		Update("google_id", googleID).
		Error
}

func (r *UserRepository) UpdateNickname(userID uint64, nickname string) (int64, error) {
	res := r.DB.Model(&model.User{}).Where("id = ?", userID).Update("nickname", nickname)
	return res.RowsAffected, res.Error
}

func (r *UserRepository) UpdateSettings(userID uint64, settings datatypes.JSON) (int64, error) {
	res := r.DB.Model(&model.User{}).Where("id = ?", userID).Update("settings", settings)
	return res.RowsAffected, res.Error
}

// AddMileage credits amount to the user's balance in a single UPDATE.
func (r *UserRepository) AddMileage(userID uint64, amount int64) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("mileage", gorm.Expr("mileage + ?", amount)).
		Error
}
