package repository

import (
	"vocaman_backend/internal/model"

	"gorm.io/gorm"
)

type RelationRepository struct {
	DB *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{DB: db}
}

func (r *RelationRepository) WithTx(tx *gorm.DB) *RelationRepository {
	return &RelationRepository{DB: tx}
}

func (r *RelationRepository) Create(rel *model.UserRelation) error {
	return r.DB.Create(rel).Error
}

func (r *RelationRepository) FindByID(id uint64) (*model.UserRelation, error) {
	var rel model.UserRelation
	err := r.DB.First(&rel, id).Error
	return &rel, err
}

// ExistsActiveBetween checks both directions for a pending or approved relation.
func (r *RelationRepository) ExistsActiveBetween(a, b uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserRelation{}).
		Where("((parent_user_id = ? AND child_user_id = ?) OR (parent_user_id = ? AND child_user_id = ?))", a, b, b, a).
		Where("status IN ?", []model.RelationStatus{model.RelationPending, model.RelationApproved}).
		Count(&count).Error
	return count > 0, err
}

func (r *RelationRepository) IsApproved(parentID, childID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.UserRelation{}).
		Where("parent_user_id = ? AND child_user_id = ? AND status = ?", parentID, childID, model.RelationApproved).
		Count(&count).Error
	return count > 0, err
}

// UpdateStatusIfPending moves a pending relation to status; 0 rows means it was handled meanwhile.
func (r *RelationRepository) UpdateStatusIfPending(id uint64, status model.RelationStatus) (int64, error) {
	res := r.DB.Model(&model.UserRelation{}).
		Where("id = ? AND status = ?", id, model.RelationPending).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// ListChildrenOf returns relations where userID is the parent, joined with the child account.
func (r *RelationRepository) ListChildrenOf(userID uint64) ([]model.RelationPeer, error) {
	var peers []model.RelationPeer
	err := r.DB.Table("user_relations").
		Select("user_relations.id AS relation_id, user_relations.status, users.id AS user_id, users.nickname, users.email").
		Joins("JOIN users ON users.id = user_relations.child_user_id").
		Where("user_relations.parent_user_id = ?", userID).
		Order("user_relations.created_at DESC").
		Scan(&peers).Error
	return peers, err
}

// ListParentsOf returns relations where userID is the child, joined with the parent account.
func (r *RelationRepository) ListParentsOf(userID uint64) ([]model.RelationPeer, error) {
	var peers []model.RelationPeer
	err := r.DB.Table("user_relations").
		Select("user_relations.id AS relation_id, user_relations.status, users.id AS user_id, users.nickname, users.email").
		Joins("JOIN users ON users.id = user_relations.parent_user_id").
		Where("user_relations.child_user_id = ?", userID).
		Order("user_relations.created_at DESC").
		Scan(&peers).Error
	return peers, err
}
