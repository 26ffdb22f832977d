package repository

import (
	"vocaman_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DatasetRepository struct {
	DB *gorm.DB
}

func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{DB: db}
}

func (r *DatasetRepository) WithTx(tx *gorm.DB) *DatasetRepository {
	return &DatasetRepository{DB: tx}
}

func (r *DatasetRepository) Create(d *model.Dataset) error {
	return r.DB.Create(d).Error
}

func (r *DatasetRepository) FindByID(id uint64) (*model.Dataset, error) {
	var d model.Dataset
	err := r.DB.First(&d, id).Error
	return &d, err
}

func (r *DatasetRepository) summaries() *gorm.DB {
	return r.DB.Table("datasets").
		Select("datasets.*, users.nickname AS owner_nickname").
		Joins("LEFT JOIN users ON users.id = datasets.owner_user_id")
}

func (r *DatasetRepository) FindSummary(id uint64) (*model.DatasetSummary, error) {
	var summaries []model.DatasetSummary
	if err := r.summaries().Where("datasets.id = ?", id).Limit(1).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &summaries[0], nil
}

func (r *DatasetRepository) List() ([]model.DatasetSummary, error) {
	var summaries []model.DatasetSummary
	err := r.summaries().Order("datasets.created_at DESC, datasets.id DESC").Scan(&summaries).Error
	return summaries, err
}

// FindOfficialByGrade returns the first official dataset recommended for grade.
func (r *DatasetRepository) FindOfficialByGrade(grade int) (*model.Dataset, error) {
	var d model.Dataset
	err := r.DB.Where("is_official = ? AND recommended_grade = ?", true, grade).
		Order("id").
		First(&d).Error
	return &d, err
}

func (r *DatasetRepository) Update(id uint64, fields map[string]interface{}) (int64, error) {
	res := r.DB.Model(&model.Dataset{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes the dataset and its concept memberships.
func (r *DatasetRepository) Delete(id uint64) (int64, error) {
	if err := r.DB.Where("dataset_id = ?", id).Delete(&model.DatasetConcept{}).Error; err != nil {
		return 0, err
	}
	res := r.DB.Delete(&model.Dataset{}, id)
	return res.RowsAffected, res.Error
}

func (r *DatasetRepository) CountAssignments(datasetID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.HomeworkAssignment{}).Where("dataset_id = ?", datasetID).Count(&count).Error
	return count, err
}

func (r *DatasetRepository) HasConcept(datasetID, conceptID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.DatasetConcept{}).
		Where("dataset_id = ? AND concept_id = ?", datasetID, conceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *DatasetRepository) AddConcept(datasetID, conceptID uint64) error {
	return r.DB.Create(&model.DatasetConcept{DatasetID: datasetID, ConceptID: conceptID}).Error
}

// LinkConcept adds the membership unless it already exists.
func (r *DatasetRepository) LinkConcept(datasetID, conceptID uint64) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.DatasetConcept{DatasetID: datasetID, ConceptID: conceptID}).Error
}

func (r *DatasetRepository) RemoveConcept(datasetID, conceptID uint64) (int64, error) {
	res := r.DB.Where("dataset_id = ? AND concept_id = ?", datasetID, conceptID).Delete(&model.DatasetConcept{})
	return res.RowsAffected, res.Error
}
