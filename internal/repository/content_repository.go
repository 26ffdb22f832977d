package repository

import (
	"vocaman_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) WithTx(tx *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: tx}
}

func (r *ContentRepository) FindConcept(id uint64) (*model.Concept, error) {
	var c model.Concept
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *ContentRepository) CreateConcept(c *model.Concept) error {
	return r.DB.Create(c).Error
}

// FindTerm loads a term with its hints.
func (r *ContentRepository) FindTerm(id uint64) (*model.Term, error) {
	var t model.Term
	err := r.DB.Preload("Hints", func(db *gorm.DB) *gorm.DB {
		return db.Order("hints.id")
	}).First(&t, id).Error
	return &t, err
}

// CreateTerm inserts the term and its hints.
func (r *ContentRepository) CreateTerm(t *model.Term) error {
	return r.DB.Create(t).Error
}

// ConceptsOfDataset returns the dataset's concepts ordered by id.
func (r *ContentRepository) ConceptsOfDataset(datasetID uint64) ([]model.Concept, error) {
	var concepts []model.Concept
	err := r.DB.Joins("JOIN dataset_concepts ON dataset_concepts.concept_id = concepts.id").
		Where("dataset_concepts.dataset_id = ?", datasetID).
		Order("concepts.id").
		Find(&concepts).Error
	return concepts, err
}

// TermsOfConcepts returns all terms of the given concepts with hints, ordered by id.
func (r *ContentRepository) TermsOfConcepts(conceptIDs []uint64) ([]model.Term, error) {
	var terms []model.Term
	if len(conceptIDs) == 0 {
		return terms, nil
	}
	err := r.DB.Preload("Hints", func(db *gorm.DB) *gorm.DB {
		return db.Order("hints.id")
	}).
		Where("concept_id IN ?", conceptIDs).
		Order("id").
		Find(&terms).Error
	return terms, err
}
