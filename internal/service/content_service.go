package service

import (
	"context"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"

	"gorm.io/gorm"
)

type ContentService struct {
	Store       *repository.Store
	ContentRepo *repository.ContentRepository
}

func NewContentService(store *repository.Store, contentRepo *repository.ContentRepository) *ContentService {
	return &ContentService{Store: store, ContentRepo: contentRepo}
}

func (s *ContentService) GetConcept(ctx context.Context, id uint64) (*model.Concept, error) {
	var concept *model.Concept
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		concept, err = s.ContentRepo.WithTx(db).FindConcept(id)
		if repository.IsNotFound(err) {
			return util.ErrConceptNotFound
		}
		return err
	})
	return concept, err
}

// GetTerm returns the term with its hints.
func (s *ContentService) GetTerm(ctx context.Context, id uint64) (*model.Term, error) {
	var term *model.Term
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		term, err = s.ContentRepo.WithTx(db).FindTerm(id)
		if repository.IsNotFound(err) {
			return util.ErrTermNotFound
		}
		return err
	})
	if term != nil && term.Hints == nil {
		term.Hints = []model.Hint{}
	}
	return term, err
}
