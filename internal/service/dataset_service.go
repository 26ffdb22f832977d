package service

import (
	"context"
	"fmt"
	"strings"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DatasetService struct {
	Store       *repository.Store
	DatasetRepo *repository.DatasetRepository
	ContentRepo *repository.ContentRepository
	Cache       *repository.Cache
}

func NewDatasetService(store *repository.Store, datasetRepo *repository.DatasetRepository, contentRepo *repository.ContentRepository, cache *repository.Cache) *DatasetService {
	return &DatasetService{
		Store:       store,
		DatasetRepo: datasetRepo,
		ContentRepo: contentRepo,
		Cache:       cache,
	}
}

type DatasetInput struct {
	Name               string
	SourceLanguageCode string
	TargetLanguageCode string
	// official datasets back the default game session; admins only
	Official         bool
	RecommendedGrade *int
}

// DatasetPatch holds the dataset fields to change; nil means unchanged.
type DatasetPatch struct {
	Name               *string
	SourceLanguageCode *string
	TargetLanguageCode *string
}

type HintInput struct {
	HintType     string
	HintContent  string
	LanguageCode string
}

type TermInput struct {
	LanguageCode string
	Text         string
	AudioRef     *string
	Hints        []HintInput
}

// CustomWordInput adds terms to an existing concept or to a new concept
// illustrated by ImageURL. Exactly one of the two must be set.
type CustomWordInput struct {
	ConceptID uint64
	ImageURL  string
	Terms     []TermInput
}

func (s *DatasetService) Create(ctx context.Context, ownerID uint64, role model.UserRole, in DatasetInput) (*model.Dataset, error) {
	if role != model.Parent && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}

	dataset := &model.Dataset{
		Name:               strings.TrimSpace(in.Name),
		OwnerUserID:        ownerID,
		SourceLanguageCode: in.SourceLanguageCode,
		TargetLanguageCode: in.TargetLanguageCode,
	}
	if in.Official {
		if role != model.Admin {
			return nil, util.ErrPermissionDenied
		}
		dataset.IsOfficial = true
		dataset.RecommendedGrade = in.RecommendedGrade
	}
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		return s.DatasetRepo.WithTx(tx).Create(dataset)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("dataset created", zap.Uint64("dataset_id", dataset.ID), zap.Uint64("owner_id", ownerID))
	return dataset, nil
}

func (s *DatasetService) List(ctx context.Context) ([]model.DatasetSummary, error) {
	var list []model.DatasetSummary
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		list, err = s.DatasetRepo.WithTx(db).List()
		return err
	})
	if list == nil {
		list = []model.DatasetSummary{}
	}
	return list, err
}

func (s *DatasetService) Get(ctx context.Context, id uint64) (*model.DatasetSummary, error) {
	var summary *model.DatasetSummary
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		summary, err = s.DatasetRepo.WithTx(db).FindSummary(id)
		if repository.IsNotFound(err) {
			return util.ErrDatasetNotFound
		}
		return err
	})
	return summary, err
}

// ownedDataset loads the dataset and checks that userID owns it.
func ownedDataset(datasets *repository.DatasetRepository, id, userID uint64) (*model.Dataset, error) {
	dataset, err := datasets.FindByID(id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, util.ErrDatasetNotFound
		}
		return nil, err
	}
	if dataset.OwnerUserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return dataset, nil
}

func (s *DatasetService) Update(ctx context.Context, userID, id uint64, patch DatasetPatch) error {
	fields := map[string]interface{}{}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.SourceLanguageCode != nil && *patch.SourceLanguageCode != "" {
		fields["source_language_code"] = *patch.SourceLanguageCode
	}
	if patch.TargetLanguageCode != nil && *patch.TargetLanguageCode != "" {
		fields["target_language_code"] = *patch.TargetLanguageCode
	}
	if len(fields) == 0 {
		return util.ErrNoFieldsProvided
	}

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		datasets := s.DatasetRepo.WithTx(tx)
		if _, err := ownedDataset(datasets, id, userID); err != nil {
			return err
		}
		_, err := datasets.Update(id, fields)
		return err
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateGameSession(ctx, id)
	return nil
}

// Delete removes an owned dataset unless homework still references it.
func (s *DatasetService) Delete(ctx context.Context, userID, id uint64) error {
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		datasets := s.DatasetRepo.WithTx(tx)
		if _, err := ownedDataset(datasets, id, userID); err != nil {
			return err
		}
		inUse, err := datasets.CountAssignments(id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return util.ErrDatasetInUse
		}
		affected, err := datasets.Delete(id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrDatasetNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Cache.InvalidateGameSession(ctx, id)
	logger.Log.Info("dataset deleted", zap.Uint64("dataset_id", id), zap.Uint64("owner_id", userID))
	return nil
}

func (s *DatasetService) AddConcept(ctx context.Context, userID, datasetID, conceptID uint64) error {
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		datasets := s.DatasetRepo.WithTx(tx)
		if _, err := ownedDataset(datasets, datasetID, userID); err != nil {
			return err
		}
		if _, err := s.ContentRepo.WithTx(tx).FindConcept(conceptID); err != nil {
			if repository.IsNotFound(err) {
				return util.ErrConceptNotFound
			}
			return err
		}
		member, err := datasets.HasConcept(datasetID, conceptID)
		if err != nil {
			return err
		}
		if member {
			return util.ErrConceptInDataset
		}
		return datasets.AddConcept(datasetID, conceptID)
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateGameSession(ctx, datasetID)
	return nil
}

func (s *DatasetService) RemoveConcept(ctx context.Context, userID, datasetID, conceptID uint64) error {
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		datasets := s.DatasetRepo.WithTx(tx)
		if _, err := ownedDataset(datasets, datasetID, userID); err != nil {
			return err
		}
		affected, err := datasets.RemoveConcept(datasetID, conceptID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrConceptNotMember
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Cache.InvalidateGameSession(ctx, datasetID)
	return nil
}

// AddCustomWord creates terms with hints under a concept and links the concept
// to the dataset, all or nothing.
func (s *DatasetService) AddCustomWord(ctx context.Context, userID, datasetID uint64, in CustomWordInput) (uint64, error) {
	if len(in.Terms) == 0 {
		return 0, fmt.Errorf("%w: at least one term is required", util.ErrInvalidInput)
	}
	if (in.ConceptID == 0) == (in.ImageURL == "") {
		return 0, fmt.Errorf("%w: provide either conceptId or imageUrl", util.ErrInvalidInput)
	}

	var conceptID uint64
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		datasets := s.DatasetRepo.WithTx(tx)
		content := s.ContentRepo.WithTx(tx)
		if _, err := ownedDataset(datasets, datasetID, userID); err != nil {
			return err
		}

		if in.ConceptID != 0 {
			if _, err := content.FindConcept(in.ConceptID); err != nil {
				if repository.IsNotFound(err) {
					return util.ErrConceptNotFound
				}
				return err
			}
			conceptID = in.ConceptID
		} else {
			creator := userID
			concept := &model.Concept{ImageURL: in.ImageURL, CreatedBy: &creator}
			if err := content.CreateConcept(concept); err != nil {
				return err
			}
			conceptID = concept.ID
		}

		if err := datasets.LinkConcept(datasetID, conceptID); err != nil {
			return err
		}

		for _, t := range in.Terms {
			term := &model.Term{
				ConceptID:    conceptID,
				LanguageCode: t.LanguageCode,
				Text:         strings.TrimSpace(t.Text),
				AudioRef:     t.AudioRef,
			}
			for _, h := range t.Hints {
				term.Hints = append(term.Hints, model.Hint{
					HintType:     h.HintType,
					HintContent:  h.HintContent,
					LanguageCode: h.LanguageCode,
				})
			}
			if err := content.CreateTerm(term); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.Cache.InvalidateGameSession(ctx, datasetID)
	logger.Log.Info("custom word added",
		zap.Uint64("dataset_id", datasetID),
		zap.Uint64("concept_id", conceptID),
		zap.Int("terms", len(in.Terms)))
	return conceptID, nil
}
