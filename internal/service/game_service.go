package service

import (
	"context"
	"strconv"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GameService struct {
	Store       *repository.Store
	DatasetRepo *repository.DatasetRepository
	ContentRepo *repository.ContentRepository
	GameRepo    *repository.GameRepository
	Cache       *repository.Cache
}

func NewGameService(store *repository.Store, datasetRepo *repository.DatasetRepository, contentRepo *repository.ContentRepository, gameRepo *repository.GameRepository, cache *repository.Cache) *GameService {
	return &GameService{
		Store:       store,
		DatasetRepo: datasetRepo,
		ContentRepo: contentRepo,
		GameRepo:    gameRepo,
		Cache:       cache,
	}
}

// GameSession is the concept -> terms -> hints tree of one dataset.
type GameSession struct {
	DatasetInfo *model.Dataset `json:"datasetInfo"`
	Concepts    []SessionCard  `json:"concepts"`
}

type SessionCard struct {
	ConceptID string        `json:"conceptId"`
	ImageURL  string        `json:"imageUrl"`
	Terms     []SessionTerm `json:"terms"`
}

type SessionTerm struct {
	TermID       string        `json:"termId"`
	LanguageCode string        `json:"languageCode"`
	Text         string        `json:"text"`
	AudioRef     *string       `json:"audioRef"`
	Hints        []SessionHint `json:"hints"`
}

type SessionHint struct {
	HintID       string `json:"hintId"`
	Type         string `json:"type"`
	Content      string `json:"content"`
	LanguageCode string `json:"languageCode"`
}

// Session composes the game session of a dataset, served from cache when possible.
func (s *GameService) Session(ctx context.Context, userID, datasetID uint64) (*GameSession, error) {
	var cached GameSession
	if s.Cache.GetGameSession(ctx, datasetID, &cached) {
		return &cached, nil
	}

	var session *GameSession
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		dataset, err := s.DatasetRepo.WithTx(db).FindByID(datasetID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrDatasetNotFound
			}
			return err
		}
		session, err = s.compose(db, dataset)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Cache.SetGameSession(ctx, datasetID, session)
	logger.Log.Debug("game session started", zap.Uint64("dataset_id", datasetID), zap.Uint64("user_id", userID))
	return session, nil
}

// DefaultSession starts a session on the official dataset for grade.
func (s *GameService) DefaultSession(ctx context.Context, userID uint64, grade int) (*GameSession, error) {
	var datasetID uint64
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		dataset, err := s.DatasetRepo.WithTx(db).FindOfficialByGrade(grade)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrNoDefaultDataset
			}
			return err
		}
		datasetID = dataset.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Session(ctx, userID, datasetID)
}

func (s *GameService) compose(db *gorm.DB, dataset *model.Dataset) (*GameSession, error) {
	content := s.ContentRepo.WithTx(db)
	concepts, err := content.ConceptsOfDataset(dataset.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(concepts))
	for _, c := range concepts {
		ids = append(ids, c.ID)
	}
	terms, err := content.TermsOfConcepts(ids)
	if err != nil {
		return nil, err
	}

	byConcept := make(map[uint64][]SessionTerm, len(concepts))
	for _, t := range terms {
		st := SessionTerm{
			TermID:       strconv.FormatUint(t.ID, 10),
			LanguageCode: t.LanguageCode,
			Text:         t.Text,
			AudioRef:     t.AudioRef,
			Hints:        make([]SessionHint, 0, len(t.Hints)),
		}
		for _, h := range t.Hints {
			st.Hints = append(st.Hints, SessionHint{
				HintID:       strconv.FormatUint(h.ID, 10),
				Type:         h.HintType,
				Content:      h.HintContent,
				LanguageCode: h.LanguageCode,
			})
		}
		byConcept[t.ConceptID] = append(byConcept[t.ConceptID], st)
	}

	session := &GameSession{DatasetInfo: dataset, Concepts: make([]SessionCard, 0, len(concepts))}
	for _, c := range concepts {
		// concepts without terms cannot be played
		cardTerms := byConcept[c.ID]
		if len(cardTerms) == 0 {
			continue
		}
		session.Concepts = append(session.Concepts, SessionCard{
			ConceptID: strconv.FormatUint(c.ID, 10),
			ImageURL:  c.ImageURL,
			Terms:     cardTerms,
		})
	}
	return session, nil
}

type GameLogInput struct {
	UserID     uint64
	TermID     uint64
	DatasetID  uint64
	WasCorrect bool
	Attempts   int
	Source     string
}

// LogResult stores one answered card and updates the user's statistics for
// the dataset's language pair in the same transaction.
func (s *GameService) LogResult(ctx context.Context, in GameLogInput) (*model.GameLog, error) {
	source := in.Source
	if source == "" {
		source = "game"
	}
	entry := &model.GameLog{
		UserID:     in.UserID,
		TermID:     in.TermID,
		DatasetID:  in.DatasetID,
		WasCorrect: in.WasCorrect,
		Attempts:   in.Attempts,
		Source:     source,
	}

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		dataset, err := s.DatasetRepo.WithTx(tx).FindByID(in.DatasetID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrDatasetNotFound
			}
			return err
		}

		games := s.GameRepo.WithTx(tx)
		if err := games.CreateLog(entry); err != nil {
			return err
		}

		stats, err := games.LockStats(in.UserID, dataset.LanguagePair())
		if err != nil {
			return err
		}
		stats.Record(in.WasCorrect)
		return games.SaveStats(stats)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("game result logged",
		zap.Uint64("log_id", entry.ID),
		zap.Uint64("user_id", in.UserID),
		zap.Bool("correct", in.WasCorrect))
	return entry, nil
}
