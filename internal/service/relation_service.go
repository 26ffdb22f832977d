package service

import (
	"context"
	"fmt"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelationService manages parent/child links: a parent requests, the child
// approves or rejects.
type RelationService struct {
	Store            *repository.Store
	RelationRepo     *repository.RelationRepository
	UserRepo         *repository.UserRepository
	NotificationRepo *repository.NotificationRepository
}

func NewRelationService(store *repository.Store, relationRepo *repository.RelationRepository, userRepo *repository.UserRepository, notificationRepo *repository.NotificationRepository) *RelationService {
	return &RelationService{
		Store:            store,
		RelationRepo:     relationRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
	}
}

type RelationOverview struct {
	PendingReceived []model.RelationPeer `json:"pendingReceived"`
	PendingSent     []model.RelationPeer `json:"pendingSent"`
	Parents         []model.RelationPeer `json:"parents"`
	Children        []model.RelationPeer `json:"children"`
}

// Request creates a pending relation from parentID to the account with childEmail.
func (s *RelationService) Request(ctx context.Context, parentID uint64, childEmail string) (*model.UserRelation, error) {
	rel := &model.UserRelation{ParentUserID: parentID, Status: model.RelationPending}

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		child, err := s.UserRepo.WithTx(tx).FindByEmail(normalizeEmail(childEmail))
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrUserNotFound
			}
			return err
		}
		if child.ID == parentID {
			return util.ErrSelfRelation
		}

		relations := s.RelationRepo.WithTx(tx)
		exists, err := relations.ExistsActiveBetween(parentID, child.ID)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrRelationExists
		}

		rel.ChildUserID = child.ID
		if err := relations.Create(rel); err != nil {
			return err
		}

		id := rel.ID
		return s.NotificationRepo.WithTx(tx).Create(&model.Notification{
			RecipientUserID:   child.ID,
			Type:              model.NotificationRelationRequested,
			Message:           "You received a new family connection request.",
			RelatedEntityType: model.EntityRelation,
			RelatedEntityID:   &id,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("relation requested",
		zap.Uint64("relation_id", rel.ID),
		zap.Uint64("parent_id", rel.ParentUserID),
		zap.Uint64("child_id", rel.ChildUserID))
	return rel, nil
}

func (s *RelationService) List(ctx context.Context, userID uint64) (*RelationOverview, error) {
	overview := &RelationOverview{
		PendingReceived: []model.RelationPeer{},
		PendingSent:     []model.RelationPeer{},
		Parents:         []model.RelationPeer{},
		Children:        []model.RelationPeer{},
	}

	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		relations := s.RelationRepo.WithTx(db)
		asParent, err := relations.ListChildrenOf(userID)
		if err != nil {
			return err
		}
		asChild, err := relations.ListParentsOf(userID)
		if err != nil {
			return err
		}

		for _, p := range asParent {
			switch p.Status {
			case model.RelationPending:
				overview.PendingSent = append(overview.PendingSent, p)
			case model.RelationApproved:
				overview.Children = append(overview.Children, p)
			}
		}
		for _, p := range asChild {
			switch p.Status {
			case model.RelationPending:
				overview.PendingReceived = append(overview.PendingReceived, p)
			case model.RelationApproved:
				overview.Parents = append(overview.Parents, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overview, nil
}

// Handle lets the child approve or reject a pending request.
func (s *RelationService) Handle(ctx context.Context, childID, relationID uint64, status model.RelationStatus) error {
	if status != model.RelationApproved && status != model.RelationRejected {
		return fmt.Errorf("%w: status must be approved or rejected", util.ErrInvalidStatus)
	}

	var rel *model.UserRelation
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		relations := s.RelationRepo.WithTx(tx)
		var err error
		rel, err = relations.FindByID(relationID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrRelationNotFound
			}
			return err
		}
		// only the addressed child sees the request
		if rel.ChildUserID != childID {
			return util.ErrRelationNotFound
		}
		if rel.Status != model.RelationPending {
			return fmt.Errorf("%w (status: %s)", util.ErrRelationAlreadyHandled, rel.Status)
		}

		affected, err := relations.UpdateStatusIfPending(relationID, status)
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrConflict
		}

		id := rel.ID
		return s.NotificationRepo.WithTx(tx).Create(&model.Notification{
			RecipientUserID:   rel.ParentUserID,
			Type:              model.NotificationRelationHandled,
			Message:           fmt.Sprintf("Your family connection request was %s.", status),
			RelatedEntityType: model.EntityRelation,
			RelatedEntityID:   &id,
		})
	})
	if err != nil {
		return err
	}

	logger.Log.Info("relation handled",
		zap.Uint64("relation_id", relationID),
		zap.Uint64("child_id", childID),
		zap.String("status", string(status)))
	return nil
}
