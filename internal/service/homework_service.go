package service

import (
	"context"
	"fmt"
	"time"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/util"
	"vocaman_backend/pkg/logger"
	"vocaman_backend/pkg/monitoring"
	"vocaman_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HomeworkService struct {
	Store            *repository.Store
	HomeworkRepo     *repository.HomeworkRepository
	RelationRepo     *repository.RelationRepository
	DatasetRepo      *repository.DatasetRepository
	UserRepo         *repository.UserRepository
	NotificationRepo *repository.NotificationRepository

	// Now is the clock used for submitted_at and reward_disbursed_at.
	Now func() time.Time
}

func NewHomeworkService(
	store *repository.Store,
	homeworkRepo *repository.HomeworkRepository,
	relationRepo *repository.RelationRepository,
	datasetRepo *repository.DatasetRepository,
	userRepo *repository.UserRepository,
	notificationRepo *repository.NotificationRepository,
) *HomeworkService {
	return &HomeworkService{
		Store:            store,
		HomeworkRepo:     homeworkRepo,
		RelationRepo:     relationRepo,
		DatasetRepo:      datasetRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
		Now:              time.Now,
	}
}

type AssignInput struct {
	ParentID  uint64
	ChildID   uint64
	DatasetID uint64
	Reward    int64
}

// Assign creates a homework assignment for an approved child and notifies the child.
func (s *HomeworkService) Assign(ctx context.Context, in AssignInput) (*model.HomeworkAssignment, error) {
	if in.Reward < 0 {
		return nil, fmt.Errorf("%w: reward must not be negative", util.ErrInvalidInput)
	}

	assignment := &model.HomeworkAssignment{
		ParentUserID: in.ParentID,
		ChildUserID:  in.ChildID,
		DatasetID:    in.DatasetID,
		Status:       model.HomeworkAssigned,
		Reward:       in.Reward,
	}

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		approved, err := s.RelationRepo.WithTx(tx).IsApproved(in.ParentID, in.ChildID)
		if err != nil {
			return err
		}
		if !approved {
			return util.ErrRelationNotApproved
		}

		dataset, err := s.DatasetRepo.WithTx(tx).FindByID(in.DatasetID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrDatasetNotFound
			}
			return err
		}

		if err := s.HomeworkRepo.WithTx(tx).Create(assignment); err != nil {
			return err
		}

		return s.NotificationRepo.WithTx(tx).Create(homeworkNotification(
			in.ChildID,
			model.NotificationHomeworkAssigned,
			fmt.Sprintf("New homework: %s", dataset.Name),
			assignment.ID,
		))
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("homework assigned",
		zap.Uint64("assignment_id", assignment.ID),
		zap.Uint64("parent_id", in.ParentID),
		zap.Uint64("child_id", in.ChildID),
		zap.Uint64("dataset_id", in.DatasetID),
		zap.Int64("reward", in.Reward))
	return assignment, nil
}

type SubmitInput struct {
	ChildID      uint64
	AssignmentID uint64
	TermID       uint64
	Outcome      model.ProgressStatus
}

// SubmitResult is the outcome of one progress submission.
type SubmitResult struct {
	Accepted     bool                 `json:"accepted"`
	RewardEarned int64                `json:"rewardEarned"`
	Status       model.HomeworkStatus `json:"status"`
	CorrectCount int64                `json:"correctCount"`
	TotalTerms   int64                `json:"totalTerms"`
}

// SubmitProgress records the child's outcome for one term and completes the
// assignment once every dataset term is answered correctly. The whole call is
// a single transaction holding the assignment row lock; the reward is paid by
// whichever transaction flips reward_disbursed_at from NULL.
func (s *HomeworkService) SubmitProgress(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if in.Outcome != model.ProgressCorrect && in.Outcome != model.ProgressIncorrect {
		return nil, fmt.Errorf("%w: outcome must be correct or incorrect", util.ErrInvalidStatus)
	}

	ctx, span := tracing.StartSpan(ctx, "homework.submit_progress",
		attribute.Int64("homework.assignment_id", int64(in.AssignmentID)),
		attribute.Int64("homework.term_id", int64(in.TermID)),
		attribute.String("homework.outcome", string(in.Outcome)))

	result := &SubmitResult{}
	var assignment *model.HomeworkAssignment

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		homework := s.HomeworkRepo.WithTx(tx)

		var err error
		assignment, err = homework.FindForUpdate(in.AssignmentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrAssignmentNotFound
			}
			return err
		}

		if assignment.ChildUserID != in.ChildID {
			return util.ErrForbidden
		}
		switch assignment.Status {
		case model.HomeworkCompleted:
			return util.ErrAlreadyCompleted
		case model.HomeworkCancelled:
			return util.ErrAssignmentCancelled
		}

		inDataset, err := homework.TermInDataset(assignment.DatasetID, in.TermID)
		if err != nil {
			return err
		}
		if !inDataset {
			return util.ErrTermNotInDataset
		}

		if assignment.Status == model.HomeworkAssigned {
			if _, err := homework.TransitionStatus(assignment.ID, model.HomeworkAssigned, model.HomeworkInProgress); err != nil {
				return err
			}
			assignment.Status = model.HomeworkInProgress
		}

		now := s.Now()
		if err := homework.UpsertProgress(&model.HomeworkProgress{
			AssignmentID: assignment.ID,
			TermID:       in.TermID,
			Status:       in.Outcome,
			SubmittedAt:  now,
		}); err != nil {
			return err
		}

		total, err := homework.CountDatasetTerms(assignment.DatasetID)
		if err != nil {
			return err
		}
		correct, err := homework.CountCorrect(assignment.ID, assignment.DatasetID)
		if err != nil {
			return err
		}
		result.TotalTerms = total
		result.CorrectCount = correct
		result.Status = assignment.Status

		if total == 0 || correct < total {
			return nil
		}

		affected, err := homework.MarkCompleted(assignment.ID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			// another transaction completed it first and owns the payout
			result.Status = model.HomeworkCompleted
			return nil
		}
		result.Status = model.HomeworkCompleted

		if assignment.Reward > 0 {
			if err := s.UserRepo.WithTx(tx).AddMileage(assignment.ChildUserID, assignment.Reward); err != nil {
				return err
			}
			result.RewardEarned = assignment.Reward
		}

		message := "Homework completed!"
		if result.RewardEarned > 0 {
			message = fmt.Sprintf("Homework completed! You earned %d mileage.", result.RewardEarned)
		}
		return s.NotificationRepo.WithTx(tx).Create(
			homeworkNotification(assignment.ChildUserID, model.NotificationHomeworkCompleted, message, assignment.ID),
			homeworkNotification(assignment.ParentUserID, model.NotificationHomeworkCompleted,
				"Your child completed a homework assignment.", assignment.ID),
		)
	})
	if err != nil {
		tracing.EndSpan(span, err)
		monitoring.HomeworkSubmissions.WithLabelValues("rejected").Inc()
		return nil, err
	}

	result.Accepted = true
	span.SetAttributes(
		attribute.String("homework.status", string(result.Status)),
		attribute.Int64("homework.reward_earned", result.RewardEarned))
	tracing.EndSpan(span, nil)
	logger.Log.Info("homework progress submitted",
		zap.Uint64("assignment_id", in.AssignmentID),
		zap.Uint64("child_id", in.ChildID),
		zap.Uint64("term_id", in.TermID),
		zap.String("outcome", string(in.Outcome)),
		zap.Int64("correct", result.CorrectCount),
		zap.Int64("total", result.TotalTerms))

	if result.Status == model.HomeworkCompleted {
		monitoring.HomeworkSubmissions.WithLabelValues("completed").Inc()
		logger.Log.Info("homework completed", zap.Uint64("assignment_id", in.AssignmentID))
	} else {
		monitoring.HomeworkSubmissions.WithLabelValues("accepted").Inc()
	}
	if result.RewardEarned > 0 {
		monitoring.MileageAwarded.Add(float64(result.RewardEarned))
		logger.Log.Info("mileage awarded",
			zap.Uint64("child_id", assignment.ChildUserID),
			zap.Int64("amount", result.RewardEarned))
	}
	return result, nil
}

// GetProgress lists the assignment's progress for its parent, newest first.
func (s *HomeworkService) GetProgress(ctx context.Context, requesterID, assignmentID uint64) ([]model.ProgressView, error) {
	var rows []model.ProgressView
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		homework := s.HomeworkRepo.WithTx(db)
		assignment, err := homework.FindByID(assignmentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if assignment.ParentUserID != requesterID {
			return util.ErrForbidden
		}
		rows, err = homework.ListProgress(assignmentID)
		return err
	})
	if rows == nil {
		rows = []model.ProgressView{}
	}
	return rows, err
}

// AssignmentPatch is the set of fields a parent may change; nil means unchanged.
type AssignmentPatch struct {
	Reward *int64
	Status *model.HomeworkStatus
}

func (p AssignmentPatch) Empty() bool {
	return p.Reward == nil && p.Status == nil
}

// fields validates the patch against the current status and returns the
// column values to write.
func (p AssignmentPatch) fields(current model.HomeworkStatus) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, 2)
	if p.Reward != nil {
		if *p.Reward < 0 {
			return nil, fmt.Errorf("%w: reward must not be negative", util.ErrInvalidInput)
		}
		fields["reward"] = *p.Reward
	}
	if p.Status != nil {
		target := *p.Status
		if !target.Valid() {
			return nil, fmt.Errorf("%w: %q", util.ErrInvalidStatus, target)
		}
		if target != current {
			if target != model.HomeworkCancelled || current.Terminal() {
				return nil, fmt.Errorf("%w: %s -> %s", util.ErrInvalidTransition, current, target)
			}
			fields["status"] = target
		}
	}
	return fields, nil
}

// UpdateAssignment applies a parent's patch. Completion is never re-evaluated here.
func (s *HomeworkService) UpdateAssignment(ctx context.Context, requesterID, assignmentID uint64, patch AssignmentPatch) error {
	if patch.Empty() {
		return util.ErrNoFieldsProvided
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: %q", util.ErrInvalidStatus, *patch.Status)
	}

	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		homework := s.HomeworkRepo.WithTx(tx)
		assignment, err := homework.FindForUpdate(assignmentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if assignment.ParentUserID != requesterID {
			return util.ErrForbidden
		}

		fields, err := patch.fields(assignment.Status)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			// status given but unchanged and no reward
			return nil
		}

		affected, err := homework.ApplyPatch(assignmentID, assignment.Status, fields)
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrConflict
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info("homework assignment updated",
		zap.Uint64("assignment_id", assignmentID),
		zap.Uint64("parent_id", requesterID))
	return nil
}

// DeleteAssignment removes an assignment and its progress for its parent.
func (s *HomeworkService) DeleteAssignment(ctx context.Context, requesterID, assignmentID uint64) error {
	err := s.Store.Transaction(ctx, func(tx *gorm.DB) error {
		homework := s.HomeworkRepo.WithTx(tx)
		assignment, err := homework.FindForUpdate(assignmentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if assignment.ParentUserID != requesterID {
			return util.ErrForbidden
		}

		affected, err := homework.Delete(assignmentID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return util.ErrConflict
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.Info("homework assignment deleted",
		zap.Uint64("assignment_id", assignmentID),
		zap.Uint64("parent_id", requesterID))
	return nil
}

func (s *HomeworkService) ListAssignedTo(ctx context.Context, childID uint64) ([]model.AssignmentView, error) {
	var views []model.AssignmentView
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		views, err = s.HomeworkRepo.WithTx(db).ListByChild(childID)
		return err
	})
	if views == nil {
		views = []model.AssignmentView{}
	}
	return views, err
}

func (s *HomeworkService) ListCreatedBy(ctx context.Context, parentID uint64) ([]model.AssignmentView, error) {
	var views []model.AssignmentView
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		var err error
		views, err = s.HomeworkRepo.WithTx(db).ListByParent(parentID)
		return err
	})
	if views == nil {
		views = []model.AssignmentView{}
	}
	return views, err
}

// AssignmentDetails is an assignment view with its progress summary.
type AssignmentDetails struct {
	model.AssignmentView
	Progress ProgressSummary `json:"progress"`
}

type ProgressSummary struct {
	CorrectCount int64 `json:"correctCount"`
	TotalTerms   int64 `json:"totalTerms"`
}

// GetDetails returns the assignment to its parent or its child.
func (s *HomeworkService) GetDetails(ctx context.Context, requesterID, assignmentID uint64) (*AssignmentDetails, error) {
	var details *AssignmentDetails
	err := s.Store.Read(ctx, func(db *gorm.DB) error {
		homework := s.HomeworkRepo.WithTx(db)
		view, err := homework.FindView(assignmentID)
		if err != nil {
			if repository.IsNotFound(err) {
				return util.ErrAssignmentNotFound
			}
			return err
		}
		if view.ParentUserID != requesterID && view.ChildUserID != requesterID {
			return util.ErrForbidden
		}

		total, err := homework.CountDatasetTerms(view.DatasetID)
		if err != nil {
			return err
		}
		correct, err := homework.CountCorrect(view.ID, view.DatasetID)
		if err != nil {
			return err
		}

		details = &AssignmentDetails{
			AssignmentView: *view,
			Progress:       ProgressSummary{CorrectCount: correct, TotalTerms: total},
		}
		return nil
	})
	return details, err
}

func homeworkNotification(recipientID uint64, kind, message string, assignmentID uint64) *model.Notification {
	id := assignmentID
	return &model.Notification{
		RecipientUserID:   recipientID,
		Type:              kind,
		Message:           message,
		RelatedEntityType: model.EntityHomework,
		RelatedEntityID:   &id,
	}
}
