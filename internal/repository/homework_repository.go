package repository

import (
	"time"
	"vocaman_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HomeworkRepository struct {
	DB *gorm.DB
}

func NewHomeworkRepository(db *gorm.DB) *HomeworkRepository {
	return &HomeworkRepository{DB: db}
}

func (r *HomeworkRepository) WithTx(tx *gorm.DB) *HomeworkRepository {
	return &HomeworkRepository{DB: tx}
}

func (r *HomeworkRepository) Create(a *model.HomeworkAssignment) error {
	return r.DB.Create(a).Error
}

func (r *HomeworkRepository) FindByID(id uint64) (*model.HomeworkAssignment, error) {
	var a model.HomeworkAssignment
	err := r.DB.First(&a, id).Error
	return &a, err
}

// FindForUpdate loads the assignment with SELECT ... FOR UPDATE; concurrent
// writers on the same assignment serialize on this row until commit.
func (r *HomeworkRepository) FindForUpdate(id uint64) (*model.HomeworkAssignment, error) {
	var a model.HomeworkAssignment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	return &a, err
}

// TransitionStatus moves the assignment from one status to another and
// reports how many rows changed.
func (r *HomeworkRepository) TransitionStatus(id uint64, from, to model.HomeworkStatus) (int64, error) {
	res := r.DB.Model(&model.HomeworkAssignment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// MarkCompleted sets completed and the disbursement time only if no reward
// was disbursed before. One affected row means this caller owns the payout.
func (r *HomeworkRepository) MarkCompleted(id uint64, at time.Time) (int64, error) {
	res := r.DB.Model(&model.HomeworkAssignment{}).
		Where("id = ? AND reward_disbursed_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":              model.HomeworkCompleted,
			"reward_disbursed_at": at,
		})
	return res.RowsAffected, res.Error
}

// ApplyPatch writes fields if the assignment is still in status expected.
func (r *HomeworkRepository) ApplyPatch(id uint64, expected model.HomeworkStatus, fields map[string]interface{}) (int64, error) {
	res := r.DB.Model(&model.HomeworkAssignment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes the progress rows and then the assignment.
func (r *HomeworkRepository) Delete(id uint64) (int64, error) {
	if err := r.DB.Where("assignment_id = ?", id).Delete(&model.HomeworkProgress{}).Error; err != nil {
		return 0, err
	}
	res := r.DB.Delete(&model.HomeworkAssignment{}, id)
	return res.RowsAffected, res.Error
}

// UpsertProgress inserts the term's outcome or overwrites the previous one.
func (r *HomeworkRepository) UpsertProgress(p *model.HomeworkProgress) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "term_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "submitted_at"}),
	}).Create(p).Error
}

func (r *HomeworkRepository) datasetTerms(datasetID uint64) *gorm.DB {
	return r.DB.Model(&model.Term{}).
		Joins("JOIN dataset_concepts ON dataset_concepts.concept_id = terms.concept_id").
		Where("dataset_concepts.dataset_id = ?", datasetID)
}

func (r *HomeworkRepository) TermInDataset(datasetID, termID uint64) (bool, error) {
	var count int64
	err := r.datasetTerms(datasetID).Where("terms.id = ?", termID).Count(&count).Error
	return count > 0, err
}

// CountDatasetTerms counts distinct terms reachable through the dataset's concepts.
func (r *HomeworkRepository) CountDatasetTerms(datasetID uint64) (int64, error) {
	var count int64
	err := r.datasetTerms(datasetID).Distinct("terms.id").Count(&count).Error
	return count, err
}

// CountCorrect counts correct progress rows whose term still belongs to the dataset.
func (r *HomeworkRepository) CountCorrect(assignmentID, datasetID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.HomeworkProgress{}).
		Joins("JOIN terms ON terms.id = homework_progress.term_id").
		Joins("JOIN dataset_concepts ON dataset_concepts.concept_id = terms.concept_id").
		Where("homework_progress.assignment_id = ? AND homework_progress.status = ? AND dataset_concepts.dataset_id = ?",
			assignmentID, model.ProgressCorrect, datasetID).
		Distinct("homework_progress.term_id").
		Count(&count).Error
	return count, err
}

func (r *HomeworkRepository) views() *gorm.DB {
	return r.DB.Table("homework_assignments").
		Select("homework_assignments.*, datasets.name AS dataset_name, " +
			"datasets.source_language_code, datasets.target_language_code, " +
			"parents.nickname AS parent_nickname, children.nickname AS child_nickname").
		Joins("LEFT JOIN datasets ON datasets.id = homework_assignments.dataset_id").
		Joins("LEFT JOIN users AS parents ON parents.id = homework_assignments.parent_user_id").
		Joins("LEFT JOIN users AS children ON children.id = homework_assignments.child_user_id")
}

func (r *HomeworkRepository) FindView(id uint64) (*model.AssignmentView, error) {
	var views []model.AssignmentView
	if err := r.views().Where("homework_assignments.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &views[0], nil
}

func (r *HomeworkRepository) ListByChild(childID uint64) ([]model.AssignmentView, error) {
	var views []model.AssignmentView
	err := r.views().
		Where("homework_assignments.child_user_id = ?", childID).
		Order("homework_assignments.created_at DESC, homework_assignments.id DESC").
		Scan(&views).Error
	return views, err
}

func (r *HomeworkRepository) ListByParent(parentID uint64) ([]model.AssignmentView, error) {
	var views []model.AssignmentView
	err := r.views().
		Where("homework_assignments.parent_user_id = ?", parentID).
		Order("homework_assignments.created_at DESC, homework_assignments.id DESC").
		Scan(&views).Error
	return views, err
}

// ListProgress returns the assignment's progress joined with term text, newest first.
func (r *HomeworkRepository) ListProgress(assignmentID uint64) ([]model.ProgressView, error) {
	var rows []model.ProgressView
	err := r.DB.Table("homework_progress").
		Select("homework_progress.term_id, homework_progress.status, homework_progress.submitted_at, " +
			"terms.text AS term_text, terms.language_code AS term_language").
		Joins("JOIN terms ON terms.id = homework_progress.term_id").
		Where("homework_progress.assignment_id = ?", assignmentID).
		Order("homework_progress.submitted_at DESC, homework_progress.term_id DESC").
		Scan(&rows).Error
	return rows, err
}
