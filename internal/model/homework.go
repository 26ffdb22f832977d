package model

import "time"

type HomeworkStatus string

const (
	HomeworkAssigned   HomeworkStatus = "assigned"
	HomeworkInProgress HomeworkStatus = "in_progress"
	HomeworkCompleted  HomeworkStatus = "completed"
	HomeworkCancelled  HomeworkStatus = "cancelled"
)

func (s HomeworkStatus) Valid() bool {
	switch s {
	case HomeworkAssigned, HomeworkInProgress, HomeworkCompleted, HomeworkCancelled:
		return true
	}
	return false
}

// Terminal states accept no further progress and no manual transitions.
func (s HomeworkStatus) Terminal() bool {
	return s == HomeworkCompleted || s == HomeworkCancelled
}

// swagger:model HomeworkAssignment
type HomeworkAssignment struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"assignment_id,string"`
	ParentUserID uint64         `gorm:"index;not null" json:"parent_user_id,string"`
	ChildUserID  uint64         `gorm:"index;not null" json:"child_user_id,string"`
	DatasetID    uint64         `gorm:"index;not null" json:"dataset_id,string"`
	Status       HomeworkStatus `gorm:"size:20;not null;default:'assigned'" json:"status"`
	Reward       int64          `gorm:"not null;default:0" json:"reward"`
	// set exactly once, in the transaction that completes the assignment
	RewardDisbursedAt *time.Time `json:"reward_disbursed_at,omitempty"`
	Timestamps
}

func (HomeworkAssignment) TableName() string {
	return "homework_assignments"
}

type ProgressStatus string

const (
	ProgressPending   ProgressStatus = "pending"
	ProgressCorrect   ProgressStatus = "correct"
	ProgressIncorrect ProgressStatus = "incorrect"
)

// HomeworkProgress holds the latest outcome of one term within one assignment.
type HomeworkProgress struct {
	AssignmentID uint64         `gorm:"primaryKey;autoIncrement:false" json:"assignment_id,string"`
	TermID       uint64         `gorm:"primaryKey;autoIncrement:false" json:"term_id,string"`
	Status       ProgressStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`
}

func (HomeworkProgress) TableName() string {
	return "homework_progress"
}

// AssignmentView is an assignment joined with display fields for listings and details.
type AssignmentView struct {
	HomeworkAssignment
	DatasetName        string `json:"dataset_name"`
	SourceLanguageCode string `json:"source_language_code,omitempty"`
	TargetLanguageCode string `json:"target_language_code,omitempty"`
	ParentNickname     string `json:"parent_nickname,omitempty"`
	ChildNickname      string `json:"child_nickname,omitempty"`
}

// ProgressView is a progress row joined with the term it refers to.
type ProgressView struct {
	TermID       uint64         `json:"term_id,string"`
	Status       ProgressStatus `json:"status"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	TermText     string         `json:"term_text"`
	TermLanguage string         `json:"term_language"`
}
