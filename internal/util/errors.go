package util

import "errors"

var (
	ErrInvalidID          = errors.New("invalid identifier")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource was modified concurrently")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrGoogleLogin        = errors.New("google login is not configured")

	// relations
	ErrRelationNotFound       = errors.New("relation not found")
	ErrRelationNotApproved    = errors.New("no approved relation with this child")
	ErrRelationExists         = errors.New("relation already requested or approved")
	ErrRelationAlreadyHandled = errors.New("relation already handled")
	ErrSelfRelation           = errors.New("cannot create a relation with yourself")

	// content
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrDatasetInUse     = errors.New("dataset is referenced by homework assignments")
	ErrConceptNotFound  = errors.New("concept not found")
	ErrConceptInDataset = errors.New("concept already in dataset")
	ErrConceptNotMember = errors.New("concept is not part of this dataset")
	ErrTermNotFound     = errors.New("term not found")
	ErrNoDefaultDataset = errors.New("no official dataset for this grade")
	ErrAudioNotFound    = errors.New("audio not found")
	ErrInvalidFileType  = errors.New("invalid file type")

	// homework
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAlreadyCompleted    = errors.New("assignment already completed")
	ErrAssignmentCancelled = errors.New("assignment was cancelled")
	ErrTermNotInDataset    = errors.New("term does not belong to the assignment's dataset")
	ErrNoFieldsProvided    = errors.New("no fields provided")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidTransition   = errors.New("status transition not allowed")

	ErrNotificationNotFound = errors.New("notification not found")
)
