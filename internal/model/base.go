package model

import (
	"time"
)

// swagger:model
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels lists every table the service owns, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&UserRelation{},
		&Concept{},
		&Term{},
		&Hint{},
		&Dataset{},
		&DatasetConcept{},
		&HomeworkAssignment{},
		&HomeworkProgress{},
		&GameLog{},
		&UserStats{},
		&Notification{},
	}
}
