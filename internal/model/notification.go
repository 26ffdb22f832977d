package model

import "time"

const (
	NotificationHomeworkAssigned  = "homework_assigned"
	NotificationHomeworkCompleted = "homework_completed"
	NotificationMileageAwarded    = "mileage_awarded"
	NotificationRelationRequested = "relation_requested"
	NotificationRelationHandled   = "relation_handled"
)

const (
	EntityHomework = "homework_assignment"
	EntityRelation = "user_relation"
)

type Notification struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement" json:"notification_id,string"`
	RecipientUserID   uint64    `gorm:"index;not null" json:"-"`
	Type              string    `gorm:"size:40;not null" json:"type"`
	Message           string    `gorm:"size:500;not null" json:"message"`
	IsRead            bool      `gorm:"not null;default:false" json:"is_read"`
	RelatedEntityType string    `gorm:"size:40" json:"related_entity_type,omitempty"`
	RelatedEntityID   *uint64   `json:"related_entity_id,string,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
