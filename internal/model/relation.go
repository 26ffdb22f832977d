package model

type RelationStatus string

const (
	RelationPending  RelationStatus = "pending"
	RelationApproved RelationStatus = "approved"
	RelationRejected RelationStatus = "rejected"
)

// UserRelation links a parent account to a child account once the child approves.
type UserRelation struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"relation_id,string"`
	ParentUserID uint64         `gorm:"index:idx_relation_pair;not null" json:"parent_user_id,string"`
	ChildUserID  uint64         `gorm:"index:idx_relation_pair;not null" json:"child_user_id,string"`
	Status       RelationStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Timestamps
}

func (UserRelation) TableName() string {
	return "user_relations"
}

// RelationPeer is a relation row joined with the counterpart account.
type RelationPeer struct {
	RelationID uint64         `json:"relation_id,string"`
	Status     RelationStatus `json:"status"`
	UserID     uint64         `json:"user_id,string"`
	Nickname   string         `json:"nickname"`
	Email      string         `json:"email"`
}
