package model

import (
	"gorm.io/datatypes"
)

type UserRole string

const (
	Student UserRole = "student"
	Parent  UserRole = "parent"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"user_id,string"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash *string        `gorm:"size:255" json:"-"`
	Nickname     string         `gorm:"size:100;not null" json:"nickname"`
	Role         UserRole       `gorm:"size:20;not null;default:'student'" json:"role"`
	GoogleID     *string        `gorm:"size:64;uniqueIndex" json:"-"`
	Mileage      int64          `gorm:"not null;default:0" json:"mileage"`
	Settings     datatypes.JSON `json:"-"`
	Timestamps
}

func (User) TableName() string {
	return "users"
}

// CanCurate reports whether the user may create and edit datasets.
func (u *User) CanCurate() bool {
	return u.Role == Parent || u.Role == Admin
}
