package model

import "time"

// Concept is a language-independent meaning, usually illustrated by an image.
type Concept struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"concept_id,string"`
	ImageURL  string    `gorm:"size:512" json:"image_url"`
	CreatedBy *uint64   `json:"created_by,string,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Concept) TableName() string {
	return "concepts"
}

// Term is the spelling of a concept in one language.
type Term struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement" json:"term_id,string"`
	ConceptID    uint64  `gorm:"index;not null" json:"concept_id,string"`
	LanguageCode string  `gorm:"size:10;not null" json:"language_code"`
	Text         string  `gorm:"size:255;not null" json:"text"`
	AudioRef     *string `gorm:"size:255" json:"audio_ref"`
	Hints        []Hint  `gorm:"foreignKey:TermID" json:"hints"`
}

func (Term) TableName() string {
	return "terms"
}

type Hint struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"hint_id,string"`
	TermID       uint64 `gorm:"index;not null" json:"term_id,string"`
	HintType     string `gorm:"size:30;not null" json:"hint_type"`
	HintContent  string `gorm:"type:text;not null" json:"hint_content"`
	LanguageCode string `gorm:"size:10;not null" json:"language_code"`
}

func (Hint) TableName() string {
	return "hints"
}
