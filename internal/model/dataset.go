package model

import "fmt"

// swagger:model Dataset
type Dataset struct {
	ID                 uint64 `gorm:"primaryKey;autoIncrement" json:"dataset_id,string"`
	Name               string `gorm:"size:255;not null" json:"name"`
	OwnerUserID        uint64 `gorm:"index;not null" json:"owner_user_id,string"`
	SourceLanguageCode string `gorm:"size:10;not null" json:"source_language_code"`
	TargetLanguageCode string `gorm:"size:10;not null" json:"target_language_code"`
	IsOfficial         bool   `gorm:"not null;default:false" json:"is_official"`
	RecommendedGrade   *int   `json:"recommended_grade,omitempty"`
	Timestamps
}

func (Dataset) TableName() string {
	return "datasets"
}

// LanguagePair is the key user statistics are grouped by, e.g. "ko-en".
func (d *Dataset) LanguagePair() string {
	return fmt.Sprintf("%s-%s", d.SourceLanguageCode, d.TargetLanguageCode)
}

type DatasetConcept struct {
	DatasetID uint64 `gorm:"primaryKey;autoIncrement:false" json:"dataset_id,string"`
	ConceptID uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"concept_id,string"`
}

func (DatasetConcept) TableName() string {
	return "dataset_concepts"
}

// DatasetSummary is a dataset joined with its owner's nickname.
type DatasetSummary struct {
	Dataset
	OwnerNickname string `json:"owner_nickname"`
}
