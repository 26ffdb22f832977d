// Package testutil opens throwaway SQLite databases migrated with the
// production models and seeds the rows most tests need.
package testutil

import (
	"fmt"
	"testing"
	"vocaman_backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns an in-memory database private to the test. A single
// connection keeps every goroutine on the same memory database, so
// concurrent transactions queue up behind each other.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{Email: email, Nickname: email, Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// Relate stores a parent-child relation with the given status.
func Relate(t testing.TB, db *gorm.DB, parentID, childID uint64, status model.RelationStatus) *model.UserRelation {
	t.Helper()
	rel := &model.UserRelation{ParentUserID: parentID, ChildUserID: childID, Status: status}
	if err := db.Create(rel).Error; err != nil {
		t.Fatalf("create relation: %v", err)
	}
	return rel
}

func CreateDataset(t testing.TB, db *gorm.DB, ownerID uint64, name string) *model.Dataset {
	t.Helper()
	ds := &model.Dataset{
		Name:               name,
		OwnerUserID:        ownerID,
		SourceLanguageCode: "ko",
		TargetLanguageCode: "en",
	}
	if err := db.Create(ds).Error; err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	return ds
}

// AddWord creates a concept with one term per text and links it to the
// dataset. It returns the concept and the term ids in order.
func AddWord(t testing.TB, db *gorm.DB, datasetID uint64, texts ...string) (*model.Concept, []uint64) {
	t.Helper()
	concept := &model.Concept{ImageURL: fmt.Sprintf("https://img.test/%s.png", texts[0])}
	if err := db.Create(concept).Error; err != nil {
		t.Fatalf("create concept: %v", err)
	}
	if err := db.Create(&model.DatasetConcept{DatasetID: datasetID, ConceptID: concept.ID}).Error; err != nil {
		t.Fatalf("link concept: %v", err)
	}

	ids := make([]uint64, 0, len(texts))
	for i, text := range texts {
		lang := "en"
		if i%2 == 1 {
			lang = "ko"
		}
		term := &model.Term{ConceptID: concept.ID, LanguageCode: lang, Text: text}
		if err := db.Create(term).Error; err != nil {
			t.Fatalf("create term %s: %v", text, err)
		}
		ids = append(ids, term.ID)
	}
	return concept, ids
}

// LooseTerm creates a term whose concept belongs to no dataset.
func LooseTerm(t testing.TB, db *gorm.DB, text string) uint64 {
	t.Helper()
	concept := &model.Concept{ImageURL: "https://img.test/loose.png"}
	if err := db.Create(concept).Error; err != nil {
		t.Fatalf("create concept: %v", err)
	}
	term := &model.Term{ConceptID: concept.ID, LanguageCode: "en", Text: text}
	if err := db.Create(term).Error; err != nil {
		t.Fatalf("create term: %v", err)
	}
	return term.ID
}

func Mileage(t testing.TB, db *gorm.DB, userID uint64) int64 {
	t.Helper()
	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.Mileage
}
