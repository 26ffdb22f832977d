package service

import (
	"context"
	"testing"
	"time"
	"vocaman_backend/internal/model"
	"vocaman_backend/internal/repository"
	"vocaman_backend/internal/testutil"
	"vocaman_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDatasetService(t *testing.T) (*DatasetService, *ContentService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db, 5*time.Second)
	content := repository.NewContentRepository(db)
	return NewDatasetService(store, repository.NewDatasetRepository(db), content, repository.NewCache(nil)),
		NewContentService(store, content),
		db
}

func TestDatasetCreatePermissions(t *testing.T) {
	svc, _, db := newDatasetService(t)
	ctx := context.Background()
	parent := testutil.CreateUser(t, db, "mom@example.com", model.Parent)
	kid := testutil.CreateUser(t, db, "kid@example.com", model.Student)
	grade := 1

	in := DatasetInput{Name: " Animals ", SourceLanguageCode: "ko", TargetLanguageCode: "en"}
	ds, err := svc.Create(ctx, parent.ID, parent.Role, in)
	require.NoError(t, err)
	assert.Equal(t, "Animals", ds.Name)
	assert.False(t, ds.IsOfficial)

	_, err = svc.Create(ctx, kid.ID, kid.Role, in)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	official := in
	official.Official = true
	official.RecommendedGrade = &grade
	_, err = svc.Create(ctx, parent.ID, parent.Role, official)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	ds, err = svc.Create(ctx, parent.ID, model.Admin, official)
	require.NoError(t, err)
	assert.True(t, ds.IsOfficial)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ds.ID, list[0].ID, "newest first")
	assert.Equal(t, parent.Nickname, list[0].OwnerNickname)
}

func TestDatasetOwnerOnlyMutations(t *testing.T) {
	svc, _, db := newDatasetService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "mom@example.com", model.Parent)
	other := testutil.CreateUser(t, db, "dad@example.com", model.Parent)
	ds := testutil.CreateDataset(t, db, owner.ID, "animals")
	name := "pets"

	assert.ErrorIs(t, svc.Update(ctx, other.ID, ds.ID, DatasetPatch{Name: &name}), util.ErrPermissionDenied)
	assert.ErrorIs(t, svc.Update(ctx, owner.ID, ds.ID, DatasetPatch{}), util.ErrNoFieldsProvided)
	assert.ErrorIs(t, svc.Update(ctx, owner.ID, 9999, DatasetPatch{Name: &name}), util.ErrDatasetNotFound)
	require.NoError(t, svc.Update(ctx, owner.ID, ds.ID, DatasetPatch{Name: &name}))

	summary, err := svc.Get(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "pets", summary.Name)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, ds.ID), util.ErrPermissionDenied)
}

func TestDatasetDeleteRefusedWhileAssigned(t *testing.T) {
	svc, _, db := newDatasetService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "mom@example.com", model.Parent)
	kid := testutil.CreateUser(t, db, "kid@example.com", model.Student)
	ds := testutil.CreateDataset(t, db, owner.ID, "animals")
	testutil.AddWord(t, db, ds.ID, "cat")

	a := &model.HomeworkAssignment{ParentUserID: owner.ID, ChildUserID: kid.ID, DatasetID: ds.ID, Status: model.HomeworkAssigned}
	require.NoError(t, db.Create(a).Error)
	assert.ErrorIs(t, svc.Delete(ctx, owner.ID, ds.ID), util.ErrDatasetInUse)

	require.NoError(t, db.Delete(a).Error)
	require.NoError(t, svc.Delete(ctx, owner.ID, ds.ID))

	_, err := svc.Get(ctx, ds.ID)
	assert.ErrorIs(t, err, util.ErrDatasetNotFound)

	var links int64
	require.NoError(t, db.Model(&model.DatasetConcept{}).Where("dataset_id = ?", ds.ID).Count(&links).Error)
	assert.Zero(t, links)
}

func TestDatasetConceptMembership(t *testing.T) {
	svc, _, db := newDatasetService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "mom@example.com", model.Parent)
	ds := testutil.CreateDataset(t, db, owner.ID, "animals")
	other := testutil.CreateDataset(t, db, owner.ID, "zoo")
	concept, _ := testutil.AddWord(t, db, other.ID, "lion")

	assert.ErrorIs(t, svc.AddConcept(ctx, owner.ID, ds.ID, 9999), util.ErrConceptNotFound)
	require.NoError(t, svc.AddConcept(ctx, owner.ID, ds.ID, concept.ID))
	assert.ErrorIs(t, svc.AddConcept(ctx, owner.ID, ds.ID, concept.ID), util.ErrConceptInDataset)

	require.NoError(t, svc.RemoveConcept(ctx, owner.ID, ds.ID, concept.ID))
	assert.ErrorIs(t, svc.RemoveConcept(ctx, owner.ID, ds.ID, concept.ID), util.ErrConceptNotMember)
}

func TestAddCustomWord(t *testing.T) {
	svc, content, db := newDatasetService(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "mom@example.com", model.Parent)
	ds := testutil.CreateDataset(t, db, owner.ID, "animals")
	audio := "3f2504e0-4f89-11d3-9a0c-0305e82c3301.mp3"

	terms := []TermInput{
		{LanguageCode: "en", Text: " cat ", AudioRef: &audio, Hints: []HintInput{{HintType: "text", HintContent: "says meow", LanguageCode: "en"}}},
		{LanguageCode: "ko", Text: "고양이"},
	}

	_, err := svc.AddCustomWord(ctx, owner.ID, ds.ID, CustomWordInput{Terms: terms})
	assert.ErrorIs(t, err, util.ErrInvalidInput, "neither conceptId nor imageUrl")
	_, err = svc.AddCustomWord(ctx, owner.ID, ds.ID, CustomWordInput{ConceptID: 1, ImageURL: "x", Terms: terms})
	assert.ErrorIs(t, err, util.ErrInvalidInput, "both conceptId and imageUrl")
	_, err = svc.AddCustomWord(ctx, owner.ID, ds.ID, CustomWordInput{ImageURL: "https://img.test/cat.png"})
	assert.ErrorIs(t, err, util.ErrInvalidInput, "no terms")

	conceptID, err := svc.AddCustomWord(ctx, owner.ID, ds.ID, CustomWordInput{ImageURL: "https://img.test/cat.png", Terms: terms})
	require.NoError(t, err)

	concept, err := content.GetConcept(ctx, conceptID)
	require.NoError(t, err)
	assert.Equal(t, "https://img.test/cat.png", concept.ImageURL)

	total, err := repository.NewHomeworkRepository(db).CountDatasetTerms(ds.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var cat model.Term
	require.NoError(t, db.Where("text = ?", "cat").First(&cat).Error)
	term, err := content.GetTerm(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, term.Hints, 1)
	assert.Equal(t, "says meow", term.Hints[0].HintContent)
	require.NotNil(t, term.AudioRef)

	// adding to an existing concept reuses it
	again, err := svc.AddCustomWord(ctx, owner.ID, ds.ID, CustomWordInput{ConceptID: conceptID, Terms: []TermInput{{LanguageCode: "ja", Text: "ねこ"}}})
	require.NoError(t, err)
	assert.Equal(t, conceptID, again)

	_, err = content.GetTerm(ctx, 9999)
	assert.ErrorIs(t, err, util.ErrTermNotFound)
}
