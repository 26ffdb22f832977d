package repository_test

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

func TestStoreDeadlineMapsToUnavailable(t *testing.T) {
	db := testutil.NewDB(t)
	store := repository.NewStore(db, 20*time.Millisecond)

	err := store.Read(context.Background(), func(db *gorm.DB) error {
		<-db.Statement.Context.Done()
		return db.Statement.Context.Err()
	})
	assert.ErrorIs(t, err, util.ErrStoreUnavailable)
	assert.Equal(t, 500, util.StatusOf(err))
}

func TestStoreTransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	store := repository.NewStore(db, time.Second)

	err := store.Transaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&model.User{Email: "a@test.dev", Nickname: "a", Role: model.Student}).Error; err != nil {
			return err
		}
		return util.ErrConflict
	})
	assert.ErrorIs(t, err, util.ErrConflict)

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMarkCompletedIsGuarded(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewHomeworkRepository(db)
	parent := testutil.CreateUser(t, db, "p@test.dev", model.Parent)
	child := testutil.CreateUser(t, db, "c@test.dev", model.Student)
	ds := testutil.CreateDataset(t, db, parent.ID, "words")

	a := &model.HomeworkAssignment{ParentUserID: parent.ID, ChildUserID: child.ID, DatasetID: ds.ID, Status: model.HomeworkInProgress}
	require.NoError(t, repo.Create(a))

	affected, err := repo.MarkCompleted(a.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.MarkCompleted(a.ID, time.Now())
	require.NoError(t, err)
	assert.Zero(t, affected, "second completion must not own the payout")

	moved, err := repo.TransitionStatus(a.ID, model.HomeworkAssigned, model.HomeworkInProgress)
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestCountCorrectIgnoresTermsOutsideDataset(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewHomeworkRepository(db)
	parent := testutil.CreateUser(t, db, "p@test.dev", model.Parent)
	child := testutil.CreateUser(t, db, "c@test.dev", model.Student)
	ds := testutil.CreateDataset(t, db, parent.ID, "words")
	concept, terms := testutil.AddWord(t, db, ds.ID, "cat", "고양이")

	a := &model.HomeworkAssignment{ParentUserID: parent.ID, ChildUserID: child.ID, DatasetID: ds.ID, Status: model.HomeworkInProgress}
	require.NoError(t, repo.Create(a))
	for _, term := range terms {
		require.NoError(t, repo.UpsertProgress(&model.HomeworkProgress{AssignmentID: a.ID, TermID: term, Status: model.ProgressCorrect, SubmittedAt: time.Now()}))
	}

	correct, err := repo.CountCorrect(a.ID, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), correct)

	// the concept leaves the dataset after the answers were recorded
	_, err = repository.NewDatasetRepository(db).RemoveConcept(ds.ID, concept.ID)
	require.NoError(t, err)

	correct, err = repo.CountCorrect(a.ID, ds.ID)
	require.NoError(t, err)
	assert.Zero(t, correct)
	total, err := repo.CountDatasetTerms(ds.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestLockStatsSeedsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	games := repository.NewGameRepository(db)
	user := testutil.CreateUser(t, db, "c@test.dev", model.Student)

	stats, err := games.LockStats(user.ID, "ko-en")
	require.NoError(t, err)
	stats.Record(true)
	require.NoError(t, games.SaveStats(stats))

	again, err := games.LockStats(user.ID, "ko-en")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Wins)

	list, err := games.ListStats(user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDisabledCacheIsHarmless(t *testing.T) {
	ctx := context.Background()
	for _, cache := range []*repository.Cache{nil, repository.NewCache(nil)} {
		assert.False(t, cache.Enabled())

		var dst map[string]interface{}
		assert.False(t, cache.GetGameSession(ctx, 1, &dst))
		cache.SetGameSession(ctx, 1, map[string]string{"a": "b"})
		cache.InvalidateGameSession(ctx, 1)
		assert.NoError(t, cache.RevokeToken(ctx, "jti", time.Now().Add(time.Hour)))
		assert.False(t, cache.IsTokenRevoked(ctx, "jti"))
	}
}
