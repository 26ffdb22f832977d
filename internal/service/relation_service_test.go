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
)

func TestRelationLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewRelationService(
		repository.NewStore(db, 5*time.Second),
		repository.NewRelationRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
	)
	ctx := context.Background()

	parent := testutil.CreateUser(t, db, "mom@example.com", model.Parent)
	child := testutil.CreateUser(t, db, "kid@example.com", model.Student)
	stranger := testutil.CreateUser(t, db, "other@example.com", model.Student)

	_, err := svc.Request(ctx, parent.ID, "ghost@example.com")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	_, err = svc.Request(ctx, parent.ID, "MOM@example.com")
	assert.ErrorIs(t, err, util.ErrSelfRelation)

	rel, err := svc.Request(ctx, parent.ID, "Kid@Example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RelationPending, rel.Status)
	assert.Equal(t, child.ID, rel.ChildUserID)

	_, err = svc.Request(ctx, parent.ID, "kid@example.com")
	assert.ErrorIs(t, err, util.ErrRelationExists)

	overview, err := svc.List(ctx, child.ID)
	require.NoError(t, err)
	require.Len(t, overview.PendingReceived, 1)
	assert.Equal(t, parent.ID, overview.PendingReceived[0].UserID)
	assert.Empty(t, overview.Parents)

	sent, err := svc.List(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, sent.PendingSent, 1)

	assert.ErrorIs(t, svc.Handle(ctx, stranger.ID, rel.ID, model.RelationApproved), util.ErrRelationNotFound)
	assert.ErrorIs(t, svc.Handle(ctx, child.ID, rel.ID, model.RelationPending), util.ErrInvalidStatus)
	assert.ErrorIs(t, svc.Handle(ctx, child.ID, 9999, model.RelationApproved), util.ErrRelationNotFound)

	require.NoError(t, svc.Handle(ctx, child.ID, rel.ID, model.RelationApproved))
	assert.ErrorIs(t, svc.Handle(ctx, child.ID, rel.ID, model.RelationRejected), util.ErrRelationAlreadyHandled)

	approved, err := repository.NewRelationRepository(db).IsApproved(parent.ID, child.ID)
	require.NoError(t, err)
	assert.True(t, approved)

	overview, err = svc.List(ctx, child.ID)
	require.NoError(t, err)
	assert.Empty(t, overview.PendingReceived)
	require.Len(t, overview.Parents, 1)
	assert.Equal(t, parent.Nickname, overview.Parents[0].Nickname)

	var notes []model.Notification
	require.NoError(t, db.Where("recipient_user_id = ?", parent.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationRelationHandled, notes[0].Type)
}

func TestRejectedRelationCanBeRequestedAgain(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewRelationService(
		repository.NewStore(db, 5*time.Second),
		repository.NewRelationRepository(db),
		repository.NewUserRepository(db),
		repository.NewNotificationRepository(db),
	)
	ctx := context.Background()

	parent := testutil.CreateUser(t, db, "dad@example.com", model.Parent)
	child := testutil.CreateUser(t, db, "kid@example.com", model.Student)

	rel, err := svc.Request(ctx, parent.ID, child.Email)
	require.NoError(t, err)
	require.NoError(t, svc.Handle(ctx, child.ID, rel.ID, model.RelationRejected))

	_, err = svc.Request(ctx, parent.ID, child.Email)
	assert.NoError(t, err)
}
