package usecase

import (
	"context"
	"testing"

	"propmedia/pkg/events"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestModerationUseCase_QueueKeepsOnlyPending(t *testing.T) {
	api := new(MockPostAPI)
	uc := NewModerationUseCase(api, &recordingBroadcaster{}, logger.New())
	ctx := context.Background()

	api.On("ListPosts", ctx, remote.ListQuery{Status: entity.StatusPending, Page: 1}).Return(entity.PostPage{Items: []entity.Post{
		{ID: 1, Status: entity.StatusPending},
		{ID: 2, Status: entity.StatusApproved},
		{ID: 3, Status: entity.StatusPending},
	}}, nil)

	page, err := uc.Queue(ctx, 1)

	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(1), page.Items[0].ID)
	assert.Equal(t, int64(3), page.Items[1].ID)
}

func TestModerationUseCase_RejectRequiresNote(t *testing.T) {
	api := new(MockPostAPI)
	b := &recordingBroadcaster{}
	uc := NewModerationUseCase(api, b, logger.New())

	for _, note := range []string{"", "   ", "\n\t"} {
		err := uc.Reject(context.Background(), 4, note)
		assert.ErrorIs(t, err, ErrNoteRequired)
	}

	api.AssertNotCalled(t, "RejectPost", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, b.Kinds())
}

func TestModerationUseCase_RejectTrimsNote(t *testing.T) {
	api := new(MockPostAPI)
	b := &recordingBroadcaster{}
	uc := NewModerationUseCase(api, b, logger.New())
	ctx := context.Background()
	api.On("RejectPost", ctx, int64(4), "Blurry photos").Return(nil)

	require.NoError(t, uc.Reject(ctx, 4, "  Blurry photos "))
	assert.Equal(t, []events.Kind{events.PostUpdated}, b.Kinds())
}

func TestModerationUseCase_ApproveFailureKeepsState(t *testing.T) {
	api := new(MockPostAPI)
	b := &recordingBroadcaster{}
	uc := NewModerationUseCase(api, b, logger.New())
	ctx := context.Background()
	apiErr := &remote.APIError{Status: 500, Message: "Server exploded"}
	api.On("ApprovePost", ctx, int64(4)).Return(apiErr).Once()
	api.On("ApprovePost", ctx, int64(5)).Return(nil).Once()

	err := uc.Approve(ctx, 4)
	assert.Equal(t, "Server exploded", remote.Message(err, remote.DefaultErrorMessage))
	assert.Empty(t, b.Kinds())

	require.NoError(t, uc.Approve(ctx, 5))
	assert.Equal(t, []events.Kind{events.PostUpdated}, b.Kinds())
}
