package usecase

import (
	"context"
	"strings"

	"propmedia/pkg/events"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
)

type ModerationAPI interface {
	ListPosts(ctx context.Context, q remote.ListQuery) (entity.PostPage, error)
	ApprovePost(ctx context.Context, id int64) error
	RejectPost(ctx context.Context, id int64, note string) error
}

// ModerationUseCase never changes post state locally; every decision goes
// to the API and the queue is refetched afterwards.
type ModerationUseCase interface {
	Queue(ctx context.Context, page int) (entity.PostPage, error)
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64, note string) error
}

type moderationUseCase struct {
	api         ModerationAPI
	broadcaster events.Broadcaster
	logger      *logger.Logger
}

func NewModerationUseCase(api ModerationAPI, broadcaster events.Broadcaster, logger *logger.Logger) ModerationUseCase {
	return &moderationUseCase{
		api:         api,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Queue asks for pending posts and drops anything else the API returns.
func (uc *moderationUseCase) Queue(ctx context.Context, page int) (entity.PostPage, error) {
	result, err := uc.api.ListPosts(ctx, remote.ListQuery{Status: entity.StatusPending, Page: page})
	if err != nil {
		return entity.PostPage{}, err
	}
	result.Items = entity.PendingOnly(result.Items)
	return result, nil
}

func (uc *moderationUseCase) Approve(ctx context.Context, id int64) error {
	if err := uc.api.ApprovePost(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("[MODERATION] approved post %d", id)
	uc.broadcaster.Broadcast(ctx, events.PostUpdated)
	return nil
}

func (uc *moderationUseCase) Reject(ctx context.Context, id int64, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrNoteRequired
	}
	if err := uc.api.RejectPost(ctx, id, note); err != nil {
		return err
	}
	uc.logger.Info("[MODERATION] rejected post %d", id)
	uc.broadcaster.Broadcast(ctx, events.PostUpdated)
	return nil
}
