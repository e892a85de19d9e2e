package usecase

import (
	"context"
	"fmt"

	"propmedia/pkg/events"
	"propmedia/pkg/logger"
	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"
	"propmedia/services/web/internal/view"
)

// PostAPI is the slice of the content API the post screens use.
type PostAPI interface {
	ListPosts(ctx context.Context, q remote.ListQuery) (entity.PostPage, error)
	PostsByCategory(ctx context.Context, category entity.Category, q remote.ListQuery) (entity.PostPage, error)
	ApprovedPosts(ctx context.Context, page int) (entity.PostPage, error)
	GetPost(ctx context.Context, id int64) (*entity.Post, error)
	ApprovedPost(ctx context.Context, id int64) (*entity.Post, error)
	CreatePost(ctx context.Context, p entity.NewPost) (*entity.Post, error)
	UpdatePost(ctx context.Context, id int64, title, description string) (*entity.Post, error)
	DeletePost(ctx context.Context, id int64) error
	UploadMedia(ctx context.Context, postID int64, file entity.Upload) (*entity.Media, error)
	DeleteMedia(ctx context.Context, id int64) error
}

type AssistAPI interface {
	Generate(ctx context.Context, in entity.AssistRequest) (*entity.Suggestion, error)
}

// UpdateResult reports how far an edit got. Uploaded counts the new files
// stored before the first failure.
type UpdateResult struct {
	Post     *entity.Post
	Uploaded int
}

type PostUseCase interface {
	List(ctx context.Context, f entity.PostFilter) (entity.PostPage, error)
	Get(ctx context.Context, id int64, public bool) (*entity.Post, error)
	Editable(ctx context.Context, id int64, user *entity.User) (*entity.Post, error)
	Deletable(ctx context.Context, id int64, user *entity.User) (*entity.Post, error)
	IssueSubmitToken() string
	Create(ctx context.Context, submitToken string, p entity.NewPost) (*entity.Post, error)
	Update(ctx context.Context, id int64, title, description string, uploads []entity.Upload) (*UpdateResult, error)
	Delete(ctx context.Context, id int64) error
	DeleteMedia(ctx context.Context, id int64) error
	Suggest(ctx context.Context, req entity.AssistRequest) (*entity.Suggestion, error)
	Source() view.Source
}

type postUseCase struct {
	api         PostAPI
	assist      AssistAPI
	guard       *SubmitGuard
	broadcaster events.Broadcaster
	logger      *logger.Logger
}

func NewPostUseCase(
	api PostAPI,
	assist AssistAPI,
	guard *SubmitGuard,
	broadcaster events.Broadcaster,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		api:         api,
		assist:      assist,
		guard:       guard,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// apiSource lists and deletes without broadcasting; list views announce
// their own deletes.
type apiSource struct {
	api PostAPI
}

func (s apiSource) List(ctx context.Context, f entity.PostFilter) (entity.PostPage, error) {
	if f.Category != "" && !f.Category.Valid() {
		return entity.PostPage{}, ErrInvalidCategory
	}
	q := remote.ListQuery{Status: f.Status, Page: f.Page, PerPage: f.PerPage}
	if f.Public {
		if f.Category == "" {
			return s.api.ApprovedPosts(ctx, f.Page)
		}
		// no category filter on the public listing; the category route
		// takes the approved status instead
		return s.api.PostsByCategory(ctx, f.Category, remote.ListQuery{Status: entity.StatusApproved, Page: f.Page})
	}
	if f.Category != "" {
		return s.api.PostsByCategory(ctx, f.Category, q)
	}
	return s.api.ListPosts(ctx, q)
}

func (s apiSource) Delete(ctx context.Context, id int64) error {
	return s.api.DeletePost(ctx, id)
}

func (uc *postUseCase) Source() view.Source {
	return apiSource{api: uc.api}
}

func (uc *postUseCase) List(ctx context.Context, f entity.PostFilter) (entity.PostPage, error) {
	return apiSource{api: uc.api}.List(ctx, f)
}

func (uc *postUseCase) Get(ctx context.Context, id int64, public bool) (*entity.Post, error) {
	if public {
		return uc.api.ApprovedPost(ctx, id)
	}
	return uc.api.GetPost(ctx, id)
}

// Editable loads a post user may change, or ErrForbidden.
func (uc *postUseCase) Editable(ctx context.Context, id int64, user *entity.User) (*entity.Post, error) {
	return uc.owned(ctx, id, user, access.CanEditPost)
}

// Deletable loads a post user may delete, or ErrForbidden.
func (uc *postUseCase) Deletable(ctx context.Context, id int64, user *entity.User) (*entity.Post, error) {
	return uc.owned(ctx, id, user, access.CanDeletePost)
}

func (uc *postUseCase) owned(ctx context.Context, id int64, user *entity.User, can func(*entity.User, *entity.Post) bool) (*entity.Post, error) {
	post, err := uc.api.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !can(user, post) {
		uc.logger.Warn("[POSTS] user %d refused on post %d owned by %d", userID(user), id, post.UserID)
		return nil, ErrForbidden
	}
	return post, nil
}

func userID(u *entity.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func (uc *postUseCase) IssueSubmitToken() string {
	return uc.guard.Issue()
}

func (uc *postUseCase) Create(ctx context.Context, submitToken string, p entity.NewPost) (*entity.Post, error) {
	if err := uc.guard.Claim(ctx, submitToken); err != nil {
		return nil, err
	}

	post, err := uc.api.CreatePost(ctx, p)
	if err != nil {
		uc.guard.Release(ctx, submitToken)
		return nil, err
	}

	uc.logger.Info("[POSTS] created post %d (%s, %s)", post.ID, p.PostType, p.Category)
	uc.broadcaster.Broadcast(ctx, events.PostCreated)
	return post, nil
}

// Update saves the text first, then uploads new files one at a time in the
// given order, stopping at the first failure.
func (uc *postUseCase) Update(ctx context.Context, id int64, title, description string, uploads []entity.Upload) (*UpdateResult, error) {
	post, err := uc.api.UpdatePost(ctx, id, title, description)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{Post: post}
	defer uc.broadcaster.Broadcast(ctx, events.PostUpdated)

	for _, file := range uploads {
		media, err := uc.api.UploadMedia(ctx, id, file)
		if err != nil {
			uc.logger.Warn("[POSTS] upload %d of %d for post %d failed: %v", result.Uploaded+1, len(uploads), id, err)
			return result, fmt.Errorf("upload of %s failed after %d of %d files: %w", file.Filename, result.Uploaded, len(uploads), err)
		}
		post.Media = append(post.Media, *media)
		result.Uploaded++
	}

	return result, nil
}

func (uc *postUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.api.DeletePost(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("[POSTS] deleted post %d", id)
	uc.broadcaster.Broadcast(ctx, events.PostDeleted)
	return nil
}

func (uc *postUseCase) DeleteMedia(ctx context.Context, id int64) error {
	if err := uc.api.DeleteMedia(ctx, id); err != nil {
		return err
	}
	uc.broadcaster.Broadcast(ctx, events.PostUpdated)
	return nil
}

func (uc *postUseCase) Suggest(ctx context.Context, req entity.AssistRequest) (*entity.Suggestion, error) {
	return uc.assist.Generate(ctx, req)
}
