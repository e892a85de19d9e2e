package usecase

import (
	"context"
	"sync"

	"propmedia/pkg/events"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/repo/remote"

	"github.com/stretchr/testify/mock"
)

type MockPostAPI struct {
	mock.Mock
}

func (m *MockPostAPI) ListPosts(ctx context.Context, q remote.ListQuery) (entity.PostPage, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(entity.PostPage), args.Error(1)
}

func (m *MockPostAPI) PostsByCategory(ctx context.Context, category entity.Category, q remote.ListQuery) (entity.PostPage, error) {
	args := m.Called(ctx, category, q)
	return args.Get(0).(entity.PostPage), args.Error(1)
}

func (m *MockPostAPI) ApprovedPosts(ctx context.Context, page int) (entity.PostPage, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(entity.PostPage), args.Error(1)
}

func (m *MockPostAPI) GetPost(ctx context.Context, id int64) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostAPI) ApprovedPost(ctx context.Context, id int64) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostAPI) CreatePost(ctx context.Context, p entity.NewPost) (*entity.Post, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostAPI) UpdatePost(ctx context.Context, id int64, title, description string) (*entity.Post, error) {
	args := m.Called(ctx, id, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostAPI) DeletePost(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostAPI) UploadMedia(ctx context.Context, postID int64, file entity.Upload) (*entity.Media, error) {
	args := m.Called(ctx, postID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Media), args.Error(1)
}

func (m *MockPostAPI) DeleteMedia(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostAPI) ApprovePost(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostAPI) RejectPost(ctx context.Context, id int64, note string) error {
	return m.Called(ctx, id, note).Error(0)
}

func (m *MockPostAPI) Generate(ctx context.Context, in entity.AssistRequest) (*entity.Suggestion, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Suggestion), args.Error(1)
}

func (m *MockPostAPI) SubmitContact(ctx context.Context, msg entity.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockPostAPI) ListContacts(ctx context.Context, page, perPage int) (entity.ContactPage, error) {
	args := m.Called(ctx, page, perPage)
	return args.Get(0).(entity.ContactPage), args.Error(1)
}

// recordingBroadcaster keeps every broadcast kind in order.
type recordingBroadcaster struct {
	mu    sync.Mutex
	kinds []events.Kind
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, kind events.Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kinds = append(b.kinds, kind)
}

func (b *recordingBroadcaster) Kinds() []events.Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Kind(nil), b.kinds...)
}
