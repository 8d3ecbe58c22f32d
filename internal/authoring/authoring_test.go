package authoring

import (
	"context"
	"testing"
	"time"

	"github.com/ButyrinIA/forum/internal/auth"
	"github.com/ButyrinIA/forum/internal/localstore"
	"github.com/ButyrinIA/forum/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) CreateContent(ctx context.Context, item *models.ContentItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockStorage) GetContent(ctx context.Context, kind models.Kind, id string) (*models.ContentItem, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContentItem), args.Error(1)
}

func (m *mockStorage) ListContent(ctx context.Context, kind *models.Kind) ([]models.ContentItem, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContentItem), args.Error(1)
}

func (m *mockStorage) UpdateContent(ctx context.Context, kind models.Kind, id string, fields map[string]any) error {
	args := m.Called(ctx, kind, id, fields)
	return args.Error(0)
}

func (m *mockStorage) IncrementVotes(ctx context.Context, kind models.Kind, id string, delta int) (int, error) {
	args := m.Called(ctx, kind, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *mockStorage) DeleteContent(ctx context.Context, kind models.Kind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *mockStorage) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockStorage) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestService(store *mockStorage) *Service {
	return NewService(store, localstore.NewStore(localstore.NewMemoryKV()))
}

func TestPublish(t *testing.T) {
	session := &auth.Session{UserID: "u1", Name: "Alice", Avatar: "avatar-1"}

	t.Run("Creates topic", func(t *testing.T) {
		store := new(mockStorage)
		store.On("CreateContent", mock.Anything, mock.AnythingOfType("*models.ContentItem")).
			Run(func(args mock.Arguments) {
				item := args.Get(1).(*models.ContentItem)
				item.ID = "n1"
				item.CreatedAt = time.Now()
			}).
			Return(nil)

		service := newTestService(store)
		item, err := service.Publish(context.Background(), session, models.KindTopic,
			"  New Topic  ", "Body text", "Programming", "go, web")

		assert.NoError(t, err, "Ошибка при публикации")
		assert.Equal(t, "n1", item.ID, "Идентификатор должен назначаться хранилищем")
		assert.Equal(t, models.KindTopic, item.Kind)
		assert.Equal(t, "New Topic", item.Title, "Заголовок должен обрезаться")
		assert.Equal(t, "u1", item.AuthorID)
		assert.Equal(t, "Alice", item.Author.Name, "Снимок автора берется из сессии")
		assert.Equal(t, []string{"go", "web"}, item.Tags)
		assert.Zero(t, item.VoteCount, "Счетчики нового контента нулевые")
		assert.Zero(t, item.ReplyCount)
		assert.Empty(t, item.ReadTime, "У топика нет времени чтения")
		store.AssertExpectations(t)
	})

	t.Run("Article gets read time", func(t *testing.T) {
		store := new(mockStorage)
		store.On("CreateContent", mock.Anything, mock.Anything).Return(nil)

		service := newTestService(store)
		item, err := service.Publish(context.Background(), session, models.KindArticle,
			"Article", "short body", "Tutorials", "")

		assert.NoError(t, err)
		assert.Equal(t, "1m", item.ReadTime, "Минимальное время чтения - одна минута")
		assert.Nil(t, item.Tags)
	})

	t.Run("Empty title makes no remote call", func(t *testing.T) {
		store := new(mockStorage)
		service := newTestService(store)

		_, err := service.Publish(context.Background(), session, models.KindTopic,
			"   ", "Body", "Programming", "")

		assert.ErrorIs(t, err, ErrTitleRequired)
		store.AssertNotCalled(t, "CreateContent", mock.Anything, mock.Anything)
	})

	t.Run("Empty body rejected", func(t *testing.T) {
		store := new(mockStorage)
		service := newTestService(store)

		_, err := service.Publish(context.Background(), session, models.KindTopic,
			"Title", "", "Programming", "")

		assert.ErrorIs(t, err, ErrBodyRequired)
		store.AssertNotCalled(t, "CreateContent", mock.Anything, mock.Anything)
	})

	t.Run("Empty category rejected", func(t *testing.T) {
		store := new(mockStorage)
		service := newTestService(store)

		_, err := service.Publish(context.Background(), session, models.KindTopic,
			"Title", "Body", "", "")

		assert.ErrorIs(t, err, ErrCategoryRequired)
		store.AssertNotCalled(t, "CreateContent", mock.Anything, mock.Anything)
	})

	t.Run("Requires session", func(t *testing.T) {
		store := new(mockStorage)
		service := newTestService(store)

		_, err := service.Publish(context.Background(), nil, models.KindTopic,
			"Title", "Body", "Programming", "")

		assert.ErrorIs(t, err, ErrSignInRequired)
		store.AssertNotCalled(t, "CreateContent", mock.Anything, mock.Anything)
	})
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "web"}, ParseTags("go, web"))
	assert.Equal(t, []string{"go"}, ParseTags("  go  "))
	assert.Equal(t, []string{"go", "go"}, ParseTags("go,go"), "Дубликаты не удаляются")
	assert.Nil(t, ParseTags(""))
	assert.Nil(t, ParseTags(" , , "), "Пустые сегменты отбрасываются")
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags("a,b,,c"), "Порядок сохраняется")
}

func TestDrafts(t *testing.T) {
	store := new(mockStorage)
	service := newTestService(store)
	ctx := context.Background()

	_, exists, err := service.LoadDraft(ctx, models.KindTopic)
	assert.NoError(t, err)
	assert.False(t, exists)

	err = service.SaveDraft(ctx, models.KindTopic, models.Draft{Title: "Первый", Body: "Текст"})
	assert.NoError(t, err, "Ошибка при сохранении черновика")

	err = service.SaveDraft(ctx, models.KindTopic, models.Draft{Title: "Второй"})
	assert.NoError(t, err)

	draft, exists, err := service.LoadDraft(ctx, models.KindTopic)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "Второй", draft.Title, "Сохранение перезаписывает слот")

	// Сохранение черновика не трогает удаленное хранилище
	store.AssertNotCalled(t, "CreateContent", mock.Anything, mock.Anything)
}
