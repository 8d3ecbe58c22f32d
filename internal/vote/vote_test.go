package vote

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

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

func TestCastVote(t *testing.T) {
	session := &auth.Session{UserID: "u1", Name: "Alice"}

	t.Run("Not signed in", func(t *testing.T) {
		store := new(mockStorage)
		coordinator := NewCoordinator(store, localstore.NewStore(localstore.NewMemoryKV()))

		item := &models.ContentItem{ID: "42", Kind: models.KindTopic, VoteCount: 10}
		applied, err := coordinator.CastVote(context.Background(), nil, item)

		assert.ErrorIs(t, err, ErrNotSignedIn, "Без сессии голос должен отклоняться")
		assert.False(t, applied)
		assert.Equal(t, 10, item.VoteCount, "Счетчик не должен меняться")
		store.AssertNotCalled(t, "IncrementVotes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Second vote is a no-op", func(t *testing.T) {
		store := new(mockStorage)
		store.On("IncrementVotes", mock.Anything, models.KindTopic, "42", 1).
			Return(46, nil)

		marks := localstore.NewStore(localstore.NewMemoryKV())
		coordinator := NewCoordinator(store, marks)

		item := &models.ContentItem{ID: "42", Kind: models.KindTopic, VoteCount: 45}

		applied, err := coordinator.CastVote(context.Background(), session, item)
		assert.NoError(t, err, "Ошибка при первом голосе")
		assert.True(t, applied)
		assert.Equal(t, 46, item.VoteCount, "Счетчик должен взять значение из хранилища")

		applied, err = coordinator.CastVote(context.Background(), session, item)
		assert.NoError(t, err, "Повторный голос должен быть no-op без ошибки")
		assert.False(t, applied)
		assert.Equal(t, 46, item.VoteCount)

		store.AssertNumberOfCalls(t, "IncrementVotes", 1)

		marked, err := marks.Marked(context.Background(), localstore.VoteKey(models.KindTopic, "42"))
		assert.NoError(t, err)
		assert.True(t, marked, "После голоса должна остаться ровно одна отметка")
	})

	t.Run("Failed increment rolls back the mark", func(t *testing.T) {
		store := new(mockStorage)
		store.On("IncrementVotes", mock.Anything, models.KindArticle, "7", 1).
			Return(0, errors.New("connection refused")).Once()
		store.On("IncrementVotes", mock.Anything, models.KindArticle, "7", 1).
			Return(181, nil).Once()

		marks := localstore.NewStore(localstore.NewMemoryKV())
		coordinator := NewCoordinator(store, marks)

		item := &models.ContentItem{ID: "7", Kind: models.KindArticle, VoteCount: 180}

		applied, err := coordinator.CastVote(context.Background(), session, item)
		assert.Error(t, err, "Ошибка хранилища должна отдаваться вызывающему")
		assert.False(t, applied)
		assert.Equal(t, 180, item.VoteCount, "Счетчик не должен меняться при ошибке")

		marked, markErr := marks.Marked(context.Background(), localstore.VoteKey(models.KindArticle, "7"))
		assert.NoError(t, markErr)
		assert.False(t, marked, "Отметка должна откатываться при ошибке инкремента")

		// После отката клиент может голосовать снова
		applied, err = coordinator.CastVote(context.Background(), session, item)
		assert.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, 181, item.VoteCount)
	})

	t.Run("Concurrent votes apply once", func(t *testing.T) {
		store := new(mockStorage)
		store.On("IncrementVotes", mock.Anything, models.KindTopic, "42", 1).
			Return(46, nil)

		marks := localstore.NewStore(localstore.NewMemoryKV())
		coordinator := NewCoordinator(store, marks)

		// Одновременные клики по одной кнопке: пока первый голос в полете,
		// остальные - no-op
		const voters = 50
		var wg sync.WaitGroup
		var applied int32
		for i := 0; i < voters; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				item := &models.ContentItem{ID: "42", Kind: models.KindTopic, VoteCount: 45}
				ok, err := coordinator.CastVote(context.Background(), session, item)
				assert.NoError(t, err)
				if ok {
					atomic.AddInt32(&applied, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&applied), "Применяться должен ровно один голос")
		store.AssertNumberOfCalls(t, "IncrementVotes", 1)

		marked, err := marks.Marked(context.Background(), localstore.VoteKey(models.KindTopic, "42"))
		assert.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("Votes on different items are independent", func(t *testing.T) {
		store := new(mockStorage)
		store.On("IncrementVotes", mock.Anything, models.KindTopic, "1", 1).Return(16, nil)
		store.On("IncrementVotes", mock.Anything, models.KindArticle, "1", 1).Return(251, nil)

		marks := localstore.NewStore(localstore.NewMemoryKV())
		coordinator := NewCoordinator(store, marks)

		topic := &models.ContentItem{ID: "1", Kind: models.KindTopic, VoteCount: 15}
		article := &models.ContentItem{ID: "1", Kind: models.KindArticle, VoteCount: 250}

		applied, err := coordinator.CastVote(context.Background(), session, topic)
		assert.NoError(t, err)
		assert.True(t, applied)

		applied, err = coordinator.CastVote(context.Background(), session, article)
		assert.NoError(t, err)
		assert.True(t, applied, "Ключ дедупликации должен включать вид контента")

		store.AssertExpectations(t)
	})
}

func TestHasVoted(t *testing.T) {
	store := new(mockStorage)
	store.On("IncrementVotes", mock.Anything, models.KindTopic, "42", 1).Return(1, nil)

	coordinator := NewCoordinator(store, localstore.NewStore(localstore.NewMemoryKV()))

	voted, err := coordinator.HasVoted(context.Background(), models.KindTopic, "42")
	assert.NoError(t, err)
	assert.False(t, voted)

	item := &models.ContentItem{ID: "42", Kind: models.KindTopic}
	_, err = coordinator.CastVote(context.Background(), &auth.Session{UserID: "u1"}, item)
	assert.NoError(t, err)

	voted, err = coordinator.HasVoted(context.Background(), models.KindTopic, "42")
	assert.NoError(t, err)
	assert.True(t, voted)
}
