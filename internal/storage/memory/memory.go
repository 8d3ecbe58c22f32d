package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/storage"
	"github.com/google/uuid"
)

type MemoryStorage struct {
	contents map[models.Kind]map[string]*models.ContentItem
	users    map[string]*models.User
	mu       sync.RWMutex
}

func New() *MemoryStorage {
	return &MemoryStorage{
		contents: map[models.Kind]map[string]*models.ContentItem{
			models.KindTopic:   {},
			models.KindArticle: {},
		},
		users: make(map[string]*models.User),
	}
}

func (s *MemoryStorage) CreateContent(ctx context.Context, item *models.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Хранилище назначает идентификатор и время создания
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	copied := *item
	s.contents[item.Kind][item.ID] = &copied
	return nil
}

func (s *MemoryStorage) GetContent(ctx context.Context, kind models.Kind, id string) (*models.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.contents[kind][id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copied := *item
	return &copied, nil
}

func (s *MemoryStorage) ListContent(ctx context.Context, kind *models.Kind) ([]models.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.ContentItem
	for k, collection := range s.contents {
		if kind != nil && k != *kind {
			continue
		}
		for _, item := range collection {
			items = append(items, *item)
		}
	}

	// Сортировка по CreatedAt, новые первыми
	for i := 0; i < len(items)-1; i++ {
		for j := i + 1; j < len(items); j++ {
			if items[i].CreatedAt.Before(items[j].CreatedAt) {
				items[i], items[j] = items[j], items[i]
			}
		}
	}

	return items, nil
}

func (s *MemoryStorage) UpdateContent(ctx context.Context, kind models.Kind, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.contents[kind][id]
	if !exists {
		return storage.ErrNotFound
	}

	for name, value := range fields {
		switch name {
		case "title":
			item.Title, _ = value.(string)
		case "body":
			item.Body, _ = value.(string)
		case "category":
			item.Category, _ = value.(string)
		case "tags":
			item.Tags, _ = value.([]string)
		case "trending":
			item.Trending, _ = value.(bool)
		}
	}
	return nil
}

func (s *MemoryStorage) IncrementVotes(ctx context.Context, kind models.Kind, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.contents[kind][id]
	if !exists {
		return 0, storage.ErrNotFound
	}

	item.VoteCount += delta
	return item.VoteCount, nil
}

func (s *MemoryStorage) DeleteContent(ctx context.Context, kind models.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contents[kind][id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.contents[kind], id)
	return nil
}

func (s *MemoryStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copied := *user
	return &copied, nil
}

func (s *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemoryStorage) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, len(ids))
	for i, id := range ids {
		if user, exists := s.users[id]; exists {
			copied := *user
			users[i] = &copied
		}
	}
	return users, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
