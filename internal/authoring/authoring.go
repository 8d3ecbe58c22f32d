package authoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ButyrinIA/forum/internal/auth"
	"github.com/ButyrinIA/forum/internal/localstore"
	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/storage"
)

// Ошибки валидации отображаются рядом с формой, сетевой вызов
// при них не выполняется
var (
	ErrSignInRequired   = errors.New("sign in required to publish")
	ErrTitleRequired    = errors.New("title is required")
	ErrBodyRequired     = errors.New("body is required")
	ErrCategoryRequired = errors.New("category is required")
)

type Service struct {
	storage storage.Storage
	drafts  *localstore.Store
}

func NewService(store storage.Storage, drafts *localstore.Store) *Service {
	return &Service{storage: store, drafts: drafts}
}

// Publish валидирует форму и создает контент в удаленном хранилище.
// Идентификатор и createdAt назначает хранилище, счетчики нулевые.
func (s *Service) Publish(ctx context.Context, session *auth.Session, kind models.Kind, title, body, category, tags string) (*models.ContentItem, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	category = strings.TrimSpace(category)

	if title == "" {
		return nil, ErrTitleRequired
	}
	if body == "" {
		return nil, ErrBodyRequired
	}
	if category == "" {
		return nil, ErrCategoryRequired
	}
	if session == nil {
		return nil, ErrSignInRequired
	}

	item := &models.ContentItem{
		Kind:     kind,
		Title:    title,
		Body:     body,
		AuthorID: session.UserID,
		Author: models.AuthorSnapshot{
			ID:     session.UserID,
			Name:   session.Name,
			Avatar: session.Avatar,
		},
		Category: category,
		Tags:     ParseTags(tags),
	}
	if kind == models.KindArticle {
		item.ReadTime = readTime(body)
	}

	if err := s.storage.CreateContent(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to publish %s: %v", kind, err)
	}
	return item, nil
}

// ParseTags разбирает список тегов через запятую: сегменты обрезаются,
// пустые отбрасываются, порядок сохраняется, дубликаты не удаляются
func ParseTags(raw string) []string {
	var tags []string
	for _, segment := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(segment)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// readTime оценивает время чтения статьи при скорости 200 слов в минуту
func readTime(body string) string {
	words := len(strings.Fields(body))
	minutes := words / 200
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%dm", minutes)
}

// SaveDraft перезаписывает слот черновика, сессия не требуется
func (s *Service) SaveDraft(ctx context.Context, kind models.Kind, draft models.Draft) error {
	return s.drafts.SaveDraft(ctx, kind, draft)
}

// LoadDraft читает слот черновика. Форма создания его не подхватывает:
// автоподстановка черновика намеренно не реализована.
func (s *Service) LoadDraft(ctx context.Context, kind models.Kind) (*models.Draft, bool, error) {
	return s.drafts.LoadDraft(ctx, kind)
}
