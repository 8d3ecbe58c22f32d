package storage

import (
	"context"
	"errors"

	"github.com/ButyrinIA/forum/internal/models"
)

// ErrNotFound возвращается всеми реализациями для отсутствующих документов
var ErrNotFound = errors.New("not found")

// Storage - контракт удаленного хранилища контента.
// Коллекция выбирается видом контента (topics/articles), пользователи
// хранятся отдельно. Идентификатор и createdAt назначаются хранилищем
// при создании.
type Storage interface {
	CreateContent(ctx context.Context, item *models.ContentItem) error
	GetContent(ctx context.Context, kind models.Kind, id string) (*models.ContentItem, error)
	ListContent(ctx context.Context, kind *models.Kind) ([]models.ContentItem, error)
	UpdateContent(ctx context.Context, kind models.Kind, id string, fields map[string]any) error
	IncrementVotes(ctx context.Context, kind models.Kind, id string, delta int) (int, error)
	DeleteContent(ctx context.Context, kind models.Kind, id string) error
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context, ids []string) ([]*models.User, error)
	Close() error
}
