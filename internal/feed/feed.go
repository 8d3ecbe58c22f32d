package feed

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/storage"
	"github.com/graph-gophers/dataloader/v7"
)

// State - дискриминированное состояние результата загрузки:
// живые данные и встроенный набор никогда не смешиваются.
// StatePending - начальное состояние клиента до первого ответа;
// Load его не возвращает, значение закрепляет полный контракт состояний.
type State string

const (
	StatePending  State = "pending"
	StateLoaded   State = "loaded"
	StateFallback State = "fallback"
)

type Result struct {
	State State                `json:"state"`
	Items []models.ContentItem `json:"items"`
}

// Filter - параметры отбора: вид контента, точная категория
// и подстрока запроса без учета регистра
type Filter struct {
	Kind     *models.Kind
	Category string
	Query    string
}

// Assembler собирает упорядоченный отфильтрованный список контента
type Assembler struct {
	storage storage.Storage
	seed    []models.ContentItem
	authors *dataloader.Loader[string, *models.User]
}

func NewAssembler(store storage.Storage) *Assembler {
	a := &Assembler{
		storage: store,
		seed:    Seed(),
	}
	// Кэш отключен: имя и аватар автора должны разрешаться заново
	// при каждой сборке ленты
	a.authors = dataloader.NewBatchedLoader(
		a.batchUsers,
		dataloader.WithCache[string, *models.User](&dataloader.NoCache[string, *models.User]{}),
	)
	return a
}

func (a *Assembler) batchUsers(ctx context.Context, ids []string) []*dataloader.Result[*models.User] {
	results := make([]*dataloader.Result[*models.User], len(ids))
	users, err := a.storage.GetUsers(ctx, ids)
	if err != nil {
		for i := range results {
			results[i] = &dataloader.Result[*models.User]{Error: err}
		}
		return results
	}
	for i := range ids {
		results[i] = &dataloader.Result[*models.User]{Data: users[i]}
	}
	return results
}

// Load запрашивает полную коллекцию, новые первыми. При ошибке или пустом
// ответе результат деградирует к встроенному набору, ошибка наружу не
// отдается.
func (a *Assembler) Load(ctx context.Context, kind *models.Kind) Result {
	items, err := a.storage.ListContent(ctx, kind)
	if err != nil {
		log.Printf("Не удалось загрузить контент, используется встроенный набор: %v", err)
		return Result{State: StateFallback, Items: a.seedFor(kind)}
	}
	if len(items) == 0 {
		return Result{State: StateFallback, Items: a.seedFor(kind)}
	}

	a.resolveAuthors(ctx, items)
	return Result{State: StateLoaded, Items: items}
}

func (a *Assembler) seedFor(kind *models.Kind) []models.ContentItem {
	return Apply(a.seed, Filter{Kind: kind})
}

// resolveAuthors единообразно разрешает снимки авторов по идентификатору
// через батч к коллекции пользователей
func (a *Assembler) resolveAuthors(ctx context.Context, items []models.ContentItem) {
	seen := make(map[string]bool)
	var ids []string
	for i := range items {
		if id := items[i].AuthorID; id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	users, errs := a.authors.LoadMany(ctx, ids)()
	byID := make(map[string]*models.User)
	for i, id := range ids {
		if i < len(users) && users[i] != nil {
			byID[id] = users[i]
		}
	}
	for _, err := range errs {
		if err != nil {
			log.Printf("Не удалось разрешить авторов: %v", err)
			break
		}
	}

	for i := range items {
		if user, ok := byID[items[i].AuthorID]; ok {
			items[i].Author = models.AuthorSnapshot{
				ID:     user.ID,
				Name:   user.Name,
				Avatar: user.Avatar,
			}
		} else {
			items[i].Author = placeholderAuthor(items[i].AuthorID)
		}
	}
}

func placeholderAuthor(id string) models.AuthorSnapshot {
	return models.AuthorSnapshot{
		ID:     id,
		Name:   fmt.Sprintf("User %s", id),
		Avatar: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", id),
	}
}

// Apply - чистый синхронный фильтр, порядок входного списка сохраняется.
// Предикаты категории и запроса коммутируют.
func Apply(items []models.ContentItem, f Filter) []models.ContentItem {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	var filtered []models.ContentItem
	for _, item := range items {
		if f.Kind != nil && item.Kind != *f.Kind {
			continue
		}
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if query != "" && !matchesQuery(item, query) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func matchesQuery(item models.ContentItem, query string) bool {
	if strings.Contains(strings.ToLower(item.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(item.Body), query) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
