package router

import "sync"

// Page - одна из страниц закрытого набора
type Page string

const (
	PageHome          Page = "home"
	PageExplore       Page = "explore"
	PageCategories    Page = "categories"
	PageArticles      Page = "articles"
	PageCreateTopic   Page = "create-topic"
	PageCreateArticle Page = "create-article"
	PageMyTopics      Page = "my-topics"
	PageMyAnswers     Page = "my-answers"
	PageBookmarks     Page = "bookmarks"
	PageDrafts        Page = "drafts"
)

var known = map[Page]bool{
	PageHome:          true,
	PageExplore:       true,
	PageCategories:    true,
	PageArticles:      true,
	PageCreateTopic:   true,
	PageCreateArticle: true,
	PageMyTopics:      true,
	PageMyAnswers:     true,
	PageBookmarks:     true,
	PageDrafts:        true,
}

// Known сообщает, входит ли страница в закрытый набор.
// Неизвестные значения не отображаются (слой отрисовки не рисует ничего).
func Known(page Page) bool {
	return known[page]
}

// Router - один слот текущей страницы. Переход безусловно заменяет
// значение: ни истории, ни охраны, ни синхронизации с URL.
type Router struct {
	mu      sync.RWMutex
	current Page
	subs    []func(Page)
}

func New() *Router {
	return &Router{current: PageHome}
}

func (r *Router) Current() Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate заменяет текущую страницу и уведомляет подписчиков
func (r *Router) Navigate(page Page) {
	r.mu.Lock()
	r.current = page
	subs := make([]func(Page), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(page)
	}
}

func (r *Router) OnChange(fn func(Page)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}
