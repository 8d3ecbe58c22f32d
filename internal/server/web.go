package server

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/ButyrinIA/forum/internal/appctx"
	"github.com/ButyrinIA/forum/internal/auth"
	"github.com/ButyrinIA/forum/internal/feed"
	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/router"
)

//go:embed templates/*
var templatesFS embed.FS

// pageData - общие данные всех страниц
type pageData struct {
	Title            string
	Theme            appctx.Theme
	Page             router.Page
	Session          *auth.Session
	SearchQuery      string
	SelectedCategory string
	State            feed.State
	Items            []models.ContentItem
	Trending         []models.ContentItem
	Categories       []categoryEntry
	Tabs             []string
}

type categoryEntry struct {
	Name  string
	Count int
	Icon  string
}

var suggestedCategories = []categoryEntry{
	{Name: "Programming", Count: 245, Icon: "💻"},
	{Name: "UI/UX", Count: 120, Icon: "🎨"},
	{Name: "Platform Tips", Count: 89, Icon: "💡"},
	{Name: "Community", Count: 156, Icon: "👥"},
	{Name: "Tutorials", Count: 203, Icon: "📚"},
	{Name: "News", Count: 98, Icon: "📰"},
}

var exploreTabs = []string{"Trending", "Latest", "Rising", "New Articles", "Popular"}

// renderer клонирует базовый шаблон и дорисовывает шаблон страницы,
// чтобы блоки content разных страниц не конфликтовали
type renderer struct {
	base *template.Template
}

func newRenderer() *renderer {
	base := template.Must(template.New("").
		Funcs(template.FuncMap{
			"timeAgo":  timeAgo,
			"truncate": truncate,
		}).
		ParseFS(templatesFS, "templates/base.html"))
	return &renderer{base: base}
}

func (r *renderer) render(w http.ResponseWriter, name string, data pageData) error {
	tmpl, err := r.base.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone template: %v", err)
	}
	if _, err := tmpl.ParseFS(templatesFS, "templates/"+name); err != nil {
		return fmt.Errorf("failed to parse page template %s: %v", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	page := s.router.Current()

	data := pageData{
		Theme:            s.app.Theme(),
		Page:             page,
		Session:          s.app.Session(),
		SearchQuery:      query,
		SelectedCategory: category,
	}

	var name string
	switch page {
	case router.PageHome:
		result := s.feed.Load(r.Context(), nil)
		data.State = result.State
		data.Trending = trendingOf(result.Items)
		data.Items = feed.Apply(result.Items, feed.Filter{Category: category, Query: query})
		data.Title = "Home"
		name = "home.html"
	case router.PageExplore:
		result := s.feed.Load(r.Context(), nil)
		data.State = result.State
		data.Trending = trendingOf(result.Items)
		data.Items = feed.Apply(result.Items, feed.Filter{Query: query})
		data.Tabs = exploreTabs
		data.Title = "Explore"
		name = "explore.html"
	case router.PageArticles:
		kind := models.KindArticle
		result := s.feed.Load(r.Context(), &kind)
		data.State = result.State
		data.Trending = trendingOf(result.Items)
		data.Items = feed.Apply(result.Items, feed.Filter{Query: query})
		data.Title = "Articles"
		name = "articles.html"
	case router.PageCategories:
		data.Categories = suggestedCategories
		data.Title = "Categories"
		name = "categories.html"
	case router.PageCreateTopic:
		// Форма всегда пустая: черновик намеренно не подставляется
		data.Title = "Create New Topic"
		name = "create_topic.html"
	case router.PageCreateArticle:
		data.Title = "Write New Article"
		name = "create_article.html"
	default:
		// Неизвестные и нереализованные страницы не отображают ничего
		data.Title = string(page)
		name = "blank.html"
	}

	if err := s.renderer.render(w, name, data); err != nil {
		log.Printf("Не удалось отрисовать страницу %s: %v", page, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func trendingOf(items []models.ContentItem) []models.ContentItem {
	if len(items) > 4 {
		items = items[:4]
	}
	return items
}

// timeAgo форматирует возраст: 42s, 5m, 3h, 2d
func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dd", hours/24)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
