package appctx

import (
	"sync"

	"github.com/ButyrinIA/forum/internal/auth"
)

// Theme - светлая или темная тема интерфейса
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Event - снимок состояния приложения для подписчиков
type Event struct {
	Theme   Theme
	Session *auth.Session
}

// App - явный контекст приложения (тема и сессия), передается вниз
// через конструкторы вместо глобального состояния. Единственный
// источник истины с явным контрактом подписки.
type App struct {
	mu      sync.RWMutex
	theme   Theme
	session *auth.Session
	subs    []func(Event)
}

func New() *App {
	return &App{theme: ThemeLight}
}

func (a *App) Theme() Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.theme
}

func (a *App) Session() *auth.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// ToggleTheme переключает тему и уведомляет подписчиков
func (a *App) ToggleTheme() Theme {
	a.mu.Lock()
	if a.theme == ThemeLight {
		a.theme = ThemeDark
	} else {
		a.theme = ThemeLight
	}
	theme := a.theme
	a.mu.Unlock()

	a.notify()
	return theme
}

// SetSession фиксирует переход сессии, обычно вызывается из
// auth.Manager.OnChange
func (a *App) SetSession(session *auth.Session) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	a.notify()
}

func (a *App) Subscribe(fn func(Event)) {
	a.mu.Lock()
	a.subs = append(a.subs, fn)
	a.mu.Unlock()
}

func (a *App) notify() {
	a.mu.RLock()
	event := Event{Theme: a.theme, Session: a.session}
	subs := make([]func(Event), len(a.subs))
	copy(subs, a.subs)
	a.mu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}
