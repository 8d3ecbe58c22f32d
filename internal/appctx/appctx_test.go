package appctx

import (
	"testing"

	"github.com/ButyrinIA/forum/internal/auth"
	"github.com/stretchr/testify/assert"
)

func TestTheme(t *testing.T) {
	app := New()
	assert.Equal(t, ThemeLight, app.Theme(), "Начальная тема - светлая")

	assert.Equal(t, ThemeDark, app.ToggleTheme())
	assert.Equal(t, ThemeDark, app.Theme())

	assert.Equal(t, ThemeLight, app.ToggleTheme(), "Повторное переключение возвращает светлую тему")
}

func TestSession(t *testing.T) {
	app := New()
	assert.Nil(t, app.Session())

	session := &auth.Session{UserID: "u1", Name: "Alice"}
	app.SetSession(session)
	assert.Equal(t, session, app.Session())

	app.SetSession(nil)
	assert.Nil(t, app.Session(), "Выход должен сбрасывать сессию")
}

func TestSubscribe(t *testing.T) {
	app := New()

	var events []Event
	app.Subscribe(func(event Event) {
		events = append(events, event)
	})

	app.ToggleTheme()
	app.SetSession(&auth.Session{UserID: "u1"})

	assert.Len(t, events, 2)
	assert.Equal(t, ThemeDark, events[0].Theme)
	assert.Nil(t, events[0].Session)
	assert.Equal(t, ThemeDark, events[1].Theme, "Событие несет полный снимок состояния")
	assert.Equal(t, "u1", events[1].Session.UserID)
}
