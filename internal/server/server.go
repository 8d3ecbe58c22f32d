package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ButyrinIA/forum/internal/appctx"
	"github.com/ButyrinIA/forum/internal/auth"
	"github.com/ButyrinIA/forum/internal/authoring"
	"github.com/ButyrinIA/forum/internal/config"
	"github.com/ButyrinIA/forum/internal/feed"
	"github.com/ButyrinIA/forum/internal/localstore"
	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/router"
	"github.com/ButyrinIA/forum/internal/storage"
	"github.com/ButyrinIA/forum/internal/vote"
)

type Server struct {
	cfg       *config.Config
	storage   storage.Storage
	auth      *auth.Manager
	app       *appctx.App
	router    *router.Router
	feed      *feed.Assembler
	votes     *vote.Coordinator
	authoring *authoring.Service
	hub       *hub
	renderer  *renderer
	handler   http.Handler
}

func New(cfg *config.Config, store storage.Storage, kv localstore.KV) *Server {
	local := localstore.NewStore(kv)

	s := &Server{
		cfg:       cfg,
		storage:   store,
		auth:      auth.NewManager(store, cfg.Auth.Secret, cfg.Auth.TokenTTL),
		app:       appctx.New(),
		router:    router.New(),
		feed:      feed.NewAssembler(store),
		votes:     vote.NewCoordinator(store, local),
		authoring: authoring.NewService(store, local),
		hub:       newHub(),
		renderer:  newRenderer(),
	}

	// Переходы сессии попадают в контекст приложения через явную подписку
	s.auth.OnChange(s.app.SetSession)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/navigate", s.handleNavigate)
	mux.HandleFunc("/theme/toggle", s.handleThemeToggle)
	mux.HandleFunc("/ws", s.hub.handleWS)
	mux.HandleFunc("/api/auth/signup", s.handleSignUp)
	mux.HandleFunc("/api/auth/signin", s.handleSignIn)
	mux.HandleFunc("/api/auth/provider", s.handleSignInWithProvider)
	mux.HandleFunc("/api/auth/signout", s.handleSignOut)
	mux.HandleFunc("/api/me", s.handleMe)
	mux.HandleFunc("/api/feed", s.handleFeed)
	mux.HandleFunc("/api/content", s.handleCreateContent)
	mux.HandleFunc("/api/vote", s.handleVote)
	mux.HandleFunc("/api/draft", s.handleDraft)
	s.handler = s.withAuth(mux)

	return s
}

func (s *Server) Run() error {
	log.Printf("Сервер слушает порт %s", s.cfg.Server.Port)
	return http.ListenAndServe(":"+s.cfg.Server.Port, s.handler)
}

// contextKey - неэкспортируемый тип ключей контекста запроса,
// исключает коллизии со строковыми ключами других пакетов
type contextKey string

const userIDKey contextKey = "userID"

// withAuth извлекает пользователя из bearer-токена или cookie
// и кладет его идентификатор в контекст запроса
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		} else if cookie, err := r.Cookie("token"); err == nil {
			token = cookie.Value
		}

		if token != "" {
			if userID, err := s.auth.ValidateToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
		}

		next.ServeHTTP(w, r)
	})
}

// sessionFrom строит сессию запроса: сначала токен, затем слот менеджера.
// Возврат к слоту менеджера намеренный: сессия моделируется как одна на
// браузер (серверные формы не несут токен), а не как межпользовательская
// аутентификация.
func (s *Server) sessionFrom(r *http.Request) *auth.Session {
	if userID, ok := r.Context().Value(userIDKey).(string); ok {
		if session, err := s.auth.Lookup(r.Context(), userID); err == nil {
			return session
		}
	}
	return s.auth.Current()
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) issueToken(w http.ResponseWriter, session *auth.Session) (string, error) {
	token, err := s.auth.GenerateToken(session.UserID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{Name: "token", Value: token, Path: "/", HttpOnly: true})
	return token, nil
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if errors.Is(err, auth.ErrUserExists) {
		writeError(w, http.StatusConflict, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := s.issueToken(w, session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": session})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := s.issueToken(w, session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": session})
}

func (s *Server) handleSignInWithProvider(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email  string `json:"email"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	session, err := s.auth.SignInWithProvider(r.Context(), req.Email, req.Name, req.Avatar)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := s.issueToken(w, session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": session})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.auth.SignOut()
	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session := s.sessionFrom(r)
	if session == nil {
		writeError(w, http.StatusUnauthorized, errors.New("not signed in"))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func parseKind(raw string) (*models.Kind, error) {
	switch raw {
	case "":
		return nil, nil
	case string(models.KindTopic):
		kind := models.KindTopic
		return &kind, nil
	case string(models.KindArticle):
		kind := models.KindArticle
		return &kind, nil
	default:
		return nil, errors.New("unknown content kind")
	}
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := s.feed.Load(r.Context(), kind)
	result.Items = feed.Apply(result.Items, feed.Filter{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Kind     models.Kind `json:"kind"`
		Title    string      `json:"title"`
		Body     string      `json:"body"`
		Category string      `json:"category"`
		Tags     string      `json:"tags"`
	}
	if isForm(r) {
		// Отправка из серверной формы создания
		req.Kind = models.Kind(r.URL.Query().Get("form"))
		req.Title = r.FormValue("title")
		req.Body = r.FormValue("body")
		req.Category = r.FormValue("category")
		req.Tags = r.FormValue("tags")
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Kind != models.KindTopic && req.Kind != models.KindArticle {
		writeError(w, http.StatusBadRequest, errors.New("unknown content kind"))
		return
	}

	item, err := s.authoring.Publish(r.Context(), s.sessionFrom(r), req.Kind, req.Title, req.Body, req.Category, req.Tags)
	switch {
	case errors.Is(err, authoring.ErrSignInRequired):
		writeError(w, http.StatusUnauthorized, err)
		return
	case errors.Is(err, authoring.ErrTitleRequired),
		errors.Is(err, authoring.ErrBodyRequired),
		errors.Is(err, authoring.ErrCategoryRequired):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.hub.broadcast(item)
	if isForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Kind models.Kind `json:"kind"`
		ID   string      `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	item, err := s.storage.GetContent(r.Context(), req.Kind, req.ID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	applied, err := s.votes.CastVote(r.Context(), s.sessionFrom(r), item)
	if errors.Is(err, vote.ErrNotSignedIn) {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		// Голос не зарегистрирован, счетчик у клиента не меняется
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"applied": applied, "voteCount": item.VoteCount})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r.URL.Query().Get("kind"))
	if err != nil || kind == nil {
		writeError(w, http.StatusBadRequest, errors.New("unknown content kind"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		draft, exists, err := s.authoring.LoadDraft(r.Context(), *kind)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"exists": exists, "draft": draft})
	case http.MethodPut, http.MethodPost:
		var draft models.Draft
		if isForm(r) {
			draft.Title = r.FormValue("title")
			draft.Body = r.FormValue("body")
			draft.Category = r.FormValue("category")
			draft.Tags = r.FormValue("tags")
		} else if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.authoring.SaveDraft(r.Context(), *kind, draft); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if isForm(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Переход безусловный, даже на неизвестную страницу:
	// такая страница просто ничего не отображает
	s.router.Navigate(router.Page(r.FormValue("page")))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.app.ToggleTheme()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
