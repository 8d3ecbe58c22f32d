package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// Session - текущий принципал, nil когда пользователь не вошел
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Manager отслеживает текущего принципала и уведомляет подписчиков
// о каждом переходе, включая начальное состояние при подписке
type Manager struct {
	storage storage.Storage
	secret  []byte
	ttl     time.Duration

	mu      sync.RWMutex
	current *Session
	subs    []func(*Session)
}

func NewManager(store storage.Storage, secret string, ttl time.Duration) *Manager {
	return &Manager{
		storage: store,
		secret:  []byte(secret),
		ttl:     ttl,
	}
}

// Current возвращает текущую сессию или nil
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange регистрирует подписчика и сразу сообщает ему текущее состояние
func (m *Manager) OnChange(fn func(*Session)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	current := m.current
	m.mu.Unlock()

	fn(current)
}

func (m *Manager) setSession(session *Session) {
	m.mu.Lock()
	m.current = session
	subs := make([]func(*Session), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

func avatarURL(name string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", name)
}

func sessionFromUser(user *models.User) *Session {
	return &Session{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Avatar: user.Avatar,
	}
}

// SignUp создает пользователя и открывает сессию
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	if _, err := m.storage.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Avatar:       avatarURL(name),
		PasswordHash: string(hash),
	}
	if err := m.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}

	session := sessionFromUser(user)
	m.setSession(session)
	return session, nil
}

// SignIn открывает сессию по паре email/пароль
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := m.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session := sessionFromUser(user)
	m.setSession(session)
	return session, nil
}

// SignInWithProvider открывает сессию по данным внешнего провайдера,
// при первом входе создает профиль пользователя
func (m *Manager) SignInWithProvider(ctx context.Context, email, name, avatar string) (*Session, error) {
	user, err := m.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		if name == "" {
			name = "Anonymous"
		}
		if avatar == "" {
			avatar = avatarURL(name)
		}
		user = &models.User{
			Name:   name,
			Email:  email,
			Avatar: avatar,
		}
		if err := m.storage.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %v", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	session := sessionFromUser(user)
	m.setSession(session)
	return session, nil
}

// SignOut закрывает текущую сессию
func (m *Manager) SignOut() {
	m.setSession(nil)
}

// Lookup строит сессию по идентификатору пользователя из токена
func (m *Manager) Lookup(ctx context.Context, userID string) (*Session, error) {
	user, err := m.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sessionFromUser(user), nil
}

// GenerateToken выдает JWT с идентификатором пользователя
func (m *Manager) GenerateToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

// ValidateToken проверяет JWT и возвращает идентификатор пользователя
func (m *Manager) ValidateToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("пустой токен")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("невалидный токен")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("невалидный токен")
	}
	return userID, nil
}
