package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresStorage struct {
	conn *pgx.Conn
}

func New(dsn string) (*PostgresStorage, error) {
	conn, err := pgx.Connect(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %v", err)
	}

	_, err = conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS contents (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			author_id TEXT NOT NULL,
			category TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			vote_count INT NOT NULL DEFAULT 0,
			reply_count INT NOT NULL DEFAULT 0,
			view_count INT NOT NULL DEFAULT 0,
			read_time TEXT NOT NULL DEFAULT '',
			trending BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			avatar TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_contents_kind ON contents(kind);
		CREATE INDEX IF NOT EXISTS idx_contents_created_at ON contents(created_at);
	`)

	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &PostgresStorage{conn: conn}, nil
}

func (s *PostgresStorage) CreateContent(ctx context.Context, item *models.ContentItem) error {
	// Идентификатор и время создания назначаются на стороне хранилища
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO contents (id, kind, title, body, author_id, category, tags, vote_count, reply_count, view_count, read_time, trending, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, item.Kind, item.Title, item.Body, item.AuthorID, item.Category, item.Tags,
		item.VoteCount, item.ReplyCount, item.ViewCount, item.ReadTime, item.Trending, item.CreatedAt)
	return err
}

func (s *PostgresStorage) GetContent(ctx context.Context, kind models.Kind, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.conn.QueryRow(ctx, `
		SELECT id, kind, title, body, author_id, category, tags, vote_count, reply_count, view_count, read_time, trending, created_at
		FROM contents
		WHERE kind=$1 AND id=$2`, kind, id).Scan(
		&item.ID, &item.Kind, &item.Title, &item.Body, &item.AuthorID, &item.Category, &item.Tags,
		&item.VoteCount, &item.ReplyCount, &item.ViewCount, &item.ReadTime, &item.Trending, &item.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return &item, err
}

func (s *PostgresStorage) ListContent(ctx context.Context, kind *models.Kind) ([]models.ContentItem, error) {
	query := `
		SELECT id, kind, title, body, author_id, category, tags, vote_count, reply_count, view_count, read_time, trending, created_at
		FROM contents
		WHERE ($1::TEXT IS NULL OR kind = $1)
		ORDER BY created_at DESC`
	rows, err := s.conn.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var item models.ContentItem
		if err := rows.Scan(
			&item.ID, &item.Kind, &item.Title, &item.Body, &item.AuthorID, &item.Category, &item.Tags,
			&item.VoteCount, &item.ReplyCount, &item.ViewCount, &item.ReadTime, &item.Trending, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (s *PostgresStorage) UpdateContent(ctx context.Context, kind models.Kind, id string, fields map[string]any) error {
	allowed := map[string]string{
		"title":    "title",
		"body":     "body",
		"category": "category",
		"tags":     "tags",
		"trending": "trending",
	}

	var sets []string
	args := []any{kind, id}
	for name, value := range fields {
		column, ok := allowed[name]
		if !ok {
			return fmt.Errorf("unknown field: %s", name)
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	tag, err := s.conn.Exec(ctx, `
		UPDATE contents SET `+strings.Join(sets, ", ")+`
		WHERE kind=$1 AND id=$2`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) IncrementVotes(ctx context.Context, kind models.Kind, id string, delta int) (int, error) {
	// Атомарный инкремент на стороне базы
	var count int
	err := s.conn.QueryRow(ctx, `
		UPDATE contents SET vote_count = vote_count + $3
		WHERE kind=$1 AND id=$2
		RETURNING vote_count`, kind, id, delta).Scan(&count)

	if err == pgx.ErrNoRows {
		return 0, storage.ErrNotFound
	}
	return count, err
}

func (s *PostgresStorage) DeleteContent(ctx context.Context, kind models.Kind, id string) error {
	tag, err := s.conn.Exec(ctx, `DELETE FROM contents WHERE kind=$1 AND id=$2`, kind, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO users (id, name, email, avatar, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.Avatar, user.PasswordHash, user.CreatedAt)
	return err
}

func (s *PostgresStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRow(ctx, `
		SELECT id, name, email, avatar, password_hash, created_at
		FROM users
		WHERE id=$1`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.PasswordHash, &u.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return &u, err
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRow(ctx, `
		SELECT id, name, email, avatar, password_hash, created_at
		FROM users
		WHERE email=$1`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.PasswordHash, &u.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	return &u, err
}

func (s *PostgresStorage) GetUsers(ctx context.Context, ids []string) ([]*models.User, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, name, email, avatar, password_hash, created_at
		FROM users
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.User)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		byID[u.ID] = &u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Результат в порядке запрошенных идентификаторов, nil для отсутствующих
	users := make([]*models.User, len(ids))
	for i, id := range ids {
		users[i] = byID[id]
	}
	return users, nil
}

func (s *PostgresStorage) Close() error {
	return s.conn.Close(context.Background())
}
