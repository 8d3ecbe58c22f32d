package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ButyrinIA/forum/internal/models"
)

const votedItemsKey = "voted_items"

// KV - синхронное key-value хранилище клиента (аналог localStorage)
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// VoteKey строит ключ дедупликации голоса вида {kind}_{id}
func VoteKey(kind models.Kind, id string) string {
	return fmt.Sprintf("%s_%s", kind, id)
}

func draftKey(kind models.Kind) string {
	return fmt.Sprintf("draft_%s", kind)
}

// Store - типизированный слой над KV: набор отметок о голосах
// и один слот черновика на вид контента
type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Marked сообщает, содержит ли набор отметок данный ключ
func (s *Store) Marked(ctx context.Context, key string) (bool, error) {
	keys, err := s.loadMarks(ctx)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

// Mark добавляет ключ в набор отметок, повторное добавление не дублирует
func (s *Store) Mark(ctx context.Context, key string) error {
	keys, err := s.loadMarks(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return s.saveMarks(ctx, append(keys, key))
}

// Unmark убирает ключ из набора, используется только для отката
// неподтвержденного голоса
func (s *Store) Unmark(ctx context.Context, key string) error {
	keys, err := s.loadMarks(ctx)
	if err != nil {
		return err
	}
	filtered := keys[:0]
	for _, k := range keys {
		if k != key {
			filtered = append(filtered, k)
		}
	}
	return s.saveMarks(ctx, filtered)
}

func (s *Store) loadMarks(ctx context.Context) ([]string, error) {
	raw, exists, err := s.kv.Get(ctx, votedItemsKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("failed to decode vote marks: %v", err)
	}
	return keys, nil
}

func (s *Store) saveMarks(ctx context.Context, keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, votedItemsKey, string(raw))
}

// SaveDraft безусловно перезаписывает слот черновика
func (s *Store) SaveDraft(ctx context.Context, kind models.Kind, draft models.Draft) error {
	if draft.SavedAt.IsZero() {
		draft.SavedAt = time.Now()
	}
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, draftKey(kind), string(raw))
}

// LoadDraft читает слот черновика, false если слот пуст
func (s *Store) LoadDraft(ctx context.Context, kind models.Kind) (*models.Draft, bool, error) {
	raw, exists, err := s.kv.Get(ctx, draftKey(kind))
	if err != nil || !exists {
		return nil, false, err
	}
	var draft models.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, false, fmt.Errorf("failed to decode draft: %v", err)
	}
	return &draft, true, nil
}
