package vote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ButyrinIA/forum/internal/auth"
	"github.com/ButyrinIA/forum/internal/localstore"
	"github.com/ButyrinIA/forum/internal/models"
	"github.com/ButyrinIA/forum/internal/storage"
)

var ErrNotSignedIn = errors.New("sign in required to vote")

// Coordinator допускает не более одного голоса на клиента за элемент.
// Отметка дедупликации ставится до удаленного инкремента и откатывается
// только при подтвержденной ошибке, это закрывает окно двойного голоса.
type Coordinator struct {
	storage storage.Storage
	marks   *localstore.Store

	mu       sync.Mutex
	inflight map[string]bool
}

func NewCoordinator(store storage.Storage, marks *localstore.Store) *Coordinator {
	return &Coordinator{
		storage:  store,
		marks:    marks,
		inflight: make(map[string]bool),
	}
}

// CastVote регистрирует голос за элемент. Возвращает false без ошибки,
// если клиент уже голосовал или голос за этот элемент еще в полете.
// При успехе VoteCount элемента обновляется значением из хранилища.
func (c *Coordinator) CastVote(ctx context.Context, session *auth.Session, item *models.ContentItem) (bool, error) {
	if session == nil {
		return false, ErrNotSignedIn
	}

	key := localstore.VoteKey(item.Kind, item.ID)

	c.mu.Lock()
	if c.inflight[key] {
		c.mu.Unlock()
		return false, nil
	}
	marked, err := c.marks.Marked(ctx, key)
	if err != nil {
		c.mu.Unlock()
		return false, fmt.Errorf("failed to read vote marks: %v", err)
	}
	if marked {
		c.mu.Unlock()
		return false, nil
	}
	c.inflight[key] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}()

	// Отметка ставится до удаленного вызова
	if err := c.marks.Mark(ctx, key); err != nil {
		return false, fmt.Errorf("failed to mark vote: %v", err)
	}

	count, err := c.storage.IncrementVotes(ctx, item.Kind, item.ID, 1)
	if err != nil {
		// Откат отметки: голос не зарегистрирован, счетчик не меняется
		if unmarkErr := c.marks.Unmark(ctx, key); unmarkErr != nil {
			return false, fmt.Errorf("failed to roll back vote mark: %v", unmarkErr)
		}
		return false, fmt.Errorf("failed to register vote: %v", err)
	}

	item.VoteCount = count
	return true, nil
}

// HasVoted сообщает, голосовал ли клиент за элемент
func (c *Coordinator) HasVoted(ctx context.Context, kind models.Kind, id string) (bool, error) {
	return c.marks.Marked(ctx, localstore.VoteKey(kind, id))
}
