package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/ButyrinIA/forum/internal/models"
	"github.com/gorilla/websocket"
)

// contentEvent отправляется подключенным клиентам при публикации
type contentEvent struct {
	Type string              `json:"type"`
	Item *models.ContentItem `json:"item"`
}

// wsClient - одно подключение. gorilla/websocket допускает только одного
// писателя на соединение, поэтому записи сериализуются мьютексом клиента.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(event contentEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

// hub рассылает события о новом контенте по websocket-подключениям
type hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]bool
}

func newHub() *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]bool),
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Не удалось открыть websocket: %v", err)
		return
	}

	client := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	// Чтение только для обнаружения закрытия
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(client)
				return
			}
		}
	}()
}

func (h *hub) remove(client *wsClient) {
	h.mu.Lock()
	if h.clients[client] {
		delete(h.clients, client)
		client.conn.Close()
	}
	h.mu.Unlock()
}

// broadcast отправляет событие всем подключениям, отвалившиеся убираются
func (h *hub) broadcast(item *models.ContentItem) {
	event := contentEvent{Type: "content-added", Item: item}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.write(event); err != nil {
			h.remove(client)
		}
	}
}
