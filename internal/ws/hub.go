package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// 配信イベントの封筒。クライアント発・サーバ発どちらも同じ形。
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func CustomerRoom(customerID int64) string {
	return fmt.Sprintf("customer:%d", customerID)
}

func MerchantRoom(merchantID int64) string {
	return fmt.Sprintf("merchant:%d", merchantID)
}

type roomMessage struct {
	room    string
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

// Hubはroom名→接続集合を一手に持つ。
// 変更はすべてchannel経由でRunのループに集約する（他のgoroutineは直接触らない）。
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	direct     chan directMessage

	// Run終了時に閉じる。停止後のJoin/Leave/emitを即returnさせる。
	done chan struct{}

	rooms map[string]map[*Client]struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 64),
		direct:     make(chan directMessage, 64),
		done:       make(chan struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		logger:     logger,
	}
}

// Runはroom状態を持つ唯一のループ。ctxが閉じたら全接続を落として終了する。
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, members := range h.rooms {
				for c := range members {
					close(c.send)
				}
			}
			h.rooms = make(map[string]map[*Client]struct{})
			close(h.done)
			return

		case c := <-h.register:
			members, ok := h.rooms[c.Room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[c.Room] = members
			}
			members[c] = struct{}{}
			h.logger.Info("socket joined", "conn_id", c.ID, "room", c.Room)

		case c := <-h.unregister:
			if members, ok := h.rooms[c.Room]; ok {
				if _, joined := members[c]; joined {
					delete(members, c)
					close(c.send)
					if len(members) == 0 {
						delete(h.rooms, c.Room)
					}
					h.logger.Info("socket left", "conn_id", c.ID, "room", c.Room)
				}
			}

		case msg := <-h.broadcast:
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.payload:
				default:
					//詰まったクライアントは切る
					delete(h.rooms[msg.room], c)
					close(c.send)
				}
			}

		case msg := <-h.direct:
			c := msg.client
			//すでに切られた接続のsendは閉じている
			if _, joined := h.rooms[c.Room][c]; !joined {
				continue
			}
			select {
			case c.send <- msg.payload:
			default:
				delete(h.rooms[c.Room], c)
				close(c.send)
				if len(h.rooms[c.Room]) == 0 {
					delete(h.rooms, c.Room)
				}
			}
		}
	}
}

// Joinは接続をroomに入れる。membershipは接続の生存期間中変わらない。
func (h *Hub) Join(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// EmitRoomはroomの全接続へイベントを送る
func (h *Hub) EmitRoom(room string, event string, payload interface{}) {
	body, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error("marshal event failed", "event", event, "error", err)
		return
	}
	select {
	case h.broadcast <- roomMessage{room: room, payload: body}:
	case <-h.done:
	}
}

// EmitClientは1接続だけにイベントを送る。送信可否の判定もRunのループで行う。
func (h *Hub) EmitClient(c *Client, event string, payload interface{}) {
	body, err := marshalEnvelope(event, payload)
	if err != nil {
		h.logger.Error("marshal event failed", "event", event, "error", err)
		return
	}
	select {
	case h.direct <- directMessage{client: c, payload: body}:
	case <-h.done:
	}
}

func marshalEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

func unmarshalEnvelope(raw []byte, env *Envelope) error {
	*env = Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		return err
	}
	if env.Event == "" {
		return fmt.Errorf("missing event name")
	}
	return nil
}
