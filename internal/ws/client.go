package ws

import (
	"time"

	"foodorder/internal/auth"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Clientは認証済みの1本の接続。
// Identityは接続時に確定し、切断まで変わらない。
type Client struct {
	ID     string // ログ相関用の接続ID
	Room   string
	Claims auth.Claims

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, claims auth.Claims, room string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Room:   room,
		Claims: claims,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 16),
	}
}

// Emitはこの接続だけにイベントを送る。
// sendのcloseはHubのループが握るので、直接書かずループを経由する。
func (c *Client) Emit(event string, payload interface{}) {
	c.hub.EmitClient(c, event, payload)
}

// writePumpはsend channelをソケットへ流す。接続につき1 goroutine。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//hub側で閉じられた
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPumpは受信フレームをdispatchに渡す。戻ったらroomから抜ける。
func (c *Client) readPump(dispatch func(c *Client, env Envelope)) {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env Envelope
		if err := unmarshalEnvelope(msg, &env); err != nil {
			c.hub.logger.Warn("bad frame", "conn_id", c.ID, "error", err)
			continue
		}
		dispatch(c, env)
	}
}
