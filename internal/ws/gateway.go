package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"foodorder/internal/auth"
	"foodorder/internal/domain/model"
	"foodorder/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// 認証フレームの受信待ち上限
const handshakeWait = 10 * time.Second

// 1操作あたりのDBタイムアウト
const opTimeout = 10 * time.Second

// 接続直後にクライアントが送る最初のフレーム。
// トークンはHTTPヘッダではなくhandshake payloadで渡す。
type handshakeFrame struct {
	Token string `json:"token"`
}

type updateOrderStatusFrame struct {
	OrderID int64                     `json:"orderId"`
	Data    usecase.ChangeStatusInput `json:"data"`
}

// OrderGatewayは注文ライフサイクルのwebsocket境界。
// 接続認証とイベントのroute先決定だけを持ち、業務判断はusecaseに任せる。
type OrderGateway struct {
	hub        *Hub
	classifier *auth.Classifier
	orders     *usecase.OrderUsecase
	upgrader   websocket.Upgrader
	logger     *slog.Logger

	handlers map[string]func(c *Client, data json.RawMessage)
}

func NewOrderGateway(hub *Hub, classifier *auth.Classifier, orders *usecase.OrderUsecase, feURL string, logger *slog.Logger) *OrderGateway {
	g := &OrderGateway{
		hub:        hub,
		classifier: classifier,
		orders:     orders,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == feURL
			},
		},
		logger: logger,
	}

	//イベント名→ハンドラのdispatch表
	g.handlers = map[string]func(c *Client, data json.RawMessage){
		"placeOrder":        g.handlePlaceOrder,
		"updateOrderStatus": g.handleUpdateOrderStatus,
	}

	return g
}

func (g *OrderGateway) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/orders", g.handleConnection)
}

// 接続lifecycle: Connecting → Authenticating → Joined / Rejected。
// 認証に失敗した相手には何も返さず切断する。
func (g *OrderGateway) handleConnection(c echo.Context) error {
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	claims, err := g.authenticate(conn)
	if err != nil {
		g.logger.Warn("socket rejected", "error", err)
		conn.Close()
		return nil
	}

	var room string
	switch claims.Role {
	case auth.RoleCustomer:
		room = CustomerRoom(claims.SubjectID)
	case auth.RoleMerchant:
		room = MerchantRoom(claims.SubjectID)
	default:
		conn.Close()
		return nil
	}

	client := newClient(g.hub, conn, claims, room)
	g.hub.Join(client)

	go client.writePump()
	client.readPump(g.dispatch)

	g.logger.Info("socket disconnected", "conn_id", client.ID)
	return nil
}

// authenticateは最初のフレームのトークンをロール別シークレットで判定する
func (g *OrderGateway) authenticate(conn *websocket.Conn) (auth.Claims, error) {
	conn.SetReadDeadline(time.Now().Add(handshakeWait))

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return auth.Claims{}, err
	}

	var hs handshakeFrame
	if err := json.Unmarshal(raw, &hs); err != nil {
		return auth.Claims{}, err
	}
	if hs.Token == "" {
		return auth.Claims{}, errors.New("no token provided")
	}

	return g.classifier.Classify(hs.Token)
}

func (g *OrderGateway) dispatch(c *Client, env Envelope) {
	h, ok := g.handlers[env.Event]
	if !ok {
		g.logger.Warn("unknown event", "conn_id", c.ID, "event", env.Event)
		return
	}
	h(c, env.Data)
}

// placeOrder: 分割エンジンを呼び、作成された注文ごとにマーチャントroomへ
// newOrderを、発注した接続へorderAcceptedを送る。
// コミット済みの注文しかここに来ないので、イベントが未保存の注文を指すことはない。
func (g *OrderGateway) handlePlaceOrder(c *Client, data json.RawMessage) {
	var in usecase.PlaceOrderInput
	if err := json.Unmarshal(data, &in); err != nil {
		g.logger.Warn("bad placeOrder payload", "conn_id", c.ID, "error", err)
		return
	}

	//顧客接続なら発注者は接続の本人に固定する
	if c.Claims.Role == auth.RoleCustomer {
		in.CustomerID = c.Claims.SubjectID
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	orders, err := g.orders.PlaceOrder(ctx, in)
	if err != nil {
		g.logger.Error("placeOrder failed", "conn_id", c.ID, "error", err)
		return
	}

	for _, o := range orders {
		g.hub.EmitRoom(MerchantRoom(o.MerchantID), "newOrder", o)
	}
	c.Emit("orderAccepted", orders)
}

// updateOrderStatus: ステータスに応じて顧客roomへ送り分け、
// マーチャントroomへは常にorderStatusUpdatedを流す。
func (g *OrderGateway) handleUpdateOrderStatus(c *Client, data json.RawMessage) {
	var frame updateOrderStatusFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		g.logger.Warn("bad updateOrderStatus payload", "conn_id", c.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := g.orders.ChangeStatus(ctx, frame.OrderID, frame.Data)
	if err != nil {
		g.logger.Error("updateOrderStatus failed", "conn_id", c.ID, "order_id", frame.OrderID, "error", err)
		return
	}

	customerRoom := CustomerRoom(order.CustomerID)
	switch order.Status {
	case string(model.OrderStatusWaitForPickup):
		g.hub.EmitRoom(customerRoom, "orderReady", order)
	case string(model.OrderStatusCancelled):
		g.hub.EmitRoom(customerRoom, "orderCancelled", order)
	default:
		g.hub.EmitRoom(customerRoom, "orderStatusUpdated", order)
	}

	//マーチャント側には常にecho
	g.hub.EmitRoom(MerchantRoom(order.MerchantID), "orderStatusUpdated", order)
}
