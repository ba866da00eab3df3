package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodorder/internal/auth"
	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"
	"foodorder/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// usecaseに渡すインメモリstub
// =====================

type stubTxRepos struct {
	orders repo.OrderRepository
	foods  repo.FoodRepository
}

func (r *stubTxRepos) Orders() repo.OrderRepository { return r.orders }
func (r *stubTxRepos) Foods() repo.FoodRepository   { return r.foods }

type stubTx struct{ repos repo.TxRepos }

func (s *stubTx) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s.repos)
}

type stubFoods struct{ foods map[int64]model.Food }

func (s *stubFoods) FindByID(ctx context.Context, foodID int64) (model.Food, error) {
	f, ok := s.foods[foodID]
	if !ok {
		return model.Food{}, repo.ErrNotFound
	}
	return f, nil
}

func (s *stubFoods) FindByIDs(ctx context.Context, foodIDs []int64) ([]model.Food, error) {
	var out []model.Food
	for _, id := range foodIDs {
		if f, ok := s.foods[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubFoods) ListByMerchantID(ctx context.Context, merchantID int64, onlyAvailable bool) ([]model.Food, error) {
	panic("not used")
}
func (s *stubFoods) Create(ctx context.Context, food model.Food) (int64, error) { panic("not used") }
func (s *stubFoods) Update(ctx context.Context, food model.Food) error          { panic("not used") }
func (s *stubFoods) Delete(ctx context.Context, foodID int64) error             { panic("not used") }

type stubOrders struct {
	nextID int64
	byID   map[int64]model.Order
}

func newStubOrders() *stubOrders {
	return &stubOrders{nextID: 1, byID: make(map[int64]model.Order)}
}

func (s *stubOrders) CreateWithItems(ctx context.Context, order model.Order) (model.Order, error) {
	order.ID = s.nextID
	s.nextID++
	s.byID[order.ID] = order
	return order, nil
}

func (s *stubOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := s.byID[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (model.Order, error) {
	o, ok := s.byID[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	o.Status = status
	s.byID[orderID] = o
	return o, nil
}

func (s *stubOrders) ListByMerchantID(ctx context.Context, merchantID int64) ([]model.Order, error) {
	panic("not used")
}
func (s *stubOrders) ListByCustomerID(ctx context.Context, customerID int64) ([]model.Order, error) {
	panic("not used")
}

type stubCustomers struct{}

func (s *stubCustomers) Create(ctx context.Context, customer model.Customer) (int64, error) {
	panic("not used")
}
func (s *stubCustomers) FindByID(ctx context.Context, customerID int64) (model.Customer, error) {
	return model.Customer{ID: customerID, UserName: "alice"}, nil
}
func (s *stubCustomers) FindByEmail(ctx context.Context, email string) (model.Customer, error) {
	panic("not used")
}

func newTestGateway(t *testing.T, orders *stubOrders, foods *stubFoods) (*OrderGateway, *Hub, func()) {
	t.Helper()

	hub := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	uc := usecase.NewOrderUsecase(
		&stubTx{repos: &stubTxRepos{orders: orders, foods: foods}},
		orders,
		&stubCustomers{},
	)

	classifier := auth.NewClassifier("customer-secret", "merchant-secret")
	g := NewOrderGateway(hub, classifier, uc, "", testLogger())
	return g, hub, cancel
}

// =====================
// イベントroutingのテスト
// =====================

func TestGateway_PlaceOrder_NotifiesEachMerchantAndAcksCustomer(t *testing.T) {
	foods := &stubFoods{foods: map[int64]model.Food{
		1: {ID: 1, MerchantID: 100, Price: 10},
		2: {ID: 2, MerchantID: 200, Price: 5},
	}}
	g, hub, cancel := newTestGateway(t, newStubOrders(), foods)
	defer cancel()

	customer := newTestClient(hub, CustomerRoom(42))
	customer.Claims = auth.Claims{SubjectID: 42, Role: auth.RoleCustomer}
	merchantA := newTestClient(hub, MerchantRoom(100))
	merchantB := newTestClient(hub, MerchantRoom(200))
	hub.Join(customer)
	hub.Join(merchantA)
	hub.Join(merchantB)

	g.handlePlaceOrder(customer, json.RawMessage(
		`{"paymentMethod":"cash","items":[{"foodId":1,"quantity":2},{"foodId":2,"quantity":1}]}`,
	))

	//各マーチャントに自分の分のnewOrderだけ届く
	envA := recvEnvelope(t, merchantA)
	assert.Equal(t, "newOrder", envA.Event)
	var orderA usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(envA.Data, &orderA))
	assert.Equal(t, int64(100), orderA.MerchantID)
	assert.Equal(t, int64(20), orderA.TotalPrice)
	assert.Equal(t, int64(42), orderA.CustomerID)
	assertNoMessage(t, merchantA)

	envB := recvEnvelope(t, merchantB)
	assert.Equal(t, "newOrder", envB.Event)
	var orderB usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(envB.Data, &orderB))
	assert.Equal(t, int64(200), orderB.MerchantID)
	assert.Equal(t, int64(5), orderB.TotalPrice)

	//発注者には全注文入りのorderAcceptedが直接届く
	ack := recvEnvelope(t, customer)
	assert.Equal(t, "orderAccepted", ack.Event)
	var acked []usecase.OrderOutput
	assert.NoError(t, json.Unmarshal(ack.Data, &acked))
	assert.Equal(t, 2, len(acked))
	assertNoMessage(t, customer)
}

func TestGateway_PlaceOrder_UnknownFoodEmitsNothing(t *testing.T) {
	foods := &stubFoods{foods: map[int64]model.Food{
		1: {ID: 1, MerchantID: 100, Price: 10},
	}}
	orders := newStubOrders()
	g, hub, cancel := newTestGateway(t, orders, foods)
	defer cancel()

	customer := newTestClient(hub, CustomerRoom(42))
	customer.Claims = auth.Claims{SubjectID: 42, Role: auth.RoleCustomer}
	merchant := newTestClient(hub, MerchantRoom(100))
	hub.Join(customer)
	hub.Join(merchant)

	g.handlePlaceOrder(customer, json.RawMessage(
		`{"paymentMethod":"cash","items":[{"foodId":1,"quantity":1},{"foodId":99,"quantity":1}]}`,
	))

	assertNoMessage(t, merchant)
	assertNoMessage(t, customer)
	assert.Equal(t, 0, len(orders.byID))
}

func TestGateway_UpdateStatus_WaitForPickup(t *testing.T) {
	orders := newStubOrders()
	orders.byID[7] = model.Order{ID: 7, CustomerID: 42, MerchantID: 100, Status: model.OrderStatusPending}
	g, hub, cancel := newTestGateway(t, orders, &stubFoods{})
	defer cancel()

	customer := newTestClient(hub, CustomerRoom(42))
	merchant := newTestClient(hub, MerchantRoom(100))
	merchant.Claims = auth.Claims{SubjectID: 100, Role: auth.RoleMerchant}
	hub.Join(customer)
	hub.Join(merchant)

	g.handleUpdateOrderStatus(merchant, json.RawMessage(
		`{"orderId":7,"data":{"status":"Wait for Pickup"}}`,
	))

	//顧客にはorderReadyが1回だけ
	env := recvEnvelope(t, customer)
	assert.Equal(t, "orderReady", env.Event)
	assertNoMessage(t, customer)

	//マーチャント側には常にecho
	echoEnv := recvEnvelope(t, merchant)
	assert.Equal(t, "orderStatusUpdated", echoEnv.Event)
}

func TestGateway_UpdateStatus_Cancelled(t *testing.T) {
	orders := newStubOrders()
	orders.byID[7] = model.Order{ID: 7, CustomerID: 42, MerchantID: 100, Status: model.OrderStatusPreparing}
	g, hub, cancel := newTestGateway(t, orders, &stubFoods{})
	defer cancel()

	customer := newTestClient(hub, CustomerRoom(42))
	merchant := newTestClient(hub, MerchantRoom(100))
	hub.Join(customer)
	hub.Join(merchant)

	g.handleUpdateOrderStatus(merchant, json.RawMessage(
		`{"orderId":7,"data":{"status":"Cancelled"}}`,
	))

	assert.Equal(t, "orderCancelled", recvEnvelope(t, customer).Event)
	assert.Equal(t, "orderStatusUpdated", recvEnvelope(t, merchant).Event)
}

func TestGateway_UpdateStatus_OtherStatus(t *testing.T) {
	orders := newStubOrders()
	orders.byID[7] = model.Order{ID: 7, CustomerID: 42, MerchantID: 100, Status: model.OrderStatusPending}
	g, hub, cancel := newTestGateway(t, orders, &stubFoods{})
	defer cancel()

	customer := newTestClient(hub, CustomerRoom(42))
	merchant := newTestClient(hub, MerchantRoom(100))
	hub.Join(customer)
	hub.Join(merchant)

	g.handleUpdateOrderStatus(merchant, json.RawMessage(
		`{"orderId":7,"data":{"status":"Preparing"}}`,
	))

	assert.Equal(t, "orderStatusUpdated", recvEnvelope(t, customer).Event)
	assert.Equal(t, "orderStatusUpdated", recvEnvelope(t, merchant).Event)
}

func TestGateway_UpdateStatus_TerminalOrderEmitsNothing(t *testing.T) {
	orders := newStubOrders()
	orders.byID[7] = model.Order{ID: 7, CustomerID: 42, MerchantID: 100, Status: model.OrderStatusCompleted}
	g, hub, cancel := newTestGateway(t, orders, &stubFoods{})
	defer cancel()

	customer := newTestClient(hub, CustomerRoom(42))
	hub.Join(customer)

	g.handleUpdateOrderStatus(customer, json.RawMessage(
		`{"orderId":7,"data":{"status":"Preparing"}}`,
	))

	assertNoMessage(t, customer)
	assert.Equal(t, model.OrderStatusCompleted, orders.byID[7].Status)
}

func TestGateway_Dispatch_UnknownEvent(t *testing.T) {
	g, hub, cancel := newTestGateway(t, newStubOrders(), &stubFoods{})
	defer cancel()

	c := newTestClient(hub, CustomerRoom(1))
	//パニックせず無視する
	g.dispatch(c, Envelope{Event: "unknownEvent"})
}

// =====================
// 接続handshakeのテスト（本物のwebsocket越し）
// =====================

func dialTestServer(t *testing.T, g *OrderGateway) (*websocket.Conn, func()) {
	t.Helper()

	e := echo.New()
	g.RegisterRoutes(e)
	srv := httptest.NewServer(e)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/orders"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial failed: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestGateway_Handshake_ValidCustomerJoinsRoom(t *testing.T) {
	g, hub, cancel := newTestGateway(t, newStubOrders(), &stubFoods{})
	defer cancel()

	issuer := auth.NewIssuer("customer-secret", "merchant-secret", "admin-secret", "refresh-secret")
	token, err := issuer.Issue(42, "alice@example.com", auth.RoleCustomer, time.Now())
	assert.NoError(t, err)

	conn, closeAll := dialTestServer(t, g)
	defer closeAll()

	assert.NoError(t, conn.WriteJSON(map[string]string{"token": token}))

	//joinが完了してからroomへ流す
	time.Sleep(200 * time.Millisecond)
	hub.EmitRoom(CustomerRoom(42), "orderReady", map[string]int{"id": 7})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	assert.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, "orderReady", env.Event)
}

func TestGateway_Handshake_InvalidTokenDisconnected(t *testing.T) {
	g, _, cancel := newTestGateway(t, newStubOrders(), &stubFoods{})
	defer cancel()

	conn, closeAll := dialTestServer(t, g)
	defer closeAll()

	assert.NoError(t, conn.WriteJSON(map[string]string{"token": "not-a-token"}))

	//何も返さず切断される
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestGateway_Handshake_MissingTokenDisconnected(t *testing.T) {
	g, _, cancel := newTestGateway(t, newStubOrders(), &stubFoods{})
	defer cancel()

	conn, closeAll := dialTestServer(t, g)
	defer closeAll()

	assert.NoError(t, conn.WriteJSON(map[string]string{}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
