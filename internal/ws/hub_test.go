package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(h *Hub, room string) *Client {
	return &Client{
		ID:   "test-" + room,
		Room: room,
		hub:  h,
		send: make(chan []byte, 16),
	}
}

// タイムアウト付きでクライアントの受信を1件読む
func recvEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("bad envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Envelope{}
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected message: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_EmitRoom_OnlyThatRoom(t *testing.T) {
	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	customer := newTestClient(h, CustomerRoom(42))
	merchant := newTestClient(h, MerchantRoom(100))
	h.Join(customer)
	h.Join(merchant)

	h.EmitRoom(CustomerRoom(42), "orderReady", map[string]int{"id": 7})

	env := recvEnvelope(t, customer)
	assert.Equal(t, "orderReady", env.Event)
	assertNoMessage(t, merchant)
}

func TestHub_EmitRoom_AllMembersReceive(t *testing.T) {
	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	//同じマーチャントのダッシュボードが2枚開いている
	a := newTestClient(h, MerchantRoom(100))
	b := newTestClient(h, MerchantRoom(100))
	h.Join(a)
	h.Join(b)

	h.EmitRoom(MerchantRoom(100), "newOrder", map[string]int{"id": 1})

	assert.Equal(t, "newOrder", recvEnvelope(t, a).Event)
	assert.Equal(t, "newOrder", recvEnvelope(t, b).Event)
}

func TestHub_Leave_StopsDelivery(t *testing.T) {
	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newTestClient(h, CustomerRoom(42))
	h.Join(c)
	h.Leave(c)

	//leave後はチャネルが閉じられる
	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	//落ちないこと（空roomへのemit）
	h.EmitRoom(CustomerRoom(42), "orderReady", nil)
}

func TestHub_EmitRoom_NoMembersIsNoop(t *testing.T) {
	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	h.EmitRoom(MerchantRoom(999), "newOrder", map[string]int{"id": 1})
	//パニックしなければOK（配送先なし）
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "customer:42", CustomerRoom(42))
	assert.Equal(t, "merchant:7", MerchantRoom(7))
}

func TestEnvelope_Unmarshal(t *testing.T) {
	var env Envelope
	err := unmarshalEnvelope([]byte(`{"event":"placeOrder","data":{"userId":1}}`), &env)
	assert.NoError(t, err)
	assert.Equal(t, "placeOrder", env.Event)

	var noEvent Envelope
	assert.Error(t, unmarshalEnvelope([]byte(`{"data":{}}`), &noEvent))

	var broken Envelope
	assert.Error(t, unmarshalEnvelope([]byte(`not json`), &broken))
}

func TestEnvelope_Unmarshal_ReusedEnvelopeIsReset(t *testing.T) {
	var env Envelope
	assert.NoError(t, unmarshalEnvelope([]byte(`{"event":"placeOrder","data":{"userId":1}}`), &env))

	//前回の内容が残っていてもevent欠落は必ず弾く
	assert.Error(t, unmarshalEnvelope([]byte(`{"data":{}}`), &env))
	assert.Empty(t, env.Event)
}

func TestHub_SlowClientDropped_EmitDoesNotPanic(t *testing.T) {
	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	slow := newTestClient(h, CustomerRoom(42))
	h.Join(slow)

	//バッファを溢れさせてhub側に切らせる
	for i := 0; i < cap(slow.send)+4; i++ {
		h.EmitRoom(CustomerRoom(42), "orderStatusUpdated", map[string]int{"seq": i})
	}

	//切断済み接続へのEmitはループが弾く（sendに直接触らない）
	slow.Emit("orderAccepted", map[string]int{"id": 1})
	h.EmitRoom(CustomerRoom(42), "orderReady", nil)

	//sendが閉じられていること
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-slow.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel not closed")
		}
	}
}

func TestHub_LeaveAfterShutdownReturns(t *testing.T) {
	h := NewHub(testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(h, CustomerRoom(42))
	h.Join(c)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("run loop did not stop")
	}

	//停止後のLeave/Join/emitはブロックしない
	done := make(chan struct{})
	go func() {
		h.Leave(c)
		h.Join(newTestClient(h, CustomerRoom(1)))
		h.EmitRoom(CustomerRoom(42), "orderReady", nil)
		c.Emit("orderAccepted", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after shutdown")
	}
}
