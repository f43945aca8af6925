package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/catalog"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/scheduler"
)

type fixture struct {
	eng   *engine.Engine
	sched *scheduler.Scheduler
	srv   *Server
	ts    *httptest.Server
}

func newFixture(t *testing.T, debug bool) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	eng := engine.New(cat)
	clk := clock.NewManual(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	sched := scheduler.New(eng, clk, scheduler.DefaultTickRate)
	srv := NewServer(eng, sched, debug)

	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)
	unwatch := srv.WatchPurchases()

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		unwatch()
		cancel()
		ts.Close()
	})
	return &fixture{eng: eng, sched: sched, srv: srv, ts: ts}
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGetState(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Get(f.ts.URL + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	snap := decode[engine.Snapshot](t, resp)
	assert.Equal(t, 0.0, snap.Currency)
	assert.Equal(t, 1.0, snap.ClickPower)
	assert.Len(t, snap.Upgrades, 7)
}

func TestGetUpgrades(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Get(f.ts.URL + "/api/upgrades")
	require.NoError(t, err)
	defer resp.Body.Close()

	ups := decode[[]catalog.Upgrade](t, resp)
	require.Len(t, ups, 7)
	assert.Equal(t, "Drill Hardening", ups[0].Name)
	assert.Equal(t, catalog.KindPassive, ups[2].Kind)
}

func TestClickIsBufferedUntilTick(t *testing.T) {
	f := newFixture(t, false)

	resp := f.post(t, "/api/click", `{"count": 5}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 5, decode[ClickResponse](t, resp).Pending)
	assert.Equal(t, 0.0, f.eng.Currency())

	f.sched.Tick()
	assert.Equal(t, 5.0, f.eng.Currency())
}

func TestClickRejectsBadInput(t *testing.T) {
	f := newFixture(t, false)

	for _, body := range []string{`{"count": 0}`, `{"count": -3}`, `not json`} {
		resp := f.post(t, "/api/click", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Zero(t, f.sched.Pending())
}

func TestClickCountIsCapped(t *testing.T) {
	f := newFixture(t, false)

	for _, body := range []string{`{"count": 1001}`, `{"count": 9223372036854775807}`} {
		resp := f.post(t, "/api/click", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Zero(t, f.sched.Pending())

	resp := f.post(t, "/api/click", `{"count": 1000}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, MaxClicksPerRequest, decode[ClickResponse](t, resp).Pending)
}

func TestPurchase(t *testing.T) {
	f := newFixture(t, false)

	resp := f.post(t, "/api/purchase", `{"upgrade_id": 1}`)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	resp = f.post(t, "/api/purchase", `{"upgrade_id": 99}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.post(t, "/api/purchase", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.NoError(t, f.eng.SetCurrency(10))
	resp = f.post(t, "/api/purchase", `{"upgrade_id": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[PurchaseResponse](t, resp)
	assert.Equal(t, 1, out.Level)
	assert.Equal(t, 0.0, out.State.Currency)
	assert.Equal(t, 0.25, out.State.PassiveIncome)
}

func TestDebugCurrencyDisabledByDefault(t *testing.T) {
	f := newFixture(t, false)
	resp := f.post(t, "/api/debug/currency", `{"currency": 1000}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0.0, f.eng.Currency())
}

func TestDebugCurrency(t *testing.T) {
	f := newFixture(t, true)

	resp := f.post(t, "/api/debug/currency", `{"currency": 1000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1000.0, f.eng.Currency())

	resp = f.post(t, "/api/debug/currency", `{"currency": -1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 1000.0, f.eng.Currency())
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, false)

	req, err := http.NewRequest(http.MethodOptions, f.ts.URL+"/api/purchase", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// WebSocket helpers

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil returns the first message of the given type, skipping others.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) Inbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg Inbound
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Inbound{Type: msgType, Payload: raw}))
}

func TestWebSocketWelcome(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)

	msg := readUntil(t, conn, "welcome")
	assert.Equal(t, SystemSender, msg.Sender)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Payload, &body))
	assert.Len(t, body["id"], 36)
	require.Eventually(t, func() bool { return f.srv.Hub().Clients() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketClick(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, "click", ClickRequest{Count: 3})
	require.Eventually(t, func() bool { return f.sched.Pending() == 3 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"click"}`)))
	require.Eventually(t, func() bool { return f.sched.Pending() == 4 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketClickOutOfRangeIsIgnored(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)
	readUntil(t, conn, "welcome")

	send(t, conn, "click", ClickRequest{Count: 5000})
	send(t, conn, "click", ClickRequest{Count: -1})
	send(t, conn, "click", ClickRequest{Count: 2})

	// Messages from one client are handled in order, so 2 means both bad counts were dropped.
	require.Eventually(t, func() bool { return f.sched.Pending() == 2 }, time.Second, 10*time.Millisecond)
}

func TestWebSocketPurchase(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)
	readUntil(t, conn, "welcome")

	id := 1
	send(t, conn, "purchase", PurchaseRequest{UpgradeID: &id})
	msg := readUntil(t, conn, "purchase_rejected")

	var rej PurchaseRejection
	require.NoError(t, json.Unmarshal(msg.Payload, &rej))
	assert.Equal(t, 1, rej.UpgradeID)
	assert.Equal(t, engine.ErrInsufficientFunds.Error(), rej.Reason)
	assert.Equal(t, 10.0, rej.Cost)

	require.NoError(t, f.eng.SetCurrency(10))
	send(t, conn, "purchase", PurchaseRequest{UpgradeID: &id})
	msg = readUntil(t, conn, "upgrade_purchased")

	var ev engine.PurchaseEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &ev))
	assert.Equal(t, engine.PurchaseEvent{UpgradeID: 1, NewLevel: 1}, ev)
}

func TestPurchaseEventsReachAllClients(t *testing.T) {
	f := newFixture(t, false)
	a, b := f.dial(t), f.dial(t)
	readUntil(t, a, "welcome")
	readUntil(t, b, "welcome")
	require.Eventually(t, func() bool { return f.srv.Hub().Clients() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.eng.SetCurrency(10))
	resp := f.post(t, "/api/purchase", `{"upgrade_id": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readUntil(t, conn, "upgrade_purchased")
		assert.JSONEq(t, `{"upgrade_id":1,"new_level":1}`, string(msg.Payload))
	}
}

func TestPublishState(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)
	readUntil(t, conn, "welcome")
	require.Eventually(t, func() bool { return f.srv.Hub().Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.eng.SetCurrency(42))
	f.srv.PublishState()

	msg := readUntil(t, conn, "state")
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &snap))
	assert.Equal(t, 42.0, snap.Currency)
}

func TestMalformedMessagesAreIgnored(t *testing.T) {
	f := newFixture(t, false)
	conn := f.dial(t)
	readUntil(t, conn, "welcome")

	for _, raw := range []string{`garbage`, `{"payload":{}}`, `{"type":"dance"}`, `{"type":"purchase","payload":{}}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
	}
	send(t, conn, "click", ClickRequest{Count: 2})
	require.Eventually(t, func() bool { return f.sched.Pending() == 2 }, time.Second, 10*time.Millisecond)
}

func TestHubStopClosesClients(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	eng := engine.New(cat)
	srv := NewServer(eng, scheduler.New(eng, clock.Real{}, 0), false)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		srv.Hub().Run(ctx)
		close(stopped)
	}()

	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	readUntil(t, conn, "welcome")

	cancel()
	<-stopped

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
			break
		}
	}

	// Publishing after shutdown must not block.
	done := make(chan struct{})
	go func() {
		srv.PublishState()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after hub stopped")
	}
}
