package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agroinnova-backend/internal/models"
)

func TestCleanupWorkerRunOnceContinuesAfterFailure(t *testing.T) {
	var calls int32
	w := NewCleanupWorker(time.Minute, nil,
		CleanupTask{Name: "broken", Run: func(context.Context) (int64, error) {
			atomic.AddInt32(&calls, 1)
			return 0, errors.New("boom")
		}},
		CleanupTask{Name: "codes", Run: func(context.Context) (int64, error) {
			atomic.AddInt32(&calls, 1)
			return 4, nil
		}},
	)

	removed := w.RunOnce(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, map[string]int64{"codes": 4}, removed)
}

func TestCleanupWorkerStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var runs int32
	w := NewCleanupWorker(10*time.Millisecond, nil, CleanupTask{
		Name: "count",
		Run: func(context.Context) (int64, error) {
			atomic.AddInt32(&runs, 1)
			return 0, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestBlacklistCleanupTask(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	now := time.Now()
	b.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, b.AddToBlacklist(ctx, "short", time.Second))
	require.NoError(t, b.AddToBlacklist(ctx, "long", time.Hour))
	require.NoError(t, b.AddToBlacklist(ctx, "ignored", 0))
	assert.Equal(t, 2, b.Len())

	now = now.Add(time.Minute)
	removed, err := BlacklistCleanupTask(b).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	blocked, err := b.IsBlacklisted(ctx, "long")
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = b.IsBlacklisted(ctx, "short")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestInMemoryUserInvalidation(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	invalid, err := b.IsUserTokenInvalidated(ctx, 7, issued)
	require.NoError(t, err)
	assert.False(t, invalid)

	require.NoError(t, b.InvalidateUserTokens(ctx, 7, time.Hour))
	invalid, err = b.IsUserTokenInvalidated(ctx, 7, issued)
	require.NoError(t, err)
	assert.True(t, invalid)

	invalid, err = b.IsUserTokenInvalidated(ctx, 7, time.Now().Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, invalid)

	invalid, err = b.IsUserTokenInvalidated(ctx, 8, issued)
	require.NoError(t, err)
	assert.False(t, invalid)
}

func TestInMemoryUserInvalidationWithinSameSecond(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	cut := time.Unix(1700000000, 500_000_000)
	b.nowFunc = func() time.Time { return cut }
	ctx := context.Background()

	require.NoError(t, b.InvalidateUserTokens(ctx, 7, time.Hour))

	invalid, err := b.IsUserTokenInvalidated(ctx, 7, cut.Add(-time.Millisecond))
	require.NoError(t, err)
	assert.True(t, invalid)

	invalid, err = b.IsUserTokenInvalidated(ctx, 7, cut.Add(time.Millisecond))
	require.NoError(t, err)
	assert.False(t, invalid)
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var hello HubMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, "connected", hello.Type)
	return conn
}

func TestIndicatorHubDeliversToSubscribedZones(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub := NewIndicatorHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(hubDone)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, 1)
	}))

	all := dialHub(t, srv)
	zoned := dialHub(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, zoned.WriteJSON(ClientMessage{Type: "subscribe", ZoneID: 5}))
	require.NoError(t, zoned.WriteJSON(ClientMessage{Type: "ping"}))
	var pong HubMessage
	require.NoError(t, zoned.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, zoned.ReadJSON(&pong))
	require.Equal(t, "pong", pong.Type)

	hub.Broadcast(models.IndicatorEvent{Type: "indicator_updated", Indicator: &models.Indicator{ID: 1, ZoneID: 9}})
	hub.Broadcast(models.IndicatorEvent{Type: "indicator_updated", Indicator: &models.Indicator{ID: 2, ZoneID: 5}})

	var msg HubMessage
	require.NoError(t, all.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, all.ReadJSON(&msg))
	assert.Equal(t, int64(1), msg.Indicator.ID)
	require.NoError(t, all.ReadJSON(&msg))
	assert.Equal(t, int64(2), msg.Indicator.ID)

	require.NoError(t, zoned.ReadJSON(&msg))
	assert.Equal(t, "indicator_updated", msg.Type)
	assert.Equal(t, int64(2), msg.Indicator.ID)

	require.NoError(t, all.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-hubDone
	zoned.Close()
	srv.Close()
}

func TestIndicatorHubOriginCheck(t *testing.T) {
	check := originChecker([]string{"https://agroinnova.co"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://agroinnova.co")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
