package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"PairPulse/internal/domain/models"
	xlogger "PairPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gauge struct{ n atomic.Int64 }

func (g *gauge) SetWSClients(n int) { g.n.Store(int64(n)) }

func startHub(t *testing.T) (*Hub, *gauge, string) {
	t.Helper()
	g := &gauge{}
	h := NewHub(xlogger.NewNop(), g)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, g, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	return env
}

func frame(gen uint64, candles ...models.Candle) models.ChartFrame {
	return models.ChartFrame{
		Instrument: models.Instrument{ChainID: "solana", PairAddress: "PAIR"},
		Generation: gen,
		Timeframe:  60,
		Candles:    candles,
	}
}

func TestHub_LatestFrameOnConnect(t *testing.T) {
	h, g, url := startHub(t)
	h.OnFrame(frame(1, models.Candle{Open: 1, High: 2, Low: 1, Close: 2}))

	conn := dial(t, url)
	env := readEnvelope(t, conn)

	assert.Equal(t, "candles", env.Type)
	assert.Equal(t, "PAIR", env.Pair)
	assert.Equal(t, uint64(1), env.Generation)
	require.Len(t, env.Candles, 1)
	assert.Equal(t, 2.0, env.Candles[0].Close)

	assert.Eventually(t, func() bool { return h.ClientCount() == 1 && g.n.Load() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestHub_Broadcast(t *testing.T) {
	h, _, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	h.OnFrame(frame(3))

	for _, conn := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, conn)
		assert.Equal(t, uint64(3), env.Generation)
		assert.Equal(t, int64(60), env.Timeframe)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	h, g, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return h.ClientCount() == 0 && g.n.Load() == 0 },
		2*time.Second, 5*time.Millisecond)
}

func TestHub_Close(t *testing.T) {
	h, _, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Broadcasting to an empty hub is a no-op.
	h.OnFrame(frame(4))
}
