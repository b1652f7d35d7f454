package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	xlogger "PairPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const sendBuffer = 16

// ClientGauge receives the connected client count.
type ClientGauge interface {
	SetWSClients(n int)
}

// Envelope is the message pushed after every render pass.
type Envelope struct {
	Type       string          `json:"type"`
	Pair       string          `json:"pair,omitempty"`
	Generation uint64          `json:"generation"`
	Timeframe  int64           `json:"timeframe"`
	Candles    []models.Candle `json:"candles"`
}

// Hub fans chart frames out to websocket clients. A client whose buffer is
// full is disconnected instead of stalling the session.
type Hub struct {
	logger   *xlogger.Logger
	gauge    ClientGauge
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte
}

var _ domrepo.ChartObserver = (*Hub)(nil)

func NewHub(logger *xlogger.Logger, gauge ClientGauge) *Hub {
	return &Hub{
		logger: logger,
		gauge:  gauge,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Handle)
}

// Handle upgrades the request and sends the latest frame straight away.
func (h *Hub) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}

	cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	if h.latest != nil {
		cl.send <- h.latest
	}
	h.mu.Unlock()

	h.setGauge(n)
	h.logger.Debug("ws client connected", xlogger.Int("clients", n))

	go cl.writePump()
	go cl.readPump()
	return nil
}

// OnFrame broadcasts frame to every client.
func (h *Hub) OnFrame(frame models.ChartFrame) {
	b, err := json.Marshal(Envelope{
		Type:       "candles",
		Pair:       frame.Instrument.PairAddress,
		Generation: frame.Generation,
		Timeframe:  frame.Timeframe,
		Candles:    frame.Candles,
	})
	if err != nil {
		h.logger.Error("ws encode failed", xlogger.Error(err))
		return
	}

	var slow []*client
	h.mu.Lock()
	h.latest = b
	for cl := range h.clients {
		select {
		case cl.send <- b:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.Unlock()

	for _, cl := range slow {
		h.logger.Warn("ws client too slow, dropping")
		h.remove(cl)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()
	for _, cl := range clients {
		h.remove(cl)
	}
}

// remove unregisters cl once; closing send makes writePump hang up.
func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, cl)
	close(cl.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.setGauge(n)
}

func (h *Hub) setGauge(n int) {
	if h.gauge != nil {
		h.gauge.SetWSClients(n)
	}
}
