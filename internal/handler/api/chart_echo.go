package api

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"time"

	"PairPulse/internal/chart"
	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	icache "PairPulse/internal/service/cache"
	"PairPulse/internal/usecase"
	"PairPulse/pkg/canvas"
	xhttp "PairPulse/pkg/http"
	xlogger "PairPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChartSession is the part of usecase.Session the HTTP layer drives.
type ChartSession interface {
	StartScan(ctx context.Context, identifier string) (*models.TokenInfo, error)
	SetTimeframe(seconds int64) error
	Stop()
	State() models.SessionState
	Frame() models.ChartFrame
}

// ImageOptions controls PNG rendering.
type ImageOptions struct {
	Width      int
	Height     int
	Palette    chart.Palette
	Background color.Color
	CacheTTL   time.Duration
}

// ChartEchoHandler serves the session, its candles and a rendered chart.
type ChartEchoHandler struct {
	logger   *xlogger.Logger
	session  ChartSession
	renderer *chart.Renderer
	images   icache.BytesCache
	opts     ImageOptions
}

func NewChartEchoHandler(logger *xlogger.Logger, session ChartSession, images icache.BytesCache, opts ImageOptions) *ChartEchoHandler {
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	return &ChartEchoHandler{
		logger:   logger,
		session:  session,
		renderer: chart.NewRenderer(opts.Palette),
		images:   images,
		opts:     opts,
	}
}

func (h *ChartEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/scan", h.Scan)
	g.PUT("/timeframe", h.Timeframe)
	g.GET("/session", h.Session)
	g.DELETE("/session", h.StopSession)
	g.GET("/candles", h.Candles)
	g.GET("/chart.png", h.ChartPNG)
}

func (h *ChartEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ChartEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	info, err := h.session.StartScan(c.Request().Context(), req.Identifier)
	if err != nil {
		return xhttp.AppErrorResponse(c, scanError(req.Identifier, err))
	}
	return xhttp.SuccessResponse(c, info)
}

func (h *ChartEchoHandler) Timeframe(c echo.Context) error {
	req := &models.TimeframeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.session.SetTimeframe(req.Seconds); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}
	return xhttp.SuccessResponse(c, h.session.State())
}

func (h *ChartEchoHandler) Session(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.State())
}

func (h *ChartEchoHandler) StopSession(c echo.Context) error {
	h.session.Stop()
	return xhttp.NoContentResponse(c)
}

func (h *ChartEchoHandler) Candles(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.Frame())
}

// ChartPNG renders the current frame. Identical frames at the same size are
// served from the image cache until it expires.
func (h *ChartEchoHandler) ChartPNG(c echo.Context) error {
	req := &models.ChartImageRequest{Width: h.opts.Width, Height: h.opts.Height}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	frame := h.session.Frame()
	key := fmt.Sprintf("png:%d:%d:%d:%dx%d", frame.Generation, frame.Samples, frame.Timeframe, req.Width, req.Height)
	if h.images != nil {
		if b, ok := h.images.GetBytes(key); ok {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.Blob(http.StatusOK, "image/png", b)
		}
	}

	r := canvas.NewRaster(req.Width, req.Height, h.opts.Background)
	h.renderer.Render(r, frame.Candles)
	b, err := r.PNG()
	if err != nil {
		h.logger.Error("chart encode failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("chart encode failed").WithError(err))
	}

	if h.images != nil {
		h.images.SetBytes(key, b, h.opts.CacheTTL)
	}
	c.Response().Header().Set("X-Cache", "MISS")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, "image/png", b)
}

func scanError(identifier string, err error) *xhttp.AppError {
	switch {
	case errors.Is(err, usecase.ErrEmptyIdentifier):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, domrepo.ErrTokenNotFound):
		return xhttp.NotFoundErrorf("token %q not found", identifier).WithError(err)
	case errors.Is(err, domrepo.ErrRateLimited):
		return xhttp.NewAppError("ERR_RATE_LIMITED", "", "price source rate limit reached", http.StatusTooManyRequests).WithError(err)
	default:
		return xhttp.UpstreamError("price source unavailable").WithError(err)
	}
}
