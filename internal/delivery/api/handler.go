// internal/delivery/api/handler.go
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"fx-sentiment-bot/internal/core/domain/alerts"
	"fx-sentiment-bot/internal/core/domain/sentiment"
	"fx-sentiment-bot/internal/infrastructure/metrics"
	"fx-sentiment-bot/pkg/logger"
	"fx-sentiment-bot/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Engine операции движка, нужные HTTP слою
type Engine interface {
	Ingest(symbol, signal string, payload map[string]interface{}) (sentiment.Assertion, error)
	Status() sentiment.Status
	Pending() []sentiment.Assertion
}

// HealthChecker внешняя зависимость с проверкой здоровья
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

type checkFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkFunc) Name() string                          { return c.name }
func (c checkFunc) HealthCheck(ctx context.Context) error { return c.fn(ctx) }

// CheckFunc оборачивает функцию проверки в HealthChecker
func CheckFunc(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkFunc{name: name, fn: fn}
}

// Options параметры HTTP слоя
type Options struct {
	AlertPath      string
	MaxBodySize    int64
	MetricsEnabled bool
	Version        string
}

// HTTPHandler HTTP интерфейс бота
type HTTPHandler struct {
	engine   Engine
	opts     Options
	checkers []HealthChecker
	started  time.Time
}

// NewHTTPHandler создает обработчик
func NewHTTPHandler(engine Engine, opts Options, checkers ...HealthChecker) *HTTPHandler {
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 64 << 10
	}
	if opts.AlertPath == "" {
		opts.AlertPath = "/webhook/alert"
	}
	return &HTTPHandler{
		engine:   engine,
		opts:     opts,
		checkers: checkers,
		started:  time.Now(),
	}
}

// RegisterRoutes регистрирует маршруты
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	r.POST(h.opts.AlertPath, h.ReceiveAlert)
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)
	if h.opts.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
}

// ReceiveAlert принимает алерт в множество ожидания: 202 с id или 400
func (h *HTTPHandler) ReceiveAlert(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.opts.MaxBodySize+1))
	if err != nil {
		h.rejectAlert(c, http.StatusBadRequest, err)
		return
	}
	if int64(len(body)) > h.opts.MaxBodySize {
		h.rejectAlert(c, http.StatusRequestEntityTooLarge, errors.New("body too large"))
		return
	}

	alert, err := alerts.Parse(body)
	if err != nil {
		h.rejectAlert(c, http.StatusBadRequest, err)
		return
	}

	assertion, err := h.engine.Ingest(alert.Symbol, alert.Signal, alert.Payload)
	if err != nil {
		h.rejectAlert(c, http.StatusBadRequest, err)
		return
	}

	metrics.AlertsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.PendingAlerts.Set(float64(h.engine.Status().Pending))
	logger.Info("📥 Алерт принят: %s %s (id=%s)", assertion.Symbol, assertion.Label, assertion.ID)

	c.JSON(http.StatusAccepted, gin.H{
		"id":        assertion.ID,
		"symbol":    assertion.Symbol,
		"direction": assertion.Direction,
	})
}

func (h *HTTPHandler) rejectAlert(c *gin.Context, status int, err error) {
	metrics.AlertsTotal.WithLabelValues(metrics.ResultRejected).Inc()
	logger.Warn("⚠️ Алерт отклонен (%d): %v", status, err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// Health 200 если все зависимости отвечают, иначе 503
func (h *HTTPHandler) Health(c *gin.Context) {
	deps := gin.H{}
	healthy := true
	for _, checker := range h.checkers {
		if err := checker.HealthCheck(c.Request.Context()); err != nil {
			deps[checker.Name()] = err.Error()
			healthy = false
			continue
		}
		deps[checker.Name()] = "ok"
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":       state,
		"version":      h.opts.Version,
		"uptime":       utils.FormatDuration(time.Since(h.started)),
		"dependencies": deps,
		"timestamp":    time.Now().Unix(),
	})
}

type symbolView struct {
	Symbol   string `json:"symbol"`
	BuyShare string `json:"buy_share"`
	Signal   string `json:"signal"`
}

type pendingView struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Label      string    `json:"label"`
	ReceivedAt time.Time `json:"received_at"`
}

// Status снапшот, композит и ожидающие алерты в JSON
func (h *HTTPHandler) Status(c *gin.Context) {
	st := h.engine.Status()

	symbols := make([]symbolView, 0, st.Snapshot.Len())
	for _, item := range st.Snapshot.SortedByBuyShare() {
		symbols = append(symbols, symbolView{
			Symbol:   item.Symbol,
			BuyShare: utils.FormatShare(item.BuyShare),
			Signal:   string(item.Signal),
		})
	}

	pending := make([]pendingView, 0, st.Pending)
	for _, a := range h.engine.Pending() {
		pending = append(pending, pendingView{
			ID:         a.ID,
			Symbol:     a.Symbol,
			Direction:  string(a.Direction),
			Label:      a.Label,
			ReceivedAt: a.ReceivedAt,
		})
	}

	resp := gin.H{
		"cycles":         st.Cycles,
		"has_snapshot":   st.HasSnapshot,
		"server_time":    st.ServerTime,
		"symbols":        symbols,
		"pending":        st.Pending,
		"pending_alerts": pending,
		"composite":      nil,
	}
	if !st.LastCycleAt.IsZero() {
		resp["last_cycle_at"] = st.LastCycleAt.UTC()
	}
	if st.HasComposite {
		resp["composite"] = st.Composite
	}

	c.JSON(http.StatusOK, resp)
}
