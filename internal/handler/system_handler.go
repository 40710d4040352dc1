package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/middleware"
	"github.com/evpower/recruit-backend/internal/response"
)

const (
	metricsInterval = 7 * time.Second
	healthTimeout   = 2 * time.Second
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health probe and the admin metrics stream.
type SystemHandler struct {
	rdb       *redis.Client
	db        Pinger
	startTime time.Time
	log       zerolog.Logger

	mu  sync.Mutex
	cpu cpuSampler
}

func NewSystemHandler(rdb *redis.Client, db Pinger, log zerolog.Logger) *SystemHandler {
	h := &SystemHandler{
		rdb:       rdb,
		db:        db,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
	h.cpu.sample()
	return h
}

// ─── Health ─────────────────────────────────────────────────────────────

// Health godoc
// GET /health
// Pings PostgreSQL and Redis. Responds 503 when either is down.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{"postgres": "ok", "redis": "ok"}
	healthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Health check: postgres unreachable")
			checks["postgres"] = "down"
			healthy = false
		}
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Health check: redis unreachable")
		checks["redis"] = "down"
		healthy = false
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}

// ─── Metrics Stream ─────────────────────────────────────────────────────

type hostMetrics struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemUsedBytes  uint64  `json:"mem_used_bytes"`
	MemTotalBytes uint64  `json:"mem_total_bytes"`
	LoadAvg1      float64 `json:"load_avg_1"`
	AppRSSBytes   uint64  `json:"app_rss_bytes"`
}

type runtimeMetrics struct {
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`
}

// queueMetrics tracks the backlog of the background workers.
type queueMetrics struct {
	PendingAttempts int64 `json:"pending_attempts"`
	PendingMail     int64 `json:"pending_mail"`
	AttemptLogBytes int64 `json:"attempt_log_bytes"`
}

type systemSnapshot struct {
	Timestamp int64          `json:"timestamp"`
	Uptime    string         `json:"uptime"`
	Host      hostMetrics    `json:"host"`
	Runtime   runtimeMetrics `json:"runtime"`
	Queues    queueMetrics   `json:"queues"`
}

// SystemMetricsSSE godoc
// GET /api/v1/staff/system/metrics?token=
// Admin only. Emits one snapshot on connect, then one per interval.
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	log := h.log.With().Str("email", claims.Email).Logger()
	log.Info().Msg("Metrics stream opened")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		if err := h.writeSnapshot(c, h.snapshot(ctx)); err != nil {
			log.Debug().Err(err).Msg("Metrics write failed")
			return
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("Metrics stream closed")
			return
		case <-ticker.C:
		}
	}
}

func (h *SystemHandler) writeSnapshot(c *gin.Context, snap systemSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}

func (h *SystemHandler) snapshot(ctx context.Context) systemSnapshot {
	return systemSnapshot{
		Timestamp: time.Now().Unix(),
		Uptime:    formatUptime(time.Since(h.startTime)),
		Host:      h.hostMetrics(),
		Runtime:   readRuntimeMetrics(),
		Queues:    h.queueMetrics(ctx),
	}
}

func (h *SystemHandler) hostMetrics() hostMetrics {
	var m hostMetrics

	h.mu.Lock()
	m.CPUPercent = h.cpu.sample()
	h.mu.Unlock()

	if mem, err := readProcKeys("/proc/meminfo", "MemTotal", "MemAvailable"); err == nil {
		m.MemTotalBytes = mem["MemTotal"]
		if avail := mem["MemAvailable"]; avail <= m.MemTotalBytes {
			m.MemUsedBytes = m.MemTotalBytes - avail
		}
	}
	if status, err := readProcKeys("/proc/self/status", "VmRSS"); err == nil {
		m.AppRSSBytes = status["VmRSS"]
	}
	m.LoadAvg1, _ = readLoadAvg()
	return m
}

func readRuntimeMetrics() runtimeMetrics {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return runtimeMetrics{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}
}

// queueMetrics reads all backlog sizes in one round trip.
func (h *SystemHandler) queueMetrics(ctx context.Context) queueMetrics {
	var m queueMetrics

	pipe := h.rdb.Pipeline()
	attempts := pipe.LLen(ctx, config.WorkerKey.PersistAttemptsQueue)
	mail := pipe.LLen(ctx, config.WorkerKey.MailQueue)
	logLen := pipe.StrLen(ctx, config.CacheKey.AttemptLog)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		h.log.Debug().Err(err).Msg("Queue metrics unavailable")
		return m
	}

	m.PendingAttempts = attempts.Val()
	m.PendingMail = mail.Val()
	m.AttemptLogBytes = logLen.Val()
	return m
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, d)
	}
	return d.String()
}
