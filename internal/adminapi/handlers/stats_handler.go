package handlers

import (
	"net/http"

	"github.com/poolkeeper/provider-pool-manager/internal/events"
	"github.com/poolkeeper/provider-pool-manager/internal/pool"
	"github.com/poolkeeper/provider-pool-manager/internal/stats"
	"github.com/gin-gonic/gin"
)

// StatsHandler 统计信息处理器
type StatsHandler struct {
	manager        *pool.Manager
	requestCounter *stats.RequestCounter
	eventService   *events.Service
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(manager *pool.Manager, requestCounter *stats.RequestCounter, eventService *events.Service) *StatsHandler {
	return &StatsHandler{
		manager:        manager,
		requestCounter: requestCounter,
		eventService:   eventService,
	}
}

// SystemStats 系统统计信息响应
type SystemStats struct {
	Providers    ProviderStats `json:"providers"`
	Requests     RequestStats  `json:"requests"`
	RecentEvents []Event       `json:"recent_events"`
}

// ProviderStats 供应商统计（跨所有 family 汇总）
type ProviderStats struct {
	Total     int            `json:"total"`
	Healthy   int            `json:"healthy"`
	Unhealthy int            `json:"unhealthy"`
	Disabled  int            `json:"disabled"`
	ByFamily  map[string]int `json:"by_family"`
}

// RequestStats 请求统计
type RequestStats struct {
	Total      int64   `json:"total"`
	CurrentQPS float64 `json:"current_qps"`
}

// Event 事件日志
type Event struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Message   string `json:"message"`
}

// GetStats 获取系统统计信息
// @Summary 获取系统统计信息
// @Description 获取系统概览统计数据，包括供应商池状态、请求统计、QPS 等
// @Tags Stats
// @Produce json
// @Success 200 {object} SystemStats
// @Router /api/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	providerStats := ProviderStats{ByFamily: map[string]int{}}

	for _, family := range h.manager.Families() {
		snaps, err := h.manager.GetPoolSnapshot(family)
		if err != nil {
			continue
		}
		providerStats.ByFamily[string(family)] = len(snaps)
		for _, s := range snaps {
			providerStats.Total++
			switch {
			case s.IsDisabled:
				providerStats.Disabled++
			case s.IsHealthy:
				providerStats.Healthy++
			default:
				providerStats.Unhealthy++
			}
		}
	}

	requestStats := h.requestCounter.GetStats()

	recentEventsData, err := h.eventService.GetRecentEvents(10)
	recentEvents := make([]Event, 0, len(recentEventsData))
	if err == nil {
		for _, evt := range recentEventsData {
			recentEvents = append(recentEvents, Event{
				Timestamp: evt.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				Type:      evt.Type,
				Message:   evt.Message,
			})
		}
	}

	systemStats := SystemStats{
		Providers: providerStats,
		Requests: RequestStats{
			Total:      requestStats.Total,
			CurrentQPS: requestStats.CurrentQPS,
		},
		RecentEvents: recentEvents,
	}

	c.JSON(http.StatusOK, systemStats)
}
