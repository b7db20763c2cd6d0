package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/poolkeeper/provider-pool-manager/internal/pool"
	"github.com/gin-gonic/gin"
)

// PoolHandler exposes the operator actions spec.md leaves to an external
// admin surface: listing a family's entries and toggling their
// availability. It never performs request-time selection or translation.
type PoolHandler struct {
	manager *pool.Manager
}

// NewPoolHandler creates a pool operator handler.
func NewPoolHandler(manager *pool.Manager) *PoolHandler {
	return &PoolHandler{manager: manager}
}

// ListFamilies 列出所有已加载的 family
func (h *PoolHandler) ListFamilies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"families": h.manager.Families()})
}

// GetFamilySnapshot 返回一个 family 下所有 entry 的只读快照
func (h *PoolHandler) GetFamilySnapshot(c *gin.Context) {
	family := pool.Family(c.Param("family"))
	snaps, err := h.manager.GetPoolSnapshot(family)
	if err != nil {
		if errors.Is(err, pool.ErrFamilyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "family not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": snaps})
}

// Disable 禁用一个 entry
func (h *PoolHandler) Disable(c *gin.Context) {
	family := pool.Family(c.Param("family"))
	uuid := c.Param("uuid")
	if !h.manager.Disable(family, uuid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Enable 启用一个 entry
func (h *PoolHandler) Enable(c *gin.Context) {
	family := pool.Family(c.Param("family"))
	uuid := c.Param("uuid")
	if !h.manager.Enable(family, uuid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetCounters 重置一个 entry 的错误/使用计数
func (h *PoolHandler) ResetCounters(c *gin.Context) {
	family := pool.Family(c.Param("family"))
	uuid := c.Param("uuid")
	if !h.manager.ResetCounters(family, uuid) {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// PerformHealthChecks 触发一轮全量健康检查（同步阻塞直至完成）
func (h *PoolHandler) PerformHealthChecks(c *gin.Context) {
	h.manager.PerformHealthChecks(context.Background(), false)
	c.Status(http.StatusAccepted)
}
