package adminapi

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/poolkeeper/provider-pool-manager/internal/config"
	"github.com/poolkeeper/provider-pool-manager/internal/db"
	"github.com/poolkeeper/provider-pool-manager/internal/events"
	"github.com/poolkeeper/provider-pool-manager/internal/pool"
	"github.com/poolkeeper/provider-pool-manager/internal/stats"
	"github.com/poolkeeper/provider-pool-manager/internal/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.InitDatabase(&config.DatabaseConfig{
		Path:            ":memory:",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		AutoMigrate:     true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database))

	tokenService := token.NewService(token.NewRepository(database))
	eventService := events.NewService(database)

	manager, err := pool.NewManager(pool.ManagerConfig{PoolFilePath: filepath.Join(t.TempDir(), "pool.json")})
	require.NoError(t, err)

	return SetupRouter(manager, tokenService, eventService, stats.NewRequestCounter(time.Minute))
}

func TestRouter_HealthEndpointIsUnauthenticated(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_PoolRoutesRequireAuth(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pools", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
