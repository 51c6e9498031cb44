package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/tripassist/config"
)

func loadTestConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "http:\n  mode: test\ndatabase:\n  driver: sqlite\n  path: \":memory:\"\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	// keep optional integrations off regardless of the environment
	cfg.Gateway.APIKey = ""
	cfg.LLM.APIKey = ""
	return cfg
}

func TestBuild_sqliteInMemory(t *testing.T) {
	logger, _ := test.NewNullLogger()
	app, err := Build(context.Background(), loadTestConfig(t, ""), logger)
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Sessions)
	assert.Nil(t, app.Tokens)

	router := NewRouter(app)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome to the Trip Assistant API!")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":"what is the weather like","user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"u1"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/flights?number=ZZ999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/1/bookings", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestBuild_authEnabled(t *testing.T) {
	logger, _ := test.NewNullLogger()
	app, err := Build(context.Background(), loadTestConfig(t, "auth:\n  jwt_secret: s3cret\n"), logger)
	require.NoError(t, err)
	defer app.Close()
	require.NotNil(t, app.Tokens)

	token, err := app.Tokens.GenerateToken("alice")
	require.NoError(t, err)

	router := NewRouter(app)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"alice","turns":[]}`, w.Body.String())
}

func TestBuild_redisSessionsRequireRedis(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := Build(context.Background(), loadTestConfig(t, "session:\n  backend: redis\n"), logger)
	assert.ErrorContains(t, err, "requires redis.enabled")
}

func TestBuild_redisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	logger, _ := test.NewNullLogger()
	cfg := loadTestConfig(t, "redis:\n  enabled: true\n  addr: "+mr.Addr()+"\nsession:\n  backend: redis\n")
	app, err := Build(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.Sessions)

	router := NewRouter(app)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query":"I want to book a flight","user_id":"u7"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mr.Exists("session:u7"))
	assert.False(t, mr.Exists("lock:session:u7"))
}

func TestOpenInventory_unknownDriver(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, _, err := OpenInventory(context.Background(), config.DatabaseConfig{Driver: "oracle"}, logger)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestCorsConfig(t *testing.T) {
	wildcard := corsConfig(config.HTTPConfig{AllowedOrigins: []string{"*"}})
	assert.True(t, wildcard.AllowAllOrigins)
	assert.Empty(t, wildcard.AllowOrigins)
	assert.False(t, wildcard.AllowCredentials)

	listed := corsConfig(config.HTTPConfig{AllowedOrigins: []string{"https://app.example.com"}})
	assert.False(t, listed.AllowAllOrigins)
	assert.Equal(t, []string{"https://app.example.com"}, listed.AllowOrigins)
	assert.True(t, listed.AllowCredentials)
}

func TestStartSessionStats(t *testing.T) {
	logger, _ := test.NewNullLogger()
	app, err := Build(context.Background(), loadTestConfig(t, "session:\n  stats_schedule: \"not a schedule\"\n"), logger)
	require.NoError(t, err)
	defer app.Close()

	_, err = startSessionStats(app)
	assert.ErrorContains(t, err, "schedule session stats")

	app.Config.Session.StatsSchedule = "@every 1m"
	c, err := startSessionStats(app)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
