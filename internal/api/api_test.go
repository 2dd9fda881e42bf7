package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PlayHorizon/internal/config"
	"PlayHorizon/internal/database"
	"PlayHorizon/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	t  *testing.T
	r  *gin.Engine
	db *gorm.DB
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode, RequestTimeout: 5 * time.Second},
		Database: config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Auth:     config.AuthConfig{JWTSecret: "api-test-secret", TokenTTL: time.Hour, BcryptCost: 4},
		Catalog:  config.CatalogConfig{GenreFilter: config.GenreFilterQuery},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.Open(cfg.Database, logger)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r, err := NewRouter(cfg, db, logger)
	require.NoError(t, err)
	return &testServer{t: t, r: r, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(s.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// register 注册并登录，返回用户 ID 与 token
func (s *testServer) register(name string, admin bool) (uint64, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/signup", "", gin.H{"username": name, "email": name + "@example.com", "password": "pw-" + name})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	id := uint64(decode(s.t, w)["userId"].(float64))

	if admin {
		require.NoError(s.t, s.db.Model(&model.User{}).Where("id = ?", id).Update("role", model.RoleAdmin).Error)
	}

	w = s.do(http.MethodPost, "/api/login", "", gin.H{"email": name + "@example.com", "password": "pw-" + name})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return id, decode(s.t, w)["token"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())
	w := s.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Database connection successful", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := s.do(http.MethodPost, "/api/signup", "", gin.H{"email": "x@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username is required", decode(t, w)["error"])

	id, token := s.register("alice", false)

	w = s.do(http.MethodPost, "/api/signup", "", gin.H{"username": "alice", "email": "other@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already taken", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["error"])

	w = s.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", decode(t, w)["error"])

	w = s.do(http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid or expired token", decode(t, w)["error"])

	w = s.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, float64(id), me["id"])
	assert.Equal(t, "user", me["role"])
}

func TestAdminCatalogFlow(t *testing.T) {
	s := newTestServer(t, testConfig())
	_, userToken := s.register("player", false)
	_, adminToken := s.register("admin", true)

	game := gin.H{
		"app_id":       730,
		"name":         "Counter-Strike 2",
		"release_date": "2023-09-27",
		"price":        0,
		"genres":       []string{"Action", "FPS"},
		"developers":   []string{"Valve"},
		"screenshots":  []string{"https://cdn/1.jpg"},
	}

	w := s.do(http.MethodPost, "/api/games", userToken, game)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/games", adminToken, game)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Game created successfully", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/api/games", adminToken, game)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Game already exists", decode(t, w)["error"])

	w = s.do(http.MethodPost, "/api/games", adminToken, gin.H{"app_id": 1, "name": "x", "metacritic_score": 150})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/games/730", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.Equal(t, "Counter-Strike 2", detail["name"])
	assert.Equal(t, []interface{}{"Action", "FPS"}, detail["genres"])
	assert.Equal(t, []interface{}{"https://cdn/1.jpg"}, detail["screenshots"])
	assert.Nil(t, detail["review_score"])

	w = s.do(http.MethodPut, "/api/games/730", adminToken, `{"price": 14.99, "genres": ["Shooter"], "header_image": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Game and related data updated successfully", body["message"])
	assert.Equal(t, float64(730), body["updatedGameId"])

	w = s.do(http.MethodGet, "/api/games/730/price-history", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode(t, w)["history"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, 14.99, history[0].(map[string]interface{})["new_price"])

	w = s.do(http.MethodPut, "/api/games/730", adminToken, `{"name": null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/games/999", adminToken, `{"notes": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/games/730", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(730), decode(t, w)["deletedGameId"])

	w = s.do(http.MethodGet, "/api/games/730", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Game not found", decode(t, w)["error"])

	w = s.do(http.MethodDelete, "/api/games/730", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogQueries(t *testing.T) {
	s := newTestServer(t, testConfig())
	_, adminToken := s.register("admin", true)
	for i := 1; i <= 3; i++ {
		w := s.do(http.MethodPost, "/api/games", adminToken, gin.H{
			"app_id": i,
			"name":   fmt.Sprintf("Puzzle %d", i),
			"price":  float64(i) * 10,
			"genres": []string{"Puzzle"},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/games?page=2&pageSize=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.Len(t, list["games"], 1)
	assert.Equal(t, map[string]interface{}{"currentPage": 2.0, "pageSize": 2.0, "totalCount": 3.0, "totalPages": 2.0}, list["pagination"])

	w = s.do(http.MethodGet, "/api/games?page=99999999999999999&pageSize=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode(t, w)
	assert.Equal(t, []interface{}{}, list["games"])
	pagination := list["pagination"].(map[string]interface{})
	assert.Equal(t, 1e17, pagination["currentPage"])
	assert.Equal(t, 3.0, pagination["totalCount"])

	w = s.do(http.MethodGet, "/api/games/search?query=", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{}, decode(t, w)["games"])

	w = s.do(http.MethodGet, "/api/games/search?query=puzzle%202", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = s.do(http.MethodGet, "/api/by-genre?genre=Puzzle&maxPrice=25&pageSize=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))
	assert.Equal(t, "2", w.Header().Get("X-Total-Pages"))
	assert.Equal(t, "1", w.Header().Get("X-Page-Size"))
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Puzzle 1", rows[0]["name"])

	w = s.do(http.MethodGet, "/api/genres", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Puzzle"}]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/trending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/games/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/games", adminToken, gin.H{"app_id": 4, "name": "Scored", "metacritic_score": 88, "genres": []string{"Puzzle"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/games/1/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"app_id":1,"average_genre_metacritic":88,"achievement_count":null,"number_of_genres":1}`, w.Body.String())
	w = s.do(http.MethodGet, "/api/games/999/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/games"`)
}

func TestLibraryFlow(t *testing.T) {
	s := newTestServer(t, testConfig())
	_, adminToken := s.register("admin", true)
	uid, token := s.register("gamer", false)
	otherID, _ := s.register("other", false)
	base := fmt.Sprintf("/api/users/%d/games", uid)

	w := s.do(http.MethodPost, "/api/games", adminToken, gin.H{"app_id": 42, "name": "Answer", "about_the_game": "desc"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/games", otherID), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodGet, "/api/users/abc/games", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, base, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, base, token, gin.H{"app_id": 7})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPost, base, token, gin.H{"app_id": 42})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, base, token, gin.H{"app_id": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Game already in library", decode(t, w)["error"])

	w = s.do(http.MethodPatch, base+"/42", token, gin.H{"minutes_played": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPatch, base+"/42", token, gin.H{"minutes_played": 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entry := decode(t, w)
	assert.Equal(t, 120.0, entry["playtime_minutes"])
	assert.Equal(t, 2.0, entry["playtime_hours"])
	assert.NotNil(t, entry["last_played"])

	w = s.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	games := decode(t, w)["games"].([]interface{})
	require.Len(t, games, 1)
	assert.Equal(t, "desc", games[0].(map[string]interface{})["description"])

	w = s.do(http.MethodDelete, base+"/42", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, base+"/42", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRateLimitOnCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}
	s := newTestServer(t, cfg)

	body := gin.H{"email": "nobody@example.com", "password": "x"}
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/api/login", "", body).Code)

	// 查询接口不受限
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/genres", "", nil).Code)
}

func TestListEndpointsKeepGamesArrayOnFailure(t *testing.T) {
	s := newTestServer(t, testConfig())
	uid, token := s.register("gamer", false)

	sqlDB, err := s.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := s.do(http.MethodGet, "/api/games", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Failed to fetch games", body["error"])
	assert.Equal(t, []interface{}{}, body["games"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d/games", uid), token, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Failed to fetch library", body["error"])
	assert.Equal(t, []interface{}{}, body["games"])
}
