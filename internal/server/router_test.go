package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/zairysbigtae/privdm-backend/internal/auth"
	"github.com/zairysbigtae/privdm-backend/internal/command"
	"github.com/zairysbigtae/privdm-backend/internal/config"
	"github.com/zairysbigtae/privdm-backend/internal/models"
	"github.com/zairysbigtae/privdm-backend/internal/service"
	"github.com/zairysbigtae/privdm-backend/internal/store"
	"github.com/zairysbigtae/privdm-backend/internal/ws"
)

const testSecret = "router-test-secret"

func testConfig() config.Config {
	return config.Config{
		Port:             "0",
		JWTSecret:        testSecret,
		Env:              "dev",
		Store:            config.StoreMemory,
		LoginMaxAttempts: 100,
		LoginWindow:      time.Minute,
	}
}

func newTestEngine(t *testing.T, cfg config.Config) (*gin.Engine, *store.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := store.NewMemory()
	users := service.NewUserService(st, cfg.JWTSecret)
	engine := SetupRouter(cfg, Deps{
		Accounts: users,
		Commands: command.NewRouter(users, service.NewRoomService(st), service.NewMessageService(st)),
		Hub:      ws.NewHub(),
	})
	return engine, st
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodePair(t *testing.T, w *httptest.ResponseRecorder) auth.TokenPair {
	t.Helper()
	var pair auth.TokenPair
	if err := json.Unmarshal(w.Body.Bytes(), &pair); err != nil {
		t.Fatalf("decode token pair: %v (body %s)", err, w.Body.String())
	}
	return pair
}

func TestHealthz(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())
	w := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSignupLoginRefresh(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())

	w := doJSON(t, engine, http.MethodPost, "/signup", credentials{Name: "alice", Pass: "hunter2"})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	signup := decodePair(t, w)
	if signup.UserID == 0 || signup.AccessToken == "" || signup.RefreshToken == "" {
		t.Fatalf("signup pair incomplete: %+v", signup)
	}

	w = doJSON(t, engine, http.MethodPost, "/login", credentials{Name: "alice", Pass: "hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", w.Code)
	}
	login := decodePair(t, w)
	if login.UserID != signup.UserID {
		t.Errorf("login user_id = %d, want %d", login.UserID, signup.UserID)
	}
	claims, err := auth.ParseToken(login.AccessToken, testSecret, auth.TypeAccess)
	if err != nil || claims.Name != "alice" {
		t.Errorf("ParseToken() = %+v, %v", claims, err)
	}

	w = doJSON(t, engine, http.MethodPost, "/refresh", map[string]string{"refresh_token": login.RefreshToken})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, want 200", w.Code)
	}
	w = doJSON(t, engine, http.MethodPost, "/refresh", map[string]string{"refresh_token": login.AccessToken})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh with access token status = %d, want 401", w.Code)
	}
}

func TestSignupErrors(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())
	if w := doJSON(t, engine, http.MethodPost, "/signup", credentials{Name: "bob", Pass: "pw"}); w.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", w.Code)
	}

	tests := []struct {
		name string
		body any
		want int
	}{
		{"duplicate name", credentials{Name: "bob", Pass: "other"}, http.StatusConflict},
		{"empty name", credentials{Name: "", Pass: "pw"}, http.StatusBadRequest},
		{"empty password", credentials{Name: "carol", Pass: ""}, http.StatusBadRequest},
		{"malformed json", "{not json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, engine, http.MethodPost, "/signup", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Errorf("error body = %s", w.Body.String())
			}
		})
	}
}

func TestLoginErrors(t *testing.T) {
	engine, st := newTestEngine(t, testConfig())
	doJSON(t, engine, http.MethodPost, "/signup", credentials{Name: "dave", Pass: "right"})
	if err := st.InsertUser(context.Background(), &models.User{Name: "corrupt", PassHash: "not-a-hash"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		body credentials
		want int
	}{
		{"wrong password", credentials{Name: "dave", Pass: "wrong"}, http.StatusUnauthorized},
		{"unknown user", credentials{Name: "nobody", Pass: "right"}, http.StatusUnauthorized},
		{"corrupt stored hash", credentials{Name: "corrupt", Pass: "x"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, engine, http.MethodPost, "/login", tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestLoginLimiterTrips(t *testing.T) {
	cfg := testConfig()
	cfg.LoginMaxAttempts = 2
	engine, _ := newTestEngine(t, cfg)

	for i := 0; i < 2; i++ {
		doJSON(t, engine, http.MethodPost, "/login", credentials{Name: "x", Pass: "y"})
	}
	w := doJSON(t, engine, http.MethodPost, "/login", credentials{Name: "x", Pass: "y"})
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestLookup(t *testing.T) {
	engine, _ := newTestEngine(t, testConfig())
	pair := decodePair(t, doJSON(t, engine, http.MethodPost, "/signup", credentials{Name: "erin", Pass: "secret"}))

	byID := doJSON(t, engine, http.MethodGet, "/?id="+strconv.FormatInt(pair.UserID, 10), nil)
	byName := doJSON(t, engine, http.MethodGet, "/?name=erin", nil)
	if byID.Code != http.StatusOK || byName.Code != http.StatusOK {
		t.Fatalf("status = %d / %d, want 200", byID.Code, byName.Code)
	}
	if !bytes.Equal(byID.Body.Bytes(), byName.Body.Bytes()) {
		t.Errorf("lookup bodies differ:\n%s\n%s", byID.Body.String(), byName.Body.String())
	}
	if strings.Contains(byID.Body.String(), "pass") {
		t.Errorf("lookup leaks credential fields: %s", byID.Body.String())
	}

	var got models.PublicUser
	if err := json.Unmarshal(byID.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != pair.UserID || got.Name != "erin" || got.JoinedAt.IsZero() {
		t.Errorf("lookup = %+v", got)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/?id=999", http.StatusNotFound},
		{"/?name=nobody", http.StatusNotFound},
		{"/?id=abc", http.StatusBadRequest},
		{"/", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := doJSON(t, engine, http.MethodGet, tt.path, nil); w.Code != tt.want {
			t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.want)
		}
	}
}

func TestWebSocketAuth(t *testing.T) {
	cfg := testConfig()
	cfg.WSRequireAuth = true
	engine, _ := newTestEngine(t, cfg)
	srv := httptest.NewServer(engine)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Dial() without token: err = %v, resp = %v; want 401", err, resp)
	}

	tok, err := auth.GenerateToken("frank", testSecret, auth.TypeAccess, time.Now(), auth.AccessTokenTTL)
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+tok, nil)
	if err != nil {
		t.Fatalf("Dial() with token error = %v", err)
	}
	defer conn.Close()
	if err := conn.WriteMessage(websocket.TextMessage, []byte("get_users")); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, data, err := conn.ReadMessage(); err != nil || string(data) != "Requesting users..." {
		t.Errorf("first reply = %q, %v", data, err)
	}
}
