package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dogwalk/server/internal/data"
	"github.com/dogwalk/server/internal/game"
	"github.com/dogwalk/server/internal/persist"
	"github.com/dogwalk/server/internal/world"
)

const testConfig = `{
  "defaultDogSpeed": 2.0,
  "lootGeneratorConfig": {"period": 1.0, "probability": 0},
  "maps": [{
    "id": "m1",
    "name": "Map One",
    "roads": [{"x0": 0, "y0": 0, "x1": 40}],
    "offices": [{"id": "o1", "x": 10, "y": 0, "offsetX": 0, "offsetY": 0}],
    "lootTypes": [{"value": 5}, {"value": 30}]
  }]
}`

type stubStore struct {
	mu   sync.Mutex
	rows []persist.RetiredPlayer
}

func (s *stubStore) Save(_ context.Context, p persist.RetiredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, p)
	return nil
}

func (s *stubStore) Load(_ context.Context, start, maxItems int) ([]persist.RetiredPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start >= len(s.rows) {
		return nil, nil
	}
	end := start + maxItems
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[start:end], nil
}

func newTestRouter(t *testing.T, opts game.Options, store game.RetiredStore) *mux.Router {
	t.Helper()
	gd, err := data.ParseGameData([]byte(testConfig))
	require.NoError(t, err)
	if store == nil {
		store = &stubStore{}
	}
	app := game.NewApp(world.NewGame(gd), store, opts, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go app.Strand().Run(ctx)

	r := mux.NewRouter()
	NewAPI(app).Register(r)
	return r
}

func do(r *mux.Router, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func joinPlayer(t *testing.T, r *mux.Router, name string) (token string, playerID int64) {
	t.Helper()
	rec := do(r, http.MethodPost, "/api/v1/game/join",
		`{"userName": "`+name+`", "mapId": "m1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		AuthToken string `json:"authToken"`
		PlayerID  int64  `json:"playerId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.AuthToken, body.PlayerID
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestMapsEndpoint(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)

	rec := do(r, http.MethodGet, "/api/v1/maps", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	var maps []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &maps))
	require.Len(t, maps, 1)
	assert.Equal(t, "m1", maps[0]["id"])
	assert.Equal(t, "Map One", maps[0]["name"])

	rec = do(r, http.MethodPost, "/api/v1/maps", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "badRequest", errCode(t, rec))
}

func TestMapByIDEndpoint(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)

	rec := do(r, http.MethodGet, "/api/v1/maps/m1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "m1", m["id"])
	// The config object comes back whole, offices included.
	assert.Contains(t, m, "offices")

	rec = do(r, http.MethodGet, "/api/v1/maps/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "mapNotFound", errCode(t, rec))

	rec = do(r, http.MethodPut, "/api/v1/maps/m1", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
	assert.Equal(t, "invalidMethod", errCode(t, rec))
}

func TestJoinEndpoint(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)

	token, playerID := joinPlayer(t, r, "Rex")
	assert.Len(t, token, 32)
	assert.GreaterOrEqual(t, playerID, int64(0))

	rec := do(r, http.MethodGet, "/api/v1/game/join", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))

	rec = do(r, http.MethodPost, "/api/v1/game/join", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/join", `{"mapId": "m1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/join", `{"userName": "", "mapId": "m1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/join", `{"userName": "Rex", "mapId": "zzz"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "mapNotFound", errCode(t, rec))
}

func TestAuthHeaderValidation(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)

	cases := map[string]string{
		"missing":       "",
		"wrong scheme":  "Basic 0123456789abcdef0123456789abcdef",
		"too short":     "Bearer 0123456789abcdef",
		"too long":      "Bearer 0123456789abcdef0123456789abcdef00",
		"not hex":       "Bearer 0123456789abcdef0123456789abcdeZ",
		"uppercase hex": "Bearer 0123456789ABCDEF0123456789ABCDEF",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			h := map[string]string{}
			if header != "" {
				h["Authorization"] = header
			}
			rec := do(r, http.MethodGet, "/api/v1/game/players", "", h)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "invalidToken", errCode(t, rec))
		})
	}

	// Well-formed but unregistered token.
	rec := do(r, http.MethodGet, "/api/v1/game/players", "",
		bearer("0123456789abcdef0123456789abcdef"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unknownToken", errCode(t, rec))
}

func TestPlayersEndpoint(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)
	token, playerID := joinPlayer(t, r, "Rex")
	joinPlayer(t, r, "Fido")

	rec := do(r, http.MethodGet, "/api/v1/game/players", "", bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Rex", body[jsonID(playerID)].Name)

	rec = do(r, http.MethodDelete, "/api/v1/game/players", "", bearer(token))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestStateEndpoint(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)
	token, playerID := joinPlayer(t, r, "Rex")

	rec := do(r, http.MethodPost, "/api/v1/game/player/action", `{"move": "R"}`,
		map[string]string{
			"Authorization": "Bearer " + token,
			"Content-Type":  "application/json",
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(r, http.MethodGet, "/api/v1/game/state", "", bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Players map[string]struct {
			Pos   [2]float64 `json:"pos"`
			Speed [2]float64 `json:"speed"`
			Dir   string     `json:"dir"`
			Bag   []any      `json:"bag"`
			Score int        `json:"score"`
		} `json:"players"`
		LostObjects map[string]any `json:"lostObjects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	dog, ok := body.Players[jsonID(playerID)]
	require.True(t, ok)
	assert.Equal(t, [2]float64{0, 0}, dog.Pos)
	assert.Equal(t, [2]float64{2, 0}, dog.Speed)
	assert.Equal(t, "R", dog.Dir)
	assert.Empty(t, dog.Bag)
	assert.Zero(t, dog.Score)
	assert.Empty(t, body.LostObjects)
}

func TestActionEndpointValidation(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)
	token, _ := joinPlayer(t, r, "Rex")
	jsonHeaders := map[string]string{
		"Authorization": "Bearer " + token,
		"Content-Type":  "application/json",
	}

	// Content type is mandatory.
	rec := do(r, http.MethodPost, "/api/v1/game/player/action", `{"move": "R"}`, bearer(token))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/player/action", `{}`, jsonHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/player/action", `{"move": "north"}`, jsonHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	// The stop command is the empty string.
	rec = do(r, http.MethodPost, "/api/v1/game/player/action", `{"move": ""}`, jsonHeaders)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/game/player/action", "", jsonHeaders)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestTickEndpoint(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)

	rec := do(r, http.MethodPost, "/api/v1/game/tick", `{"timeDelta": 1000}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(r, http.MethodPost, "/api/v1/game/tick", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/tick", `{"timeDelta": "soon"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodPost, "/api/v1/game/tick", `{"timeDelta": 0}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalidArgument", errCode(t, rec))

	rec = do(r, http.MethodGet, "/api/v1/game/tick", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestTickEndpointDisabledInAutoMode(t *testing.T) {
	r := newTestRouter(t, game.Options{AutoTick: true}, nil)

	// Whatever the method, the endpoint does not exist in automatic mode.
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		rec := do(r, method, "/api/v1/game/tick", `{"timeDelta": 1000}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, "badRequest", errCode(t, rec))
	}
}

func TestRecordsEndpoint(t *testing.T) {
	store := &stubStore{rows: []persist.RetiredPlayer{
		{ID: uuid.New(), Name: "a", Score: 42, PlayTime: 12.5},
		{ID: uuid.New(), Name: "b", Score: 10, PlayTime: 3},
		{ID: uuid.New(), Name: "c", Score: 1, PlayTime: 99},
	}}
	r := newTestRouter(t, game.Options{}, store)

	rec := do(r, http.MethodGet, "/api/v1/game/records", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []recordBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, recordBody{Name: "a", Score: 42, PlayTime: 12.5}, rows[0])

	rec = do(r, http.MethodGet, "/api/v1/game/records?start=1&maxItems=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].Name)

	rec = do(r, http.MethodGet, "/api/v1/game/records?maxItems=101", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "badRequest", errCode(t, rec))

	rec = do(r, http.MethodGet, "/api/v1/game/records?start=oops", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodPost, "/api/v1/game/records", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET", rec.Header().Get("Allow"))
}

func TestUnknownAPIPath(t *testing.T) {
	r := newTestRouter(t, game.Options{}, nil)

	rec := do(r, http.MethodGet, "/api/v2/maps", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "badRequest", errCode(t, rec))

	rec = do(r, http.MethodGet, "/api/v1/game/unknown", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
