package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dogwalk/server/internal/game"
)

// maxRecordsPage caps one leaderboard page.
const maxRecordsPage = 100

// API serves the REST surface over the command API.
type API struct {
	app *game.App
}

func NewAPI(app *game.App) *API {
	return &API{app: app}
}

// Register mounts every /api/v1 route on the router. Anything else under
// /api falls through to a flat 400, never to the static file server.
func (a *API) Register(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.Path("/maps").HandlerFunc(a.handleMaps)
	v1.Path("/maps/{id}").HandlerFunc(a.handleMap)
	v1.Path("/game/join").HandlerFunc(a.handleJoin)
	v1.Path("/game/players").HandlerFunc(a.handlePlayers)
	v1.Path("/game/state").HandlerFunc(a.handleState)
	v1.Path("/game/player/action").HandlerFunc(a.handleAction)
	v1.Path("/game/tick").HandlerFunc(a.handleTick)
	v1.Path("/game/records").HandlerFunc(a.handleRecords)

	r.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeBadRequest(w)
	})
}

func isRead(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

func (a *API) handleMaps(w http.ResponseWriter, r *http.Request) {
	if !isRead(r) {
		writeBadRequest(w)
		return
	}
	writeJSON(w, http.StatusOK, a.app.Maps())
}

func (a *API) handleMap(w http.ResponseWriter, r *http.Request) {
	if !isRead(r) {
		writeMethodNotAllowed(w, "GET, HEAD")
		return
	}
	raw := a.app.MapConfig(mux.Vars(r)["id"])
	if raw == nil {
		writeError(w, http.StatusNotFound, "mapNotFound", "Map not found")
		return
	}
	// The stored config JSON goes out verbatim.
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (a *API) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, "POST")
		return
	}
	var req struct {
		UserName *string `json:"userName"`
		MapID    *string `json:"mapId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserName == nil || req.MapID == nil {
		writeError(w, http.StatusBadRequest, "invalidArgument", "Join game request parse error")
		return
	}
	res, err := a.app.Join(r.Context(), *req.UserName, *req.MapID)
	if err != nil {
		if err == game.ErrInvalidName {
			writeError(w, http.StatusBadRequest, "invalidArgument", "Invalid name")
			return
		}
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		AuthToken string `json:"authToken"`
		PlayerID  int64  `json:"playerId"`
	}{res.Token, res.PlayerID})
}

// bearerToken extracts the token from the Authorization header. Accepted
// form is exactly "Bearer " plus 32 lowercase hex characters, 39 bytes.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) != 39 || h[:7] != "Bearer " {
		return "", false
	}
	token := h[7:]
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	return token, true
}

// withAuth runs next with a validated token, answering 401 itself when the
// header is malformed.
func (a *API) withAuth(w http.ResponseWriter, r *http.Request, next func(token string)) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalidToken", "Authorization header is missing")
		return
	}
	next(token)
}

func (a *API) handlePlayers(w http.ResponseWriter, r *http.Request) {
	if !isRead(r) {
		writeMethodNotAllowed(w, "GET, HEAD")
		return
	}
	a.withAuth(w, r, func(token string) {
		players, err := a.app.ListPlayers(r.Context(), token)
		if err != nil {
			writeAppError(w, err)
			return
		}
		body := make(map[string]any, len(players))
		for _, p := range players {
			body[strconv.FormatInt(p.ID, 10)] = struct {
				Name string `json:"name"`
			}{p.Name}
		}
		writeJSON(w, http.StatusOK, body)
	})
}

type dogStateBody struct {
	Pos   [2]float64    `json:"pos"`
	Speed [2]float64    `json:"speed"`
	Dir   string        `json:"dir"`
	Bag   []bagItemBody `json:"bag"`
	Score int           `json:"score"`
}

type bagItemBody struct {
	ID   int64 `json:"id"`
	Type int   `json:"type"`
}

type lootStateBody struct {
	Type int        `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	if !isRead(r) {
		writeMethodNotAllowed(w, "GET, HEAD")
		return
	}
	a.withAuth(w, r, func(token string) {
		st, err := a.app.GetState(r.Context(), token)
		if err != nil {
			writeAppError(w, err)
			return
		}
		players := make(map[string]dogStateBody, len(st.Players))
		for _, d := range st.Players {
			bag := make([]bagItemBody, 0, len(d.Bag))
			for _, it := range d.Bag {
				bag = append(bag, bagItemBody{ID: it.ID, Type: it.Type})
			}
			players[strconv.FormatInt(d.ID, 10)] = dogStateBody{
				Pos:   [2]float64{d.Pos.X, d.Pos.Y},
				Speed: [2]float64{d.Speed.X, d.Speed.Y},
				Dir:   d.Dir,
				Bag:   bag,
				Score: d.Score,
			}
		}
		loot := make(map[string]lootStateBody, len(st.Loot))
		for _, obj := range st.Loot {
			loot[strconv.FormatInt(obj.ID, 10)] = lootStateBody{
				Type: obj.Type,
				Pos:  [2]float64{obj.Pos.X, obj.Pos.Y},
			}
		}
		writeJSON(w, http.StatusOK, struct {
			Players     map[string]dogStateBody  `json:"players"`
			LostObjects map[string]lootStateBody `json:"lostObjects"`
		}{players, loot})
	})
}

func (a *API) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, "POST")
		return
	}
	if r.Header.Get("Content-Type") != "application/json" {
		writeError(w, http.StatusBadRequest, "invalidArgument", "Invalid content type")
		return
	}
	a.withAuth(w, r, func(token string) {
		var req struct {
			Move *string `json:"move"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == nil {
			writeError(w, http.StatusBadRequest, "invalidArgument", "Failed to parse action")
			return
		}
		if err := a.app.Move(r.Context(), token, *req.Move); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct{}{})
	})
}

func (a *API) handleTick(w http.ResponseWriter, r *http.Request) {
	// In automatic mode the endpoint does not exist, whatever the method.
	if a.app.AutoTick() {
		writeError(w, http.StatusBadRequest, "badRequest", "Invalid endpoint")
		return
	}
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, "POST")
		return
	}
	var req struct {
		TimeDelta *int64 `json:"timeDelta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TimeDelta == nil {
		writeError(w, http.StatusBadRequest, "invalidArgument", "Failed to parse tick request")
		return
	}
	if err := a.app.Tick(r.Context(), *req.TimeDelta); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (a *API) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, "GET")
		return
	}
	start, err := queryInt(r, "start", 0)
	if err != nil {
		writeBadRequest(w)
		return
	}
	maxItems, err := queryInt(r, "maxItems", maxRecordsPage)
	if err != nil || maxItems > maxRecordsPage {
		writeBadRequest(w)
		return
	}
	rows, err := a.app.Records(r.Context(), start, maxItems)
	if err != nil {
		writeAppError(w, err)
		return
	}
	body := make([]recordBody, 0, len(rows))
	for _, row := range rows {
		body = append(body, recordBody{Name: row.Name, Score: row.Score, PlayTime: row.PlayTime})
	}
	writeJSON(w, http.StatusOK, body)
}

type recordBody struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	PlayTime float64 `json:"playTime"`
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("query param %s: bad value %q", key, raw)
	}
	return v, nil
}
