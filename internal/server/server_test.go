package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/storage"
)

type memRecorder struct {
	games []*storage.GameRecord
}

func (m *memRecorder) SaveGame(r *storage.GameRecord) error {
	m.games = append(m.games, r)
	return nil
}

func newApp(t *testing.T) (*fiber.App, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	return New(NewGameManager(rec, nil), Options{AllowOrigins: "*"}), rec
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func create(t *testing.T, app *fiber.App, body interface{}) string {
	t.Helper()
	status, out := do(t, app, http.MethodPost, "/api/games", body)
	require.Equal(t, http.StatusCreated, status, out)
	return out["id"].(string)
}

func TestCreateAndGet(t *testing.T) {
	app, _ := newApp(t)
	id := create(t, app, nil)

	status, out := do(t, app, http.MethodGet, "/api/games/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(8), out["rows"])
	assert.Equal(t, "White", out["turn"])
	assert.Equal(t, "Ongoing", out["status"])
	assert.Len(t, out["legal_moves"], 20)

	rows := out["board"].([]interface{})
	assert.Equal(t, "r", rows[0].([]interface{})[0])
	assert.Equal(t, "", rows[4].([]interface{})[4])

	status, out = do(t, app, http.MethodGet, "/api/games", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{id}, out["games"])
}

func TestCreateMini(t *testing.T) {
	app, _ := newApp(t)
	status, out := do(t, app, http.MethodPost, "/api/games", map[string]string{"board": "mini", "difficulty": "easy"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(6), out["rows"])
	assert.Equal(t, float64(4), out["cols"])

	status, _ = do(t, app, http.MethodPost, "/api/games", map[string]string{"difficulty": "godlike"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/games", map[string]string{"board": "xyz"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMoveAIUndo(t *testing.T) {
	app, _ := newApp(t)
	id := create(t, app, map[string]string{"difficulty": "easy"})

	status, out := do(t, app, http.MethodPost, "/api/games/"+id+"/move", map[string]string{"from": "e2", "to": "e4"})
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "Black", out["turn"])
	assert.Equal(t, []interface{}{"e2e4"}, out["history"])

	status, out = do(t, app, http.MethodPost, "/api/games/"+id+"/ai", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "White", out["turn"])
	assert.Len(t, out["history"], 2)
	assert.NotEmpty(t, out["last_move"])

	status, out = do(t, app, http.MethodPost, "/api/games/"+id+"/undo", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"e2e4"}, out["history"])

	status, out = do(t, app, http.MethodPost, "/api/games/"+id+"/move", map[string]string{"from": "e4", "to": "e6"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, out["error"], "illegal move")

	status, _ = do(t, app, http.MethodPost, "/api/games/"+id+"/move", map[string]string{"from": "z9", "to": "e6"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestUndoEmpty(t *testing.T) {
	app, _ := newApp(t)
	id := create(t, app, nil)
	status, _ := do(t, app, http.MethodPost, "/api/games/"+id+"/undo", nil)
	assert.Equal(t, http.StatusConflict, status)
}

func TestFinishedGameIsRecorded(t *testing.T) {
	app, rec := newApp(t)
	id := create(t, app, map[string]string{"board": "6k1/5ppp/8/8/8/8/8/R5K1 w - -"})

	status, out := do(t, app, http.MethodPost, "/api/games/"+id+"/ai", nil)
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, "a1a8", out["last_move"])
	assert.Equal(t, "Black lost", out["status"])
	assert.Empty(t, out["legal_moves"])

	require.Len(t, rec.games, 1)
	assert.Equal(t, storage.ResultWhiteWins, rec.games[0].Result)
	assert.Equal(t, []string{"a1a8"}, rec.games[0].Moves)

	status, _ = do(t, app, http.MethodPost, "/api/games/"+id+"/ai", nil)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = do(t, app, http.MethodPost, "/api/games/"+id+"/move", map[string]string{"from": "g8", "to": "h8"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestDeleteGame(t *testing.T) {
	app, _ := newApp(t)
	id := create(t, app, nil)

	status, _ := do(t, app, http.MethodDelete, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusOK, status)

	status, out := do(t, app, http.MethodGet, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, out["error"], "game not found")

	status, _ = do(t, app, http.MethodDelete, "/api/games/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
