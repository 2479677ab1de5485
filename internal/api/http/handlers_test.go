package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coraldesk/studio/backend/internal/domain/workspace"
	"github.com/coraldesk/studio/backend/internal/infrastructure/logging"
	"github.com/coraldesk/studio/backend/internal/storage"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logging.NewDevelopment()
	loader := storage.NewLoader(storage.NewMemory(), logger)
	workspaces := workspace.NewManager(loader, logger)
	handlers := NewHandlers(workspaces, logger)

	router := gin.New()
	router.GET("/health", handlers.Health)
	router.GET("/workspaces", handlers.ListWorkspaces)
	router.POST("/workspaces/:ref/rebind", handlers.RebindWorkspace)
	router.GET("/workspaces/:ref/tabs", handlers.GetTabs)
	router.POST("/workspaces/:ref/tabs", handlers.OpenTab)
	router.PATCH("/workspaces/:ref/tabs/:id", handlers.UpdateTab)
	router.DELETE("/workspaces/:ref/tabs/:id", handlers.CloseTab)
	router.DELETE("/workspaces/:ref/tabs", handlers.CloseAllTabs)
	router.POST("/workspaces/:ref/tabs/:id/activate", handlers.ActivateTab)
	router.POST("/workspaces/:ref/tabs/:id/promote", handlers.PromoteTab)
	router.POST("/workspaces/:ref/tabs/reorder", handlers.ReorderTabs)
	router.GET("/workspaces/:ref/recents", handlers.ListRecents)
	router.DELETE("/workspaces/:ref/recents", handlers.ClearRecents)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func openTable(t *testing.T, router *gin.Engine, ref, tableID string, preview bool) {
	t.Helper()
	w, _ := do(t, router, "POST", "/workspaces/"+ref+"/tabs", gin.H{
		"type":    "table",
		"label":   "t" + tableID,
		"schema":  "public",
		"tableId": tableID,
		"preview": preview,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHealth(t *testing.T) {
	router := setupRouter()

	w, body := do(t, router, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestOpenTabDerivesID(t *testing.T) {
	router := setupRouter()

	w, body := do(t, router, "POST", "/workspaces/proj1/tabs", gin.H{
		"type":    "table",
		"label":   "orders",
		"schema":  "public",
		"tableId": "291",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	tab := body["tab"].(map[string]interface{})
	assert.Equal(t, "table-291", tab["id"])
}

func TestOpenTabRejectsUnknownType(t *testing.T) {
	router := setupRouter()

	w, _ := do(t, router, "POST", "/workspaces/proj1/tabs", gin.H{
		"type":  "bogus",
		"label": "x",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOpenTabRejectsBadRef(t *testing.T) {
	router := setupRouter()

	w, _ := do(t, router, "POST", "/workspaces/bad..ref/tabs", gin.H{
		"type": "table",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewReplacement(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", true)
	openTable(t, router, "proj1", "2", true)

	_, body := do(t, router, "GET", "/workspaces/proj1/tabs", nil)
	state := body["state"].(map[string]interface{})

	openTabs := state["openTabs"].([]interface{})
	require.Len(t, openTabs, 1)
	assert.Equal(t, "table-2", openTabs[0])
	assert.Equal(t, "table-2", state["previewTabId"])
}

func TestPromoteTab(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", true)

	w, _ := do(t, router, "POST", "/workspaces/proj1/tabs/table-1/promote", nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, body := do(t, router, "GET", "/workspaces/proj1/tabs", nil)
	state := body["state"].(map[string]interface{})
	assert.Nil(t, state["previewTabId"])

	// A permanent tab cannot be promoted again
	w, _ = do(t, router, "POST", "/workspaces/proj1/tabs/table-1/promote", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActivateReturnsLocation(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "291", false)
	openTable(t, router, "proj1", "292", false)

	w, body := do(t, router, "POST", "/workspaces/proj1/tabs/table-291/activate", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/project/proj1/editor/291?schema=public", body["location"])
}

func TestActivateUnknownTab(t *testing.T) {
	router := setupRouter()

	w, _ := do(t, router, "POST", "/workspaces/proj1/tabs/table-999/activate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTabLabel(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)

	w, body := do(t, router, "PATCH", "/workspaces/proj1/tabs/table-1", gin.H{
		"label": "renamed",
	})

	require.Equal(t, http.StatusOK, w.Code)
	tab := body["tab"].(map[string]interface{})
	assert.Equal(t, "renamed", tab["label"])

	w, _ = do(t, router, "PATCH", "/workspaces/proj1/tabs/table-999", gin.H{"label": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCloseActiveNavigatesToNeighbor(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)
	openTable(t, router, "proj1", "2", false)

	// table-2 is active; closing it should land on table-1
	w, body := do(t, router, "DELETE", "/workspaces/proj1/tabs/table-2?editor=table", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/project/proj1/editor/1?schema=public", body["location"])
	assert.Equal(t, false, body["historyCleared"])
}

func TestCloseLastTabFallsBackToSection(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)

	w, body := do(t, router, "DELETE", "/workspaces/proj1/tabs/table-1?editor=table", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/project/proj1/editor", body["location"])
	assert.Equal(t, true, body["historyCleared"])
}

func TestCloseAllByFamily(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)
	w, _ := do(t, router, "POST", "/workspaces/proj1/tabs", gin.H{
		"type":  "sql",
		"label": "my query",
		"sqlId": "abc",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := do(t, router, "DELETE", "/workspaces/proj1/tabs?editor=sql", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/project/proj1/sql", body["location"])

	state := body["state"].(map[string]interface{})
	openTabs := state["openTabs"].([]interface{})
	require.Len(t, openTabs, 1)
	assert.Equal(t, "table-1", openTabs[0])
}

func TestReorder(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)
	openTable(t, router, "proj1", "2", false)
	openTable(t, router, "proj1", "3", false)

	w, body := do(t, router, "POST", "/workspaces/proj1/tabs/reorder", gin.H{
		"oldIndex": 0,
		"newIndex": 2,
	})

	require.Equal(t, http.StatusOK, w.Code)
	openTabs := body["openTabs"].([]interface{})
	assert.Equal(t, []interface{}{"table-2", "table-3", "table-1"}, openTabs)

	w, _ = do(t, router, "POST", "/workspaces/proj1/tabs/reorder", gin.H{
		"oldIndex": 0,
		"newIndex": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecentsLifecycle(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)
	openTable(t, router, "proj1", "2", false)

	_, body := do(t, router, "GET", "/workspaces/proj1/recents", nil)
	assert.EqualValues(t, 2, body["count"])

	// Preview visits do not feed the tracker
	openTable(t, router, "proj1", "3", true)
	_, body = do(t, router, "GET", "/workspaces/proj1/recents", nil)
	assert.EqualValues(t, 2, body["count"])

	w, body := do(t, router, "DELETE", "/workspaces/proj1/recents", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["count"])
}

func TestRecentsTypeFilter(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)
	w, _ := do(t, router, "POST", "/workspaces/proj1/tabs", gin.H{
		"type":  "sql",
		"sqlId": "abc",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	_, body := do(t, router, "GET", "/workspaces/proj1/recents?type=sql", nil)
	assert.EqualValues(t, 1, body["count"])

	w, _ = do(t, router, "GET", "/workspaces/proj1/recents?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Clearing one family leaves the other
	w, body = do(t, router, "DELETE", "/workspaces/proj1/recents?type=sql", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["count"])
}

func TestRebindKeepsPersistedState(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)

	w, body := do(t, router, "POST", "/workspaces/proj1/rebind", nil)

	require.Equal(t, http.StatusOK, w.Code)
	state := body["state"].(map[string]interface{})
	openTabs := state["openTabs"].([]interface{})
	require.Len(t, openTabs, 1)
	assert.Equal(t, "table-1", openTabs[0])
}

func TestWorkspaceList(t *testing.T) {
	router := setupRouter()

	openTable(t, router, "proj1", "1", false)
	openTable(t, router, "proj2", "1", false)

	_, body := do(t, router, "GET", "/workspaces", nil)
	assert.EqualValues(t, 2, body["count"])
}
