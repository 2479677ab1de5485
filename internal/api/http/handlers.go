package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coraldesk/studio/backend/internal/domain/tabs"
	"github.com/coraldesk/studio/backend/internal/domain/workspace"
	"github.com/coraldesk/studio/backend/internal/infrastructure/logging"
	"github.com/coraldesk/studio/backend/internal/shared/id"
	"github.com/coraldesk/studio/backend/internal/shared/types"
	"github.com/coraldesk/studio/backend/internal/shared/utils"
)

// Handlers contains all HTTP handlers for the dashboard state API
type Handlers struct {
	workspaces *workspace.Manager
	logger     *logging.Logger
}

// NewHandlers creates the handler set
func NewHandlers(workspaces *workspace.Manager, logger *logging.Logger) *Handlers {
	return &Handlers{
		workspaces: workspaces,
		logger:     logger,
	}
}

// recorder captures the navigation the close/activate flows would issue
// so the response can hand it to the frontend router.
type recorder struct {
	location string
}

func (r *recorder) Push(path string) {
	r.location = path
}

// Root handles the root endpoint
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "studio-state",
		"status":  "running",
	})
}

// Health returns service health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"workspaces": len(h.workspaces.Refs()),
	})
}

// ListWorkspaces lists the refs with live bindings
func (h *Handlers) ListWorkspaces(c *gin.Context) {
	refs := h.workspaces.Refs()
	c.JSON(http.StatusOK, gin.H{
		"workspaces": refs,
		"count":      len(refs),
	})
}

// GetTabs returns the tab state of a workspace
func (h *Handlers) GetTabs(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state": ws.Tabs.State(),
		"stats": ws.Tabs.Stats(),
	})
}

type openTabRequest struct {
	ID        string  `json:"id"`
	Type      string  `json:"type" binding:"required"`
	Label     string  `json:"label"`
	Schema    string  `json:"schema"`
	TableID   string  `json:"tableId"`
	SQLID     string  `json:"sqlId"`
	ScrollTop int     `json:"scrollTop"`
	Preview   bool    `json:"preview"`
}

// OpenTab opens a tab in a workspace. The id is derived from the entity
// when the client does not send one; ids the registry already holds are
// activated rather than re-opened.
func (h *Handlers) OpenTab(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var req openTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tabType := types.TabType(req.Type)
	if !tabType.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tab type: " + req.Type})
		return
	}

	tabID := req.ID
	if tabID == "" {
		switch {
		case tabType == types.TypeSQL && req.SQLID != "":
			tabID = id.ForSnippet(req.SQLID).String()
		case req.TableID != "":
			tabID = id.ForEntity(tabType, req.TableID).String()
		default:
			tabID = id.NewTabID().String()
		}
	}

	tab := types.Tab{
		ID:        tabID,
		Type:      tabType,
		Label:     req.Label,
		IsPreview: req.Preview,
	}
	if req.Schema != "" || req.TableID != "" || req.SQLID != "" {
		tab.Metadata = &types.TabMetadata{
			Schema:    req.Schema,
			TableID:   req.TableID,
			SQLID:     req.SQLID,
			ScrollTop: req.ScrollTop,
		}
	}

	ws.Tabs.Add(tab)
	opened, _ := ws.Tabs.Get(tabID)

	h.logger.Info("Tab opened",
		zap.String("workspace", ws.Ref),
		zap.String("tab_id", tabID),
		zap.Bool("preview", req.Preview),
	)

	c.JSON(http.StatusCreated, gin.H{
		"tab":   opened,
		"state": ws.Tabs.State(),
	})
}

// UpdateTab applies a partial update to an open tab
func (h *Handlers) UpdateTab(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var upd types.TabUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := ws.Tabs.Update(c.Param("id"), upd)
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "tab not found"})
		return
	}

	tab, _ := ws.Tabs.Get(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"tab": tab})
}

// ActivateTab makes a tab active and returns the route the frontend
// should navigate to
func (h *Handlers) ActivateTab(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	tabID := c.Param("id")
	if _, found := ws.Tabs.Get(tabID); !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "tab not found"})
		return
	}

	rec := &recorder{}
	ws.Tabs.HandleNavigation(tabID, rec)

	c.JSON(http.StatusOK, gin.H{
		"active":   tabID,
		"location": rec.location,
	})
}

// PromoteTab converts a preview tab into a permanent one
func (h *Handlers) PromoteTab(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	if !ws.Tabs.MakePermanent(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such preview tab"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"promoted": c.Param("id")})
}

// PromoteActiveTab promotes the active tab if it is a preview. The
// response tells the frontend whether its pending navigation should be
// suppressed.
func (h *Handlers) PromoteActiveTab(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	promoted := ws.Tabs.MakeActivePermanent()
	c.JSON(http.StatusOK, gin.H{"promoted": promoted})
}

type reorderRequest struct {
	OldIndex int    `json:"oldIndex"`
	NewIndex int    `json:"newIndex"`
	TabID    string `json:"tabId"`
}

// ReorderTabs moves a tab to a new strip position
func (h *Handlers) ReorderTabs(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !ws.Tabs.Reorder(req.OldIndex, req.NewIndex) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index out of range"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"openTabs": ws.Tabs.State().OpenTabs})
}

// DragEnd finishes a drag gesture: the dragged tab is promoted out of
// preview, moved, and activated
func (h *Handlers) DragEnd(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := &recorder{}
	ws.Tabs.HandleDragEnd(req.OldIndex, req.NewIndex, req.TabID, rec)

	c.JSON(http.StatusOK, gin.H{
		"openTabs": ws.Tabs.State().OpenTabs,
		"location": rec.location,
	})
}

// CloseTab runs the user-facing close flow. The response carries the
// follow-up route when closing the active tab forced a navigation.
func (h *Handlers) CloseTab(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	rec := &recorder{}
	historyCleared := false
	ws.Tabs.HandleClose(tabs.CloseRequest{
		ID:     c.Param("id"),
		Editor: parseEditor(c.Query("editor")),
		Router: rec,
		OnClearDashboardHistory: func() {
			historyCleared = true
		},
	})

	c.JSON(http.StatusOK, gin.H{
		"closed":         c.Param("id"),
		"location":       rec.location,
		"historyCleared": historyCleared,
	})
}

// CloseAllTabs closes every tab of one editor family
func (h *Handlers) CloseAllTabs(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	rec := &recorder{}
	ws.Tabs.HandleCloseAll(parseEditor(c.Query("editor")), rec, nil)

	c.JSON(http.StatusOK, gin.H{
		"location": rec.location,
		"state":    ws.Tabs.State(),
	})
}

type removeRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// RemoveTabs drops tabs from the registry without navigating
func (h *Handlers) RemoveTabs(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws.Tabs.RemoveMany(req.IDs)
	c.JSON(http.StatusOK, gin.H{"state": ws.Tabs.State()})
}

// ListRecents returns recently visited items, newest first
func (h *Handlers) ListRecents(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var items []types.RecentItem
	if filter := c.Query("type"); filter != "" {
		tabType := types.TabType(filter)
		if !tabType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tab type: " + filter})
			return
		}
		items = ws.Recents.ByType(tabType)
	} else {
		items = ws.Recents.Items()
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// RemoveRecents deletes specific items from the recency tracker
func (h *Handlers) RemoveRecents(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws.Recents.RemoveMany(req.IDs)
	c.JSON(http.StatusOK, gin.H{"count": ws.Recents.Len()})
}

// ClearRecents empties the recency tracker, optionally for one tab type
func (h *Handlers) ClearRecents(c *gin.Context) {
	ws, ok := h.bind(c)
	if !ok {
		return
	}

	if filter := c.Query("type"); filter != "" {
		tabType := types.TabType(filter)
		if !tabType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tab type: " + filter})
			return
		}
		ws.Recents.RemoveByType(tabType)
	} else {
		ws.Recents.Clear()
	}

	c.JSON(http.StatusOK, gin.H{"count": ws.Recents.Len()})
}

// RebindWorkspace discards the live binding and reloads from storage
func (h *Handlers) RebindWorkspace(c *gin.Context) {
	ref := c.Param("ref")
	if err := utils.ValidateID(ref, "ref", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := h.workspaces.Rebind(ref)
	h.logger.Info("Workspace rebound", zap.String("workspace", ref))

	c.JSON(http.StatusOK, gin.H{
		"workspace": ref,
		"state":     ws.Tabs.State(),
	})
}

// ReleaseWorkspace drops the live binding. Persisted state stays behind.
func (h *Handlers) ReleaseWorkspace(c *gin.Context) {
	ref := c.Param("ref")
	if err := utils.ValidateID(ref, "ref", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.workspaces.Release(ref)
	c.JSON(http.StatusOK, gin.H{"released": ref})
}

// bind resolves the workspace ref from the URL, validating it first
func (h *Handlers) bind(c *gin.Context) (*workspace.Workspace, bool) {
	ref := c.Param("ref")
	if err := utils.ValidateID(ref, "ref", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return h.workspaces.Bind(ref), true
}

func parseEditor(s string) types.EditorFamily {
	if s == string(types.EditorSQL) {
		return types.EditorSQL
	}
	return types.EditorTable
}
