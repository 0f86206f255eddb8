package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"rust-tracker/internal/catalog"
	"rust-tracker/internal/export"
	"rust-tracker/internal/models"
	"rust-tracker/internal/valuation"

	"github.com/gin-gonic/gin"
)

// SnapshotService is the valuation surface the handlers talk to.
type SnapshotService interface {
	GetCached(itemID string) (valuation.Snapshot, bool)
	GetOrCompute(ctx context.Context, item catalog.Item) (valuation.Snapshot, error)
}

// UserStore is the account registry: append-only registration plus lookup.
type UserStore interface {
	TrackedUser(ctx context.Context, steamID string) (models.TrackedUser, bool, error)
	InsertTrackedUser(ctx context.Context, user models.TrackedUser) error
}

// SteamResolver turns registration input into a Steam ID and display name.
type SteamResolver interface {
	ResolveVanityURL(ctx context.Context, vanity string) (string, error)
	GetPersonaName(ctx context.Context, steamID string) (string, error)
}

// SnapshotStreamer accepts websocket subscribers for published snapshots.
type SnapshotStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

type APIHandler struct {
	catalog   *catalog.Catalog
	snapshots SnapshotService
	users     UserStore
	steam     SteamResolver
	hub       SnapshotStreamer
}

func SetupRoutes(r *gin.Engine, cat *catalog.Catalog, snapshots SnapshotService, users UserStore, steam SteamResolver, hub SnapshotStreamer) *APIHandler {
	handler := &APIHandler{
		catalog:   cat,
		snapshots: snapshots,
		users:     users,
		steam:     steam,
		hub:       hub,
	}

	r.GET("/", handler.Index)
	r.GET("/inventories", handler.InventoriesPage)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/inventory", handler.GetInventory)
		apiGroup.GET("/inventory/export", handler.ExportInventory)
		apiGroup.POST("/add/steamId", handler.AddSteamID)
	}

	r.GET("/ws", handler.ServeWS)

	return handler
}

// GetInventory serves the item snapshot. With prefetch set it answers
// instantly from the last published snapshot; otherwise it recomputes,
// publishes and returns the fresh result.
func (h *APIHandler) GetInventory(c *gin.Context) {
	item := h.catalog.Resolve(c.Query("item"))

	if c.Query("prefetch") != "" {
		if snap, ok := h.snapshots.GetCached(item.ID); ok {
			c.JSON(http.StatusOK, snap)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	snap, err := h.snapshots.GetOrCompute(c.Request.Context(), item)
	if err != nil {
		log.Printf("snapshot computation failed for item %s: %v", item.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching inventories"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ExportInventory streams the last published snapshot as an xlsx report.
func (h *APIHandler) ExportInventory(c *gin.Context) {
	item := h.catalog.Resolve(c.Query("item"))

	snap, ok := h.snapshots.GetCached(item.ID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for item"})
		return
	}

	f, err := export.SnapshotWorkbook(item, snap)
	if err != nil {
		log.Printf("export failed for item %s: %v", item.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error exporting inventory"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.Name+".xlsx"))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("export write failed for item %s: %v", item.ID, err)
	}
}

// AddSteamID registers an account for tracking, resolving a vanity URL to
// a Steam ID when no ID is given. Registration is append-only: an already
// known account is reported, not updated.
func (h *APIHandler) AddSteamID(c *gin.Context) {
	steamID := c.PostForm("steamId")
	vanity := c.PostForm("steamVU")
	ctx := c.Request.Context()

	if steamID == "" && vanity != "" {
		resolved, err := h.steam.ResolveVanityURL(ctx, vanity)
		if err != nil {
			log.Printf("vanity url resolution failed for %q: %v", vanity, err)
			h.page(c, "Error resolving Steam Vanity URL")
			return
		}
		steamID = resolved
	}

	if steamID == "" {
		h.page(c, "Steam ID or Vanity URL is required")
		return
	}

	name, err := h.steam.GetPersonaName(ctx, steamID)
	if err != nil {
		log.Printf("player summary failed for %s: %v", steamID, err)
		h.page(c, "Error adding Steam ID")
		return
	}

	if _, exists, err := h.users.TrackedUser(ctx, steamID); err != nil {
		log.Printf("tracked user lookup failed for %s: %v", steamID, err)
		h.page(c, "Error adding Steam ID")
		return
	} else if exists {
		h.page(c, "Steam ID already exists")
		return
	}

	if err := h.users.InsertTrackedUser(ctx, models.TrackedUser{SteamID: steamID, SteamName: name}); err != nil {
		log.Printf("tracked user insert failed for %s: %v", steamID, err)
		h.page(c, "Error adding Steam ID")
		return
	}

	h.page(c, "Steam ID added successfully")
}

// ServeWS upgrades the connection and subscribes it to snapshot pushes.
func (h *APIHandler) ServeWS(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request); err != nil {
		log.Printf("ws upgrade failed: %v", err)
	}
}
