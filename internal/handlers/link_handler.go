package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moneta/internal/middleware"
	"moneta/internal/services"
)

// LinkHandler serves institution link management and sync triggers.
type LinkHandler struct {
	links services.LinkServicer
	sync  services.SyncServicer
	audit services.AuditServicer
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(links services.LinkServicer, sync services.SyncServicer, audit services.AuditServicer) *LinkHandler {
	return &LinkHandler{links: links, sync: sync, audit: audit}
}

type createLinkRequest struct {
	ExternalItemID  string `json:"external_item_id" binding:"required"`
	AccessToken     string `json:"access_token" binding:"required"`
	InstitutionID   string `json:"institution_id"`
	InstitutionName string `json:"institution_name" binding:"required"`
}

// Create registers a new institution connection and runs an initial sync.
func (h *LinkHandler) Create(c *gin.Context) {
	var req createLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := middleware.UserID(c)

	link, err := h.links.CreateLink(userID, req.ExternalItemID, req.AccessToken, req.InstitutionID, req.InstitutionName)
	if err != nil {
		renderError(c, err)
		return
	}
	h.audit.Log(userID, "link.create", "institution_link", link.ID, c.ClientIP(), map[string]interface{}{
		"institution": req.InstitutionName,
	})

	report, err := h.sync.Sync(c.Request.Context(), link.ID)
	if err != nil {
		// The link exists; surface it with the sync failure attached.
		c.JSON(http.StatusCreated, gin.H{"link": link, "sync_error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"link": link, "sync_report": report})
}

// List returns the user's links.
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.links.GetUserLinks(middleware.UserID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// Get returns one link.
func (h *LinkHandler) Get(c *gin.Context) {
	link, err := h.links.GetLink(middleware.UserID(c), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Delete unlinks an institution and removes its data.
func (h *LinkHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	linkID := c.Param("id")

	if err := h.links.DeleteLink(c.Request.Context(), userID, linkID); err != nil {
		renderError(c, err)
		return
	}
	h.audit.Log(userID, "link.delete", "institution_link", linkID, c.ClientIP(), nil)
	c.Status(http.StatusNoContent)
}

// Sync reconciles one link on demand.
func (h *LinkHandler) Sync(c *gin.Context) {
	userID := middleware.UserID(c)

	// Ownership check before handing the id to the pipeline.
	link, err := h.links.GetLink(userID, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	report, err := h.sync.Sync(c.Request.Context(), link.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	h.audit.Log(userID, "link.sync", "institution_link", link.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, report)
}

// SyncAll reconciles every link the user has.
func (h *LinkHandler) SyncAll(c *gin.Context) {
	userID := middleware.UserID(c)

	report, err := h.links.SyncAll(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	h.audit.Log(userID, "link.sync_all", "institution_link", "", c.ClientIP(), nil)
	c.JSON(http.StatusOK, report)
}

// Webhook receives aggregator notifications. No auth: the aggregator is not
// a user. The receipt is always 200 so the upstream never retry-storms.
func (h *LinkHandler) Webhook(c *gin.Context) {
	var event services.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusOK, services.WebhookReceipt{Received: true, Error: "malformed payload"})
		return
	}
	receipt := h.links.HandleWebhook(c.Request.Context(), event)
	c.JSON(http.StatusOK, receipt)
}
