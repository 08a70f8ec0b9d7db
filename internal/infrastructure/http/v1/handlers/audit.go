package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/domain/audit"
)

// AuditHandler serves entity change history.
type AuditHandler struct {
	*BaseHandler
	service *audit.Service
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(base *BaseHandler, service *audit.Service) *AuditHandler {
	return &AuditHandler{BaseHandler: base, service: service}
}

// History handles GET /audit/:entity/:id?limit=N.
func (h *AuditHandler) History(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	records, err := h.service.History(c.Request.Context(), c.Param("entity"), entityID, h.ParseIntQuery(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	if records == nil {
		records = []audit.Record{}
	}
	h.OK(c, gin.H{"items": records})
}
