package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/repository"
)

// CatalogHandler lists preset server templates
type CatalogHandler struct {
	catalog repository.CatalogRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles listing catalog templates, optionally filtered by type
func (h *CatalogHandler) List(c *gin.Context) {
	templates, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	serverType := models.ServerType(c.Query("type"))

	servers := make([]models.CreateServerRequest, 0, len(templates))
	for _, tmpl := range templates {
		if serverType != "" && tmpl.Type != serverType {
			continue
		}
		servers = append(servers, tmpl)
	}

	c.JSON(http.StatusOK, models.CatalogResponse{
		Servers: servers,
		Total:   len(servers),
	})
}
