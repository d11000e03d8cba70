package handlers

import (
	"net/http"

	"clinicbook/middleware"
	"clinicbook/models"
	"clinicbook/services/catalog"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Service catalog.CatalogService
}

func NewCatalogHandler(svc catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: svc}
}

func (h *CatalogHandler) ListTreatments(c *gin.Context) {
	list, err := h.Service.ListTreatments(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Treatment{}
	}
	c.JSON(http.StatusOK, gin.H{"treatments": list, "count": len(list)})
}

func (h *CatalogHandler) CreateTreatment(c *gin.Context) {
	var input models.Treatment
	if !bindJSON(c, &input) {
		return
	}
	t, err := h.Service.CreateTreatment(c.Request.Context(), middleware.GetSession(c), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// ListProfessionals handles GET /professionals?site_id=.
func (h *CatalogHandler) ListProfessionals(c *gin.Context) {
	list, err := h.Service.ListProfessionals(c.Request.Context(), middleware.GetSession(c), c.Query("site_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Professional{}
	}
	c.JSON(http.StatusOK, gin.H{"professionals": list, "count": len(list)})
}

func (h *CatalogHandler) CreateProfessional(c *gin.Context) {
	var input models.Professional
	if !bindJSON(c, &input) {
		return
	}
	p, err := h.Service.CreateProfessional(c.Request.Context(), middleware.GetSession(c), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) ListSites(c *gin.Context) {
	list, err := h.Service.ListSites(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if list == nil {
		list = []models.Site{}
	}
	c.JSON(http.StatusOK, gin.H{"sites": list, "count": len(list)})
}

func (h *CatalogHandler) CreateSite(c *gin.Context) {
	var input models.Site
	if !bindJSON(c, &input) {
		return
	}
	s, err := h.Service.CreateSite(c.Request.Context(), middleware.GetSession(c), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *CatalogHandler) GetTenant(c *gin.Context) {
	t, err := h.Service.GetTenant(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *CatalogHandler) UpsertTenant(c *gin.Context) {
	var input models.Tenant
	if !bindJSON(c, &input) {
		return
	}
	t, err := h.Service.UpsertTenant(c.Request.Context(), middleware.GetSession(c), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
