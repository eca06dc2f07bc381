package tags

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/tags", h.list)
	protected.POST("/tags", h.create)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createReq struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be 1-50 chars"})
		return
	}

	tag, err := h.Repo.Create(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "tag already exists"})
		return
	}
	c.JSON(http.StatusCreated, tag)
}
