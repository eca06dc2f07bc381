package follows

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novelhub/internal/auth"
	"novelhub/internal/novels"
)

type Handler struct {
	Repo   *Repo
	Novels *novels.Repo
}

func NewHandler(repo *Repo, novelRepo *novels.Repo) *Handler {
	return &Handler{Repo: repo, Novels: novelRepo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/novels/:novel_id/follow", h.follow)
	rg.DELETE("/novels/:novel_id/follow", h.unfollow)
	rg.GET("/novels/:novel_id/follow", h.status)
}

func (h *Handler) follow(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	novelID := c.Param("novel_id")

	novel, err := h.Novels.GetByID(c.Request.Context(), novelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follow failed"})
		return
	}
	if novel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "novel not found"})
		return
	}

	added, err := h.Repo.Follow(c.Request.Context(), claims.UserID, novelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "follow failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true, "changed": added})
}

func (h *Handler) unfollow(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	removed, err := h.Repo.Unfollow(c.Request.Context(), claims.UserID, c.Param("novel_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unfollow failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": false, "changed": removed})
}

func (h *Handler) status(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	following, err := h.Repo.IsFollowing(c.Request.Context(), claims.UserID, c.Param("novel_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}
