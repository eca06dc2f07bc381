package query

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home feed bounds, same shape the original feed uses.
const (
	topNovelCount      = 5
	latestChapterCount = 12
	randomNovelCount   = 15
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/home", h.home)
	rg.GET("/novels/:novel_id", h.novelDetail)
}

func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()

	top, err := h.Repo.TopNovels(ctx, topNovelCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "home feed failed"})
		return
	}
	latest, err := h.Repo.LatestChapters(ctx, latestChapterCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "home feed failed"})
		return
	}
	random, err := h.Repo.RandomNovels(ctx, randomNovelCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "home feed failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top_novels":      top,
		"latest_chapters": latest,
		"random_novels":   random,
	})
}

func (h *Handler) novelDetail(c *gin.Context) {
	detail, err := h.Repo.NovelDetail(c.Request.Context(), c.Param("novel_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detail failed"})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "novel not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
