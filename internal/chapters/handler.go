package chapters

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub/internal/apperr"
	"novelhub/internal/auth"
	"novelhub/internal/realtime"
)

type Handler struct {
	Service *Service
	Hub     *realtime.Hub
}

func NewHandler(service *Service, hub *realtime.Hub) *Handler {
	return &Handler{Service: service, Hub: hub}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/novels/:novel_id/chapters/:chapter_id", h.get)
	protected.GET("/novels/:novel_id/chapters/next-number", h.nextNumber)
	protected.POST("/novels/:novel_id/chapters", h.create)
	protected.PUT("/novels/:novel_id/chapters/:chapter_id", h.update)
}

type createReq struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	ChapterNumber int    `json:"chapter_number"`
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ch, err := h.Service.Create(c.Request.Context(), c.Param("novel_id"), claims.UserID, CreateInput{
		Title:   req.Title,
		Content: req.Content,
		Number:  req.ChapterNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if h.Hub != nil {
		ev := realtime.ChapterEvent{
			Type:          "chapter.created",
			NovelID:       ch.NovelID,
			ChapterID:     ch.ID,
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
			At:            time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusCreated, ch)
}

type updateReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	ch, err := h.Service.Update(
		c.Request.Context(),
		c.Param("novel_id"), c.Param("chapter_id"), claims.UserID,
		req.Title, req.Content,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) get(c *gin.Context) {
	view, err := h.Service.Get(c.Request.Context(), c.Param("novel_id"), c.Param("chapter_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) nextNumber(c *gin.Context) {
	next, err := h.Service.NextNumber(c.Request.Context(), c.Param("novel_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chapter_number": next})
}

func respondError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this chapter"})
	case errors.Is(err, apperr.ErrNovelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "novel not found"})
	case errors.Is(err, apperr.ErrChapterNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
	case errors.Is(err, apperr.ErrDuplicateChapterNumber):
		c.JSON(http.StatusConflict, gin.H{"error": "chapter number already exists for this novel", "field": "chapter_number"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
