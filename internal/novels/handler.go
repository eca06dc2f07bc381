package novels

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"novelhub/internal/apperr"
	"novelhub/internal/auth"
)

// 5 MB, same ceiling the cover upload form enforces.
const maxImageBytes = 5 << 20

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/novels", h.create)
	rg.PUT("/novels/:novel_id", h.update)
	rg.DELETE("/novels/:novel_id", h.remove)
}

func (h *Handler) create(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tagIDs, ok := parseTagIDs(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag ids"})
		return
	}

	image, err := readImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	novel, err := h.Service.Create(c.Request.Context(), claims.UserID, CreateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		TagIDs:      tagIDs,
		Image:       image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, novel)
}

func (h *Handler) update(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tagIDs, ok := parseTagIDs(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag ids"})
		return
	}

	// Image is optional on update; nil keeps the current one.
	var image []byte
	if _, err := c.FormFile("image"); err == nil {
		image, err = readImage(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	novel, err := h.Service.Update(c.Request.Context(), c.Param("novel_id"), claims.UserID, UpdateInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Status:      c.PostForm("status"),
		TagIDs:      tagIDs,
		Image:       image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, novel)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), c.Param("novel_id"), claims.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// tags=1,2,3 or tags=1&tags=2
func parseTagIDs(c *gin.Context) ([]int64, bool) {
	raw := c.PostFormArray("tags")
	if len(raw) == 1 && strings.Contains(raw[0], ",") {
		raw = strings.Split(raw[0], ",")
	}

	out := make([]int64, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func readImage(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, errors.New("image file required")
	}
	if fh.Size > maxImageBytes {
		return nil, errors.New("image must not exceed 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("image unreadable")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil || len(data) > maxImageBytes {
		return nil, errors.New("image unreadable")
	}
	return data, nil
}

func respondError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this novel"})
	case errors.Is(err, apperr.ErrNovelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "novel not found"})
	case errors.Is(err, apperr.ErrAssetUpload):
		c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
