package handler

import (
	"errors"
	"net/http"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/service"
	"phonics-coach/pkg/logger"
	"phonics-coach/pkg/response"

	"github.com/gin-gonic/gin"
)

// WordHandler serves the word bank, the courses and reference pronunciations.
type WordHandler struct {
	service service.WordServicer
}

// NewWordHandler creates a new WordHandler.
func NewWordHandler(service service.WordServicer) *WordHandler {
	return &WordHandler{service: service}
}

// ListWords godoc
// @Summary      List words
// @Description  The practice letters in cycle order with their reference words
// @Tags         words
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.WordEntry}
// @Router       /words [get]
func (h *WordHandler) ListWords(c *gin.Context) {
	response.Success(c, h.service.ListWords())
}

// GetWord godoc
// @Summary      Get word for a letter
// @Tags         words
// @Produce      json
// @Param        letter  path      string  true  "Letter"  example(B)
// @Success      200     {object}  response.Response{data=models.WordEntry}
// @Failure      404     {object}  response.Response
// @Router       /words/{letter} [get]
func (h *WordHandler) GetWord(c *gin.Context) {
	entry, err := h.service.GetWord(c.Param("letter"))
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownLetter) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.Success(c, entry)
}

// GetPronunciation godoc
// @Summary      Reference pronunciation
// @Description  Slow, clear speech of the letter's word as WAV audio
// @Tags         words
// @Produce      audio/wav
// @Param        letter  path      string  true  "Letter"  example(V)
// @Success      200     {file}    binary
// @Failure      404     {object}  response.Response
// @Failure      503     {object}  response.Response
// @Router       /words/{letter}/pronunciation [get]
func (h *WordHandler) GetPronunciation(c *gin.Context) {
	letter := c.Param("letter")

	data, err := h.service.Pronunciation(c.Request.Context(), letter)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownLetter):
			response.NotFound(c, err.Error())
		case errors.Is(err, apperrors.ErrPronunciationFailed):
			logger.L().Warn("pronunciation_unavailable", "letter", letter, "error", err)
			response.ServiceUnavailable(c, apperrors.ErrPronunciationFailed.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "audio/wav", data)
}

// ListCourses godoc
// @Summary      List courses
// @Description  Phoneme-pair drills such as V vs B
// @Tags         words
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.Course}
// @Router       /courses [get]
func (h *WordHandler) ListCourses(c *gin.Context) {
	response.Success(c, h.service.ListCourses())
}
