package handler

import (
	"errors"
	"strconv"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
	"phonics-coach/internal/service"
	"phonics-coach/pkg/logger"
	"phonics-coach/pkg/response"

	"github.com/gin-gonic/gin"
)

// PracticeHandler handles practice sessions and attempt submission.
type PracticeHandler struct {
	service service.PracticeServicer
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(service service.PracticeServicer) *PracticeHandler {
	return &PracticeHandler{service: service}
}

// practiceError writes the response for a practice or pipeline error.
func practiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidTarget):
		response.BadRequest(c, err.Error())
	case errors.Is(err, apperrors.ErrSessionNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, apperrors.ErrSessionForbidden),
		errors.Is(err, apperrors.ErrPermissionDenied):
		response.Forbidden(c, err.Error())
	case errors.Is(err, apperrors.ErrAlreadyRecording),
		errors.Is(err, apperrors.ErrNoActiveRecording),
		errors.Is(err, apperrors.ErrRecordingCancelled):
		response.Conflict(c, err.Error())
	case errors.Is(err, apperrors.ErrEmptyRecording):
		response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, apperrors.ErrRecordingTooLarge):
		response.PayloadTooLarge(c, err.Error())
	default:
		logger.L().Error("practice_request_failed", "path", c.FullPath(), "error", err)
		response.InternalError(c)
	}
}

// CreateSession godoc
// @Summary      Start a practice session
// @Description  Start practising a single letter (e.g. "B") or a phoneme-pair course (e.g. "v-b")
// @Tags         practice
// @Accept       json
// @Produce      json
// @Param        request  body      models.CreateSessionRequest  true  "Practice target"
// @Success      201      {object}  response.Response{data=models.Session}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions [post]
func (h *PracticeHandler) CreateSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess, err := h.service.CreateSession(c.Request.Context(), userID, &req)
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Created(c, sess)
}

// GetSession godoc
// @Summary      Get a practice session
// @Tags         practice
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=models.Session}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id} [get]
func (h *PracticeHandler) GetSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sess, err := h.service.GetSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Success(c, sess)
}

// ChangeTarget godoc
// @Summary      Change the practice target
// @Description  Switch the session to another letter or course. Attempts are cleared and any recording is cancelled.
// @Tags         practice
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Session ID"
// @Param        request  body      models.ChangeTargetRequest  true  "New target"
// @Success      200      {object}  response.Response{data=models.Session}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id}/target [put]
func (h *PracticeHandler) ChangeTarget(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.ChangeTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sess, err := h.service.ChangeTarget(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Success(c, sess)
}

// DeleteSession godoc
// @Summary      End a practice session
// @Tags         practice
// @Param        id   path  string  true  "Session ID"
// @Success      204  "No Content"
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id} [delete]
func (h *PracticeHandler) DeleteSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSession(c.Request.Context(), userID, c.Param("id")); err != nil {
		practiceError(c, err)
		return
	}

	response.NoContent(c)
}

// SubmitAttempt godoc
// @Summary      Submit a recorded attempt
// @Description  Upload a WAV recording of the session's current word. It is transcribed, scored and answered with feedback.
// @Description  A failed transcription still returns an attempt, marked degraded.
// @Tags         practice
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Session ID"
// @Param        audio  formData  file    true  "WAV recording"
// @Success      201    {object}  response.Response{data=models.AttemptResponse}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Failure      413    {object}  response.Response
// @Failure      422    {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id}/attempts [post]
func (h *PracticeHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		response.BadRequest(c, "audio file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "audio file could not be read")
		return
	}
	defer f.Close()

	result, err := h.service.SubmitRecording(c.Request.Context(), userID, c.Param("id"), f)
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Created(c, result)
}

// SubmitTranscription godoc
// @Summary      Submit a transcribed attempt
// @Description  Score text transcribed on the device against the session's current word
// @Tags         practice
// @Accept       json
// @Produce      json
// @Param        id       path      string                              true  "Session ID"
// @Param        request  body      models.TranscriptionAttemptRequest  true  "Transcription"
// @Success      201      {object}  response.Response{data=models.AttemptResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id}/transcriptions [post]
func (h *PracticeHandler) SubmitTranscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.TranscriptionAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitTranscription(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Created(c, result)
}

// CancelRecording godoc
// @Summary      Cancel the in-flight recording
// @Tags         practice
// @Param        id   path  string  true  "Session ID"
// @Success      204  "No Content"
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id}/recording [delete]
func (h *PracticeHandler) CancelRecording(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.CancelRecording(c.Request.Context(), userID, c.Param("id")); err != nil {
		practiceError(c, err)
		return
	}

	response.NoContent(c)
}

// GetRemedy godoc
// @Summary      Practice tips
// @Description  Three short tips for the session's sounds, tuned to its average accuracy
// @Tags         practice
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=models.RemedyResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/sessions/{id}/remedy [get]
func (h *PracticeHandler) GetRemedy(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.Remedy(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Success(c, result)
}

// ListHistory godoc
// @Summary      Attempt history
// @Description  Archived attempts, newest first, with short-lived links to their audio
// @Tags         practice
// @Produce      json
// @Param        page   query     int  false  "Page number (default: 1)"
// @Param        limit  query     int  false  "Items per page (default: 20, max: 100)"
// @Success      200    {object}  response.Response{data=models.AttemptListResponse}
// @Failure      401    {object}  response.Response
// @Failure      500    {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/history [get]
func (h *PracticeHandler) ListHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.History(c.Request.Context(), userID, page, limit)
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Success(c, result)
}

// GetStats godoc
// @Summary      Progress per target
// @Description  Attempt counts and accuracy per letter or course. Degraded attempts are excluded from accuracy.
// @Tags         practice
// @Produce      json
// @Success      200  {object}  response.Response{data=[]models.TargetStats}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Security     BearerAuth
// @Router       /practice/stats [get]
func (h *PracticeHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		practiceError(c, err)
		return
	}

	response.Success(c, result)
}
