package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"phonics-coach/internal/analysis"
	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/metrics"
	"phonics-coach/internal/models"
	"phonics-coach/internal/queue"
	"phonics-coach/internal/repository"
	"phonics-coach/internal/session"
	"phonics-coach/internal/storage"
	"phonics-coach/internal/transcription"
	"phonics-coach/internal/words"
	"phonics-coach/pkg/auth"
	"phonics-coach/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// DefaultMaxUploadBytes bounds one uploaded recording.
	DefaultMaxUploadBytes = 5 << 20
	// audioURLExpiry is how long a presigned history audio link stays valid.
	audioURLExpiry = 15 * time.Minute

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// ConsentChecker reports whether a parent allowed recordings.
type ConsentChecker interface {
	RecordingAllowed(ctx context.Context, userID primitive.ObjectID) bool
}

// PracticeServiceConfig holds the dependencies of PracticeService.
// Storage and Queue may be nil, which disables presigned audio links and
// archiving respectively.
type PracticeServiceConfig struct {
	Sessions       session.Store
	Attempts       repository.AttemptRepository
	Consent        ConsentChecker
	Storage        storage.Storage
	Queue          queue.Queue
	Orchestrator   *analysis.Orchestrator
	Transcriber    transcription.Service
	MinAudioBytes  int
	MaxUploadBytes int64
	SessionTTL     time.Duration
}

// practiceLine is the server-side recording line of one session: its
// gateway plus a lock that serialises folding attempts into the session.
type practiceLine struct {
	gateway  *transcription.Gateway
	fold     sync.Mutex
	lastUsed time.Time
}

// PracticeService runs practice sessions: it records and scores attempts,
// folds them into the session, and hands them to the archive queue.
type PracticeService struct {
	sessions       session.Store
	attempts       repository.AttemptRepository
	consent        ConsentChecker
	storage        storage.Storage
	queue          queue.Queue
	orchestrator   *analysis.Orchestrator
	transcriber    transcription.Service
	minAudioBytes  int
	maxUploadBytes int64
	idleAfter      time.Duration

	mu    sync.Mutex
	lines map[string]*practiceLine
	now   func() time.Time
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(cfg PracticeServiceConfig) *PracticeService {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	return &PracticeService{
		sessions:       cfg.Sessions,
		attempts:       cfg.Attempts,
		consent:        cfg.Consent,
		storage:        cfg.Storage,
		queue:          cfg.Queue,
		orchestrator:   cfg.Orchestrator,
		transcriber:    cfg.Transcriber,
		minAudioBytes:  cfg.MinAudioBytes,
		maxUploadBytes: cfg.MaxUploadBytes,
		idleAfter:      cfg.SessionTTL,
		lines:          make(map[string]*practiceLine),
		now:            time.Now,
	}
}

// CreateSession starts an empty session for a letter or course.
func (s *PracticeService) CreateSession(ctx context.Context, userID primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error) {
	target, ok := words.Resolve(req.Target)
	if !ok {
		return nil, apperrors.ErrInvalidTarget
	}

	sess := session.New(uuid.NewString(), userID.Hex(), target.ID, s.now().UTC())
	if err := s.sessions.Save(ctx, &sess); err != nil {
		return nil, err
	}
	attrs := []any{"session_id", sess.ID, "user_id", sess.UserID, "target", sess.Target}
	if p, ok := auth.PrincipalFrom(ctx); ok && p.ChildAge > 0 {
		attrs = append(attrs, "child_age", p.ChildAge)
	}
	logger.L().Info("session_created", attrs...)
	return &sess, nil
}

// GetSession returns a session owned by userID.
func (s *PracticeService) GetSession(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.Session, error) {
	return s.owned(ctx, userID, sessionID)
}

// ChangeTarget switches the session to another target and clears its
// attempts. A recording in flight is cancelled first.
func (s *PracticeService) ChangeTarget(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.ChangeTargetRequest) (*models.Session, error) {
	target, ok := words.Resolve(req.Target)
	if !ok {
		return nil, apperrors.ErrInvalidTarget
	}

	if _, err := s.owned(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	line := s.line(userID, sessionID)
	_ = line.gateway.Cancel()

	line.fold.Lock()
	defer line.fold.Unlock()

	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	reset := session.Reset(*sess, target.ID, s.now().UTC())
	if err := s.sessions.Save(ctx, &reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

// DeleteSession ends a session and cancels its recording, if any.
func (s *PracticeService) DeleteSession(ctx context.Context, userID primitive.ObjectID, sessionID string) error {
	if _, err := s.owned(ctx, userID, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	line, ok := s.lines[sessionID]
	delete(s.lines, sessionID)
	s.mu.Unlock()
	if ok {
		_ = line.gateway.Cancel()
	}

	return s.sessions.Delete(ctx, sessionID)
}

// SubmitRecording records an uploaded utterance for the session's next
// word, scores it and folds it into the session. A failed transcription
// still yields a (degraded) attempt.
func (s *PracticeService) SubmitRecording(ctx context.Context, userID primitive.ObjectID, sessionID string, audio io.Reader) (*models.AttemptResponse, error) {
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	target, word, err := s.nextWord(sess)
	if err != nil {
		return nil, err
	}

	line := s.line(userID, sessionID)
	capture := transcription.NewUploadCapture(audio, s.maxUploadBytes)

	attempt, err := s.orchestrator.WithRecorder(line.gateway).AnalyzeAttempt(ctx, capture, word.Word, target.Phonemes)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, line, userID, sess, attempt)
}

// SubmitTranscription scores text transcribed on the client.
func (s *PracticeService) SubmitTranscription(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.TranscriptionAttemptRequest) (*models.AttemptResponse, error) {
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	target, word, err := s.nextWord(sess)
	if err != nil {
		return nil, err
	}

	attempt := s.orchestrator.AnalyzeTranscription(ctx, req.Transcription, word.Word, target.Phonemes)
	return s.record(ctx, s.line(userID, sessionID), userID, sess, attempt)
}

// CancelRecording drops the session's in-flight recording.
func (s *PracticeService) CancelRecording(ctx context.Context, userID primitive.ObjectID, sessionID string) error {
	if _, err := s.owned(ctx, userID, sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	line, ok := s.lines[sessionID]
	s.mu.Unlock()
	if !ok {
		return apperrors.ErrNoActiveRecording
	}
	if err := line.gateway.Cancel(); err != nil {
		return err
	}
	logger.L().Info("recording_cancelled", "session_id", sessionID)
	return nil
}

// Remedy returns practice tips for the session's target.
func (s *PracticeService) Remedy(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.RemedyResponse, error) {
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	target, ok := words.Resolve(sess.Target)
	if !ok {
		return nil, apperrors.ErrInvalidTarget
	}

	average := session.Average(*sess)
	text, source := s.orchestrator.Remedy(ctx, target.Phonemes, average, session.Accuracies(*sess))
	return &models.RemedyResponse{
		Target:          sess.Target,
		AverageAccuracy: average,
		Remedy:          text,
		Source:          source,
	}, nil
}

// History lists archived attempts newest first with short-lived audio links.
func (s *PracticeService) History(ctx context.Context, userID primitive.ObjectID, page, limit int) (*models.AttemptListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, total, err := s.attempts.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		for i := range records {
			if records[i].AudioKey == "" {
				continue
			}
			url, err := s.storage.GetPresignedURL(ctx, records[i].AudioKey, audioURLExpiry)
			if err != nil {
				logger.L().Warn("presign_failed", "key", records[i].AudioKey, "error", err)
				continue
			}
			records[i].AudioURL = url
		}
	}

	return &models.AttemptListResponse{
		Attempts: records,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

// Stats summarises archived attempts per target.
func (s *PracticeService) Stats(ctx context.Context, userID primitive.ObjectID) ([]models.TargetStats, error) {
	stats, err := s.attempts.StatsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.TargetStats{}
	}
	return stats, nil
}

func (s *PracticeService) owned(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID.Hex() {
		return nil, apperrors.ErrSessionForbidden
	}
	return sess, nil
}

func (s *PracticeService) nextWord(sess *models.Session) (words.Target, models.WordEntry, error) {
	target, ok := words.Resolve(sess.Target)
	if !ok {
		return words.Target{}, models.WordEntry{}, apperrors.ErrInvalidTarget
	}
	return target, target.WordFor(len(sess.Attempts)), nil
}

// line returns the session's recording line, creating it on first use.
// Lines idle for longer than a session lives are dropped on the way.
func (s *PracticeService) line(userID primitive.ObjectID, sessionID string) *practiceLine {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.lines {
		if id != sessionID && now.Sub(l.lastUsed) > s.idleAfter && l.gateway.State() == transcription.StateIdle {
			delete(s.lines, id)
		}
	}

	if l, ok := s.lines[sessionID]; ok {
		l.lastUsed = now
		return l
	}

	l := &practiceLine{
		gateway: transcription.NewGateway(s.transcriber, transcription.GatewayConfig{
			MinAudioBytes: s.minAudioBytes,
			Permission: func(ctx context.Context) bool {
				return s.consent != nil && s.consent.RecordingAllowed(ctx, userID)
			},
		}),
		lastUsed: now,
	}
	s.lines[sessionID] = l
	return l
}

// record folds attempt into the latest stored session and queues it for
// archiving. started is the session as it was when the attempt began; if the
// target changed since, the attempt belongs to the old target and is dropped.
func (s *PracticeService) record(ctx context.Context, line *practiceLine, userID primitive.ObjectID, started *models.Session, attempt *models.Attempt) (*models.AttemptResponse, error) {
	sessionID := started.ID

	line.fold.Lock()
	sess, err := s.owned(ctx, userID, sessionID)
	if err != nil {
		line.fold.Unlock()
		return nil, err
	}
	if sess.Generation != started.Generation {
		line.fold.Unlock()
		logger.L().Info("attempt_discarded",
			"session_id", sessionID,
			"expected", attempt.ExpectedWord,
			"reason", "target_changed",
		)
		return nil, apperrors.ErrRecordingCancelled
	}
	updated := session.RecordAttempt(*sess, *attempt)
	err = s.sessions.Save(ctx, &updated)
	line.fold.Unlock()
	if err != nil {
		return nil, err
	}

	s.archive(userID, updated, attempt)

	stored := *attempt
	stored.Audio = nil
	logger.L().Info("attempt_recorded",
		"session_id", sessionID,
		"expected", attempt.ExpectedWord,
		"accuracy", attempt.Accuracy,
		"degraded", attempt.Degraded,
		"average", updated.AverageAccuracy,
	)
	return &models.AttemptResponse{Attempt: stored, Session: updated}, nil
}

func (s *PracticeService) archive(userID primitive.ObjectID, sess models.Session, attempt *models.Attempt) {
	if s.queue == nil {
		return
	}

	job := queue.ArchiveJob{
		Record: models.AttemptRecord{
			AttemptID:      attempt.ID,
			UserID:         userID,
			SessionID:      sess.ID,
			Target:         sess.Target,
			Transcription:  attempt.Transcription,
			ExpectedWord:   attempt.ExpectedWord,
			TargetPhonemes: attempt.TargetPhonemes,
			Accuracy:       attempt.Accuracy,
			Feedback:       attempt.Feedback,
			Degraded:       attempt.Degraded,
			CreatedAt:      attempt.Timestamp,
		},
		Audio: attempt.Audio,
	}

	if err := s.queue.Enqueue(job); err != nil {
		status := "dropped"
		if !errors.Is(err, queue.ErrQueueFull) {
			status = "rejected"
		}
		metrics.RecordArchiveJob(status)
		logger.L().Warn("archive_enqueue_failed", "attempt_id", attempt.ID, "error", err)
		return
	}
	metrics.RecordArchiveJob("queued")
}
