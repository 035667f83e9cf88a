package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"plagiarism-check-platform/internal/analysis"
	"plagiarism-check-platform/internal/logger"
	"plagiarism-check-platform/internal/store"
	"plagiarism-check-platform/models"
	"plagiarism-check-platform/utils"
)

// Clock abstracts "now" so quota day-rollover logic is testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewRealClock() Clock { return realClock{} }

// DocumentReader is the read-only boundary to document management.
type DocumentReader interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListEligibleCorpus(ctx context.Context, excludeID string) ([]models.Document, error)
}

// UserQuotaStore is the boundary to user records and their daily
// check counters.
type UserQuotaStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ResetQuotaIfStale(ctx context.Context, userID string, today time.Time) error
	ConsumeCheck(ctx context.Context, userID string, limit int) (int, error)
}

// CheckRepository persists checks and their match rows.
type CheckRepository interface {
	CreateCheck(ctx context.Context, check *models.Check) error
	GetCheck(ctx context.Context, id string) (*models.Check, error)
	CompleteCheck(ctx context.Context, id string, res store.CheckResult, now time.Time) error
	FailCheck(ctx context.Context, id, notes string, now time.Time) error
	ReplaceMatches(ctx context.Context, checkID string, matches []models.Match) error
	DeleteCheck(ctx context.Context, id string) error
}

// Enqueuer hands a check id to the durable job queue. The queue owns
// delivery: at-least-once, to at most one live worker per check id.
type Enqueuer interface {
	EnqueueCheck(checkID string) error
}

// CheckService owns the check state machine. RequestCheck runs on the
// request path and must return quickly; ProcessCheck runs on the
// worker and does the scoring.
type CheckService struct {
	docs     DocumentReader
	users    UserQuotaStore
	checks   CheckRepository
	queue    Enqueuer
	detector *analysis.AiDetector
	clock    Clock

	dailyLimit int
}

func NewCheckService(
	docs DocumentReader,
	users UserQuotaStore,
	checks CheckRepository,
	queue Enqueuer,
	detector *analysis.AiDetector,
	clock Clock,
	dailyLimit int,
) *CheckService {
	return &CheckService{
		docs:       docs,
		users:      users,
		checks:     checks,
		queue:      queue,
		detector:   detector,
		clock:      clock,
		dailyLimit: dailyLimit,
	}
}

// RequestCheckResult is what the request path returns to the handler.
type RequestCheckResult struct {
	Check           *models.Check
	RemainingToday  int
	DailyCheckLimit int
}

// DayStart truncates t to its UTC calendar day, the boundary used for
// quota resets. t is converted to UTC first so the boundary does not
// shift with the server's timezone.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RequestCheck validates the document and the user's quota, creates a
// check in Processing state, and enqueues the scoring job. The heavy
// work happens off the request path. No check row or counter change is
// left behind when the request fails.
func (s *CheckService) RequestCheck(ctx context.Context, userID, docID, notes string) (*RequestCheckResult, error) {
	if _, err := s.docs.GetDocument(ctx, docID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := s.limitFor(user)
	today := DayStart(s.clock.Now())
	used := user.ChecksUsedToday
	if user.LastResetDate.Before(today) {
		if err := s.users.ResetQuotaIfStale(ctx, userID, today); err != nil {
			return nil, err
		}
		used = 0
	}

	if !user.QuotaExempt() {
		used, err = s.users.ConsumeCheck(ctx, userID, limit)
		if err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	check := &models.Check{
		ID:         uuid.NewString(),
		DocumentID: docID,
		UserID:     userID,
		Status:     models.CheckStatusProcessing,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.checks.CreateCheck(ctx, check); err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueCheck(check.ID); err != nil {
		// Roll back the orphan row; the counter stays consumed, which
		// errs on the strict side for the user.
		if delErr := s.checks.DeleteCheck(ctx, check.ID); delErr != nil {
			logger.Error("failed to remove check after enqueue failure",
				"check_id", check.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to enqueue check: %w", err)
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &RequestCheckResult{
		Check:           check,
		RemainingToday:  remaining,
		DailyCheckLimit: limit,
	}, nil
}

func (s *CheckService) limitFor(user *models.User) int {
	if user.DailyCheckLimit > 0 {
		return user.DailyCheckLimit
	}
	return s.dailyLimit
}

// TouchQuotaOnLogin applies the day-boundary reset when a user logs
// in, so quota counters shown in the UI are current before any check
// is requested.
func (s *CheckService) TouchQuotaOnLogin(ctx context.Context, userID string) error {
	return s.users.ResetQuotaIfStale(ctx, userID, DayStart(s.clock.Now()))
}

// RemainingChecks reports the user's remaining quota for display.
func (s *CheckService) RemainingChecks(user *models.User) (remaining, limit int) {
	limit = s.limitFor(user)
	if user.QuotaExempt() {
		return limit, limit
	}
	used := user.ChecksUsedToday
	if user.LastResetDate.Before(DayStart(s.clock.Now())) {
		used = 0
	}
	remaining = limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, limit
}

// ProcessCheck is the worker entry point. The error boundary is
// deliberate: domain failures (missing source document, panics out of
// the scoring pipeline) mark the check Failed and return nil so the
// queue does not retry them; infrastructure errors loading or saving
// state are returned and retried by the queue.
func (s *CheckService) ProcessCheck(ctx context.Context, checkID string) (err error) {
	check, err := s.checks.GetCheck(ctx, checkID)
	if errors.Is(err, store.ErrNotFound) {
		logger.Warn("check vanished before processing", "check_id", checkID)
		return nil
	}
	if err != nil {
		return err
	}
	if check.Status != models.CheckStatusProcessing {
		// Re-delivered job for a terminal check.
		logger.Debug("skipping check in terminal state", "check_id", checkID, "status", check.Status)
		return nil
	}

	doc, err := s.docs.GetDocument(ctx, check.DocumentID)
	if errors.Is(err, store.ErrNotFound) {
		return s.checks.FailCheck(ctx, checkID, "source document no longer exists", s.clock.Now())
	}
	if err != nil {
		return err
	}

	corpus, err := s.docs.ListEligibleCorpus(ctx, check.DocumentID)
	if err != nil {
		return err
	}

	result, aiResult, scoreErr := s.score(doc.Content, corpus)
	if scoreErr != nil {
		logger.Error("scoring pipeline failed", "check_id", checkID, "error", scoreErr)
		return s.checks.FailCheck(ctx, checkID, scoreErr.Error(), s.clock.Now())
	}

	now := s.clock.Now()
	matches, distinct := analysis.BuildMatches(checkID, result, now)

	aiBlob, err := utils.CompressJSON(aiResult)
	if err != nil {
		return err
	}
	analysisBlob, err := utils.CompressJSON(analysis.DetailFromResult(result))
	if err != nil {
		return err
	}

	if err := s.checks.ReplaceMatches(ctx, checkID, matches); err != nil {
		return err
	}
	if err := s.checks.CompleteCheck(ctx, checkID, store.CheckResult{
		OverallSimilarity:     result.OverallScore,
		TotalMatchedDocuments: distinct,
		AiProbability:         aiResult.Probability,
		AiLevel:               aiResult.Level,
		AiDetail:              aiBlob,
		AnalysisDetail:        analysisBlob,
	}, now); err != nil {
		return err
	}

	logger.Info("check completed",
		"check_id", checkID,
		"overall_similarity", result.OverallScore,
		"matched_documents", distinct,
		"ai_probability", aiResult.Probability)
	return nil
}

// score runs the pure scoring pipeline with a panic guard. A panic
// here is a document-specific defect, not a transient fault, so it is
// converted to a domain failure instead of crashing the worker.
func (s *CheckService) score(content string, corpus []models.Document) (res *analysis.Result, ai models.AiDetail, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring failed: %v", r)
		}
	}()
	res = analysis.AnalyzeDetailed(content, corpus)
	ai = s.detector.DetectAi(content)
	return res, ai, nil
}
