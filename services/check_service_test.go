package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"plagiarism-check-platform/internal/analysis"
	"plagiarism-check-platform/internal/store"
	"plagiarism-check-platform/models"
	"plagiarism-check-platform/utils"
)

// --- fakes -------------------------------------------------------------

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeDocs struct {
	docs   map[string]*models.Document
	corpus []models.Document
	err    error
}

func (f *fakeDocs) GetDocument(_ context.Context, id string) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc, nil
}

func (f *fakeDocs) ListEligibleCorpus(_ context.Context, excludeID string) ([]models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Document
	for _, d := range f.corpus {
		if d.ID != excludeID && d.EligibleAsReference() {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeUsers struct {
	users map[string]*models.User
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ResetQuotaIfStale(_ context.Context, id string, today time.Time) error {
	if u, ok := f.users[id]; ok && u.LastResetDate.Before(today) {
		u.ChecksUsedToday = 0
		u.LastResetDate = today
	}
	return nil
}

func (f *fakeUsers) ConsumeCheck(_ context.Context, id string, limit int) (int, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	if u.ChecksUsedToday >= limit {
		return 0, store.ErrQuotaExceeded
	}
	u.ChecksUsedToday++
	return u.ChecksUsedToday, nil
}

type fakeChecks struct {
	checks      map[string]*models.Check
	matches     map[string][]models.Match
	getErr      error
	completeErr error
}

func newFakeChecks() *fakeChecks {
	return &fakeChecks{
		checks:  make(map[string]*models.Check),
		matches: make(map[string][]models.Match),
	}
}

func (f *fakeChecks) CreateCheck(_ context.Context, c *models.Check) error {
	cp := *c
	f.checks[c.ID] = &cp
	return nil
}

func (f *fakeChecks) GetCheck(_ context.Context, id string) (*models.Check, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.checks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeChecks) CompleteCheck(_ context.Context, id string, res store.CheckResult, now time.Time) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	c, ok := f.checks[id]
	if !ok || c.Status != models.CheckStatusProcessing {
		return nil
	}
	c.Status = models.CheckStatusCompleted
	c.OverallSimilarity = res.OverallSimilarity
	c.TotalMatchedDocuments = res.TotalMatchedDocuments
	c.AiProbability = res.AiProbability
	c.AiLevel = res.AiLevel
	c.AiDetail = res.AiDetail
	c.AnalysisDetail = res.AnalysisDetail
	c.CompletedAt = &now
	return nil
}

func (f *fakeChecks) FailCheck(_ context.Context, id, notes string, now time.Time) error {
	c, ok := f.checks[id]
	if !ok || c.Status != models.CheckStatusProcessing {
		return nil
	}
	c.Status = models.CheckStatusFailed
	c.Notes = notes
	c.CompletedAt = &now
	return nil
}

func (f *fakeChecks) ReplaceMatches(_ context.Context, checkID string, matches []models.Match) error {
	f.matches[checkID] = matches
	return nil
}

func (f *fakeChecks) DeleteCheck(_ context.Context, id string) error {
	delete(f.checks, id)
	delete(f.matches, id)
	return nil
}

type fakeQueue struct {
	enqueued []string
	err      error
}

func (f *fakeQueue) EnqueueCheck(checkID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, checkID)
	return nil
}

// --- fixture -----------------------------------------------------------

type fixture struct {
	svc    *CheckService
	docs   *fakeDocs
	users  *fakeUsers
	checks *fakeChecks
	queue  *fakeQueue
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	docs := &fakeDocs{
		docs: map[string]*models.Document{
			"doc-1": {
				ID:      "doc-1",
				Title:   "Luận văn tín dụng",
				Content: "Rủi ro tín dụng là yếu tố quan trọng trong ngân hàng thương mại.",
				OwnerID: "user-1",
			},
		},
		corpus: []models.Document{
			{ID: "ref-1", Title: "Doc A", Content: "ngân hàng thương mại rủi ro tín dụng", IsPublic: true, IsActive: true},
		},
	}
	users := &fakeUsers{
		users: map[string]*models.User{
			"user-1": {
				ID:              "user-1",
				Username:        "sinhvien1",
				Role:            models.RoleStudent,
				DailyCheckLimit: 3,
				LastResetDate:   DayStart(clock.now),
			},
			"admin-1": {
				ID:            "admin-1",
				Username:      "giangvien",
				Role:          models.RoleAdmin,
				LastResetDate: DayStart(clock.now),
			},
		},
	}
	checks := newFakeChecks()
	queue := &fakeQueue{}
	detector := analysis.NewAiDetector(rand.New(rand.NewSource(7)))
	svc := NewCheckService(docs, users, checks, queue, detector, clock, 10)
	return &fixture{svc: svc, docs: docs, users: users, checks: checks, queue: queue, clock: clock}
}

// --- RequestCheck ------------------------------------------------------

func TestRequestCheckCreatesProcessingAndEnqueues(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.RequestCheck(context.Background(), "user-1", "doc-1", "ghi chú")
	if err != nil {
		t.Fatalf("RequestCheck: %v", err)
	}
	if res.Check.Status != models.CheckStatusProcessing {
		t.Fatalf("status = %q, want Processing", res.Check.Status)
	}
	if res.DailyCheckLimit != 3 || res.RemainingToday != 2 {
		t.Fatalf("quota counters = %d/%d, want 2/3", res.RemainingToday, res.DailyCheckLimit)
	}
	if len(f.queue.enqueued) != 1 || f.queue.enqueued[0] != res.Check.ID {
		t.Fatalf("check not enqueued: %v", f.queue.enqueued)
	}
	if _, ok := f.checks.checks[res.Check.ID]; !ok {
		t.Fatalf("check row not persisted")
	}
}

func TestRequestCheckMissingDocument(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RequestCheck(context.Background(), "user-1", "nope", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if f.users.users["user-1"].ChecksUsedToday != 0 {
		t.Fatalf("counter mutated on missing document")
	}
	if len(f.checks.checks) != 0 || len(f.queue.enqueued) != 0 {
		t.Fatalf("side effects on missing document")
	}
}

func TestRequestCheckMissingUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RequestCheck(context.Background(), "ghost", "doc-1", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRequestCheckQuotaInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := f.svc.RequestCheck(ctx, "user-1", "doc-1", ""); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if got := f.users.users["user-1"].ChecksUsedToday; got != i {
			t.Fatalf("after %d requests counter = %d", i, got)
		}
	}

	_, err := f.svc.RequestCheck(ctx, "user-1", "doc-1", "")
	if !errors.Is(err, store.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if got := f.users.users["user-1"].ChecksUsedToday; got != 3 {
		t.Fatalf("counter moved past limit: %d", got)
	}
	if len(f.checks.checks) != 3 {
		t.Fatalf("check created despite exhausted quota")
	}
}

func TestRequestCheckAdminBypassesQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		if _, err := f.svc.RequestCheck(ctx, "admin-1", "doc-1", ""); err != nil {
			t.Fatalf("admin request %d: %v", i, err)
		}
	}
	if got := f.users.users["admin-1"].ChecksUsedToday; got != 0 {
		t.Fatalf("admin counter mutated: %d", got)
	}
}

func TestRequestCheckDayBoundaryReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.users.users["user-1"]
	user.ChecksUsedToday = 3
	user.LastResetDate = DayStart(f.clock.now.AddDate(0, 0, -1)) // yesterday

	res, err := f.svc.RequestCheck(ctx, "user-1", "doc-1", "")
	if err != nil {
		t.Fatalf("RequestCheck after rollover: %v", err)
	}
	if user.ChecksUsedToday != 1 {
		t.Fatalf("counter = %d, want 1 (reset then increment)", user.ChecksUsedToday)
	}
	if !user.LastResetDate.Equal(DayStart(f.clock.now)) {
		t.Fatalf("last reset date not advanced: %v", user.LastResetDate)
	}
	if res.RemainingToday != 2 {
		t.Fatalf("remaining = %d, want 2", res.RemainingToday)
	}
}

func TestRequestCheckEnqueueFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.queue.err = errors.New("redis down")
	_, err := f.svc.RequestCheck(context.Background(), "user-1", "doc-1", "")
	if err == nil {
		t.Fatalf("expected enqueue failure")
	}
	if len(f.checks.checks) != 0 {
		t.Fatalf("orphan check row left after enqueue failure")
	}
}

// --- ProcessCheck ------------------------------------------------------

func requestAndProcess(t *testing.T, f *fixture) *models.Check {
	t.Helper()
	res, err := f.svc.RequestCheck(context.Background(), "user-1", "doc-1", "")
	if err != nil {
		t.Fatalf("RequestCheck: %v", err)
	}
	if err := f.svc.ProcessCheck(context.Background(), res.Check.ID); err != nil {
		t.Fatalf("ProcessCheck: %v", err)
	}
	return f.checks.checks[res.Check.ID]
}

func TestProcessCheckCompletesWithResults(t *testing.T) {
	f := newFixture(t)
	check := requestAndProcess(t, f)

	if check.Status != models.CheckStatusCompleted {
		t.Fatalf("status = %q, want Completed", check.Status)
	}
	if check.OverallSimilarity <= 0 {
		t.Fatalf("overall similarity = %v, want > 0", check.OverallSimilarity)
	}
	if check.TotalMatchedDocuments != 1 {
		t.Fatalf("matched documents = %d, want 1", check.TotalMatchedDocuments)
	}
	matches := f.checks.matches[check.ID]
	if len(matches) == 0 {
		t.Fatalf("no match rows persisted")
	}
	for _, m := range matches {
		if m.DocumentID != "ref-1" || m.DocumentTitle != "Doc A" {
			t.Fatalf("match resolved wrongly: %+v", m)
		}
		if m.Score <= analysis.MatchThreshold {
			t.Fatalf("match below threshold persisted: %+v", m)
		}
	}

	var detail models.AnalysisDetail
	if err := utils.DecompressJSON(check.AnalysisDetail, &detail); err != nil {
		t.Fatalf("analysis blob: %v", err)
	}
	if detail.OverallScore != check.OverallSimilarity {
		t.Fatalf("blob overall %v != check %v", detail.OverallScore, check.OverallSimilarity)
	}
	var ai models.AiDetail
	if err := utils.DecompressJSON(check.AiDetail, &ai); err != nil {
		t.Fatalf("ai blob: %v", err)
	}
	if ai.Probability != check.AiProbability {
		t.Fatalf("ai blob probability %v != check %v", ai.Probability, check.AiProbability)
	}
}

func TestProcessCheckEmptyCorpus(t *testing.T) {
	f := newFixture(t)
	f.docs.corpus = nil
	check := requestAndProcess(t, f)

	if check.Status != models.CheckStatusCompleted {
		t.Fatalf("status = %q, want Completed", check.Status)
	}
	if check.OverallSimilarity != 0 || check.TotalMatchedDocuments != 0 {
		t.Fatalf("empty corpus produced similarity %v / %d matches",
			check.OverallSimilarity, check.TotalMatchedDocuments)
	}
	if len(f.checks.matches[check.ID]) != 0 {
		t.Fatalf("matches persisted against empty corpus")
	}
}

func TestProcessCheckSourceVanishedFailsWithoutRetry(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.RequestCheck(context.Background(), "user-1", "doc-1", "")
	if err != nil {
		t.Fatalf("RequestCheck: %v", err)
	}
	delete(f.docs.docs, "doc-1")

	if err := f.svc.ProcessCheck(context.Background(), res.Check.ID); err != nil {
		t.Fatalf("domain failure must not surface to the queue: %v", err)
	}
	check := f.checks.checks[res.Check.ID]
	if check.Status != models.CheckStatusFailed {
		t.Fatalf("status = %q, want Failed", check.Status)
	}
	if !strings.Contains(check.Notes, "source document") {
		t.Fatalf("notes = %q, want failure diagnostics", check.Notes)
	}
}

func TestProcessCheckInfraErrorIsRetryable(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.RequestCheck(context.Background(), "user-1", "doc-1", "")
	if err != nil {
		t.Fatalf("RequestCheck: %v", err)
	}
	f.docs.err = errors.New("mongo timeout")

	if err := f.svc.ProcessCheck(context.Background(), res.Check.ID); err == nil {
		t.Fatalf("infrastructure error must surface for the queue to retry")
	}
	if got := f.checks.checks[res.Check.ID].Status; got != models.CheckStatusProcessing {
		t.Fatalf("status = %q, want still Processing for retry", got)
	}
}

func TestProcessCheckTerminalStateIsNotRevisited(t *testing.T) {
	f := newFixture(t)
	check := requestAndProcess(t, f)
	completedAt := *check.CompletedAt
	similarity := check.OverallSimilarity

	// Re-delivery of the same job id.
	if err := f.svc.ProcessCheck(context.Background(), check.ID); err != nil {
		t.Fatalf("re-delivery: %v", err)
	}
	if check.Status != models.CheckStatusCompleted ||
		!check.CompletedAt.Equal(completedAt) ||
		check.OverallSimilarity != similarity {
		t.Fatalf("terminal check was rewritten: %+v", check)
	}
}

func TestProcessCheckUnknownIDIsDropped(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.ProcessCheck(context.Background(), "no-such-check"); err != nil {
		t.Fatalf("unknown check id should be dropped, got %v", err)
	}
}

func TestDayStartUsesUTCCalendarDay(t *testing.T) {
	// 03:00 on March 10 in UTC+7 is still March 9 in UTC; the quota day
	// must follow the UTC calendar regardless of the clock's zone.
	zone := time.FixedZone("ICT", 7*60*60)
	local := time.Date(2026, 3, 10, 3, 0, 0, 0, zone)

	got := DayStart(local)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DayStart(%v) = %v, want %v", local, got, want)
	}

	// Same instant expressed in UTC maps to the same boundary.
	if utc := DayStart(local.UTC()); !utc.Equal(got) {
		t.Fatalf("boundary differs by zone: %v vs %v", utc, got)
	}
}

// --- quota display helpers --------------------------------------------

func TestRemainingChecksAfterRollover(t *testing.T) {
	f := newFixture(t)
	user := f.users.users["user-1"]
	user.ChecksUsedToday = 3
	user.LastResetDate = DayStart(f.clock.now)

	remaining, limit := f.svc.RemainingChecks(user)
	if remaining != 0 || limit != 3 {
		t.Fatalf("same-day: %d/%d, want 0/3", remaining, limit)
	}

	f.clock.now = f.clock.now.AddDate(0, 0, 1)
	remaining, _ = f.svc.RemainingChecks(user)
	if remaining != 3 {
		t.Fatalf("after rollover remaining = %d, want 3", remaining)
	}
}
