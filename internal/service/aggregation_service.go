package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"quiz-results/internal/cache"
	"quiz-results/internal/domain"
	"quiz-results/internal/logger"
	"quiz-results/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Export file names, one per aggregation.
const (
	ExportUserScoreInCompany       = "user_score_company_results"
	ExportUserScoreAcrossCompanies = "user_score_companies_results"
	ExportCompanyLeaderboard       = "company_results"
	ExportQuizLeaderboard          = "quiz_results"
	ExportUserScoresOverTime       = "user_scores_over_time"
	ExportUserCompletedQuizzes     = "user_completed_quizzes"
	ExportCompanyScoresOverTime    = "company_scores_over_time"
	ExportCompanyLastAttempts      = "company_last_attempts"
)

const (
	exportLookupConcurrency = 8
	questionListTimeout     = 10 * time.Second
)

// ScoreReport is a single unrounded score. Score is nil when there are no results.
type ScoreReport struct {
	Score  *float64
	Export *domain.ExportSummary
}

// LeaderboardReport lists users by descending score, ties by user id.
type LeaderboardReport struct {
	Entries []domain.UserScore
	Export  *domain.ExportSummary
}

type UserTimelineReport struct {
	Timeline domain.UserTimeline
	Export   *domain.ExportSummary
}

// CompanyTimelineReport maps user id to points, newest first.
type CompanyTimelineReport struct {
	Series map[string][]domain.ScorePoint
	Export *domain.ExportSummary
}

type CompletedQuizzesReport struct {
	Quizzes []domain.CompletedQuiz
	Export  *domain.ExportSummary
}

type LastAttemptsReport struct {
	Attempts []domain.LastAttempt
	Export   *domain.ExportSummary
}

// AggregationService computes read-only statistics over stored results.
// A non-empty exportFormat additionally appends the answer cache entries
// behind the statistic to an export file; export problems are reported in
// the report and never fail the call.
type AggregationService interface {
	UserScoreInCompany(ctx context.Context, actor domain.Actor, companyID, userID, exportFormat string) (*ScoreReport, error)
	UserScoreAcrossCompanies(ctx context.Context, actor domain.Actor, userID, exportFormat string) (*ScoreReport, error)
	CompanyLeaderboard(ctx context.Context, actor domain.Actor, companyID, exportFormat string) (*LeaderboardReport, error)
	GlobalLeaderboard(ctx context.Context, actor domain.Actor) (*LeaderboardReport, error)
	QuizLeaderboard(ctx context.Context, actor domain.Actor, quizID, exportFormat string) (*LeaderboardReport, error)
	UserScoresOverTime(ctx context.Context, actor domain.Actor, userID, exportFormat string) (*UserTimelineReport, error)
	UserCompletedQuizzes(ctx context.Context, actor domain.Actor, userID, exportFormat string) (*CompletedQuizzesReport, error)
	// CompanyScoresOverTime restricts to userID when it is not empty.
	CompanyScoresOverTime(ctx context.Context, actor domain.Actor, companyID, userID, exportFormat string) (*CompanyTimelineReport, error)
	CompanyLastAttemptTimes(ctx context.Context, actor domain.Actor, companyID, exportFormat string) (*LastAttemptsReport, error)
	// LookupAnswer reads one answer cache entry. The user themself or an
	// admin/owner of the quiz's company may read it.
	LookupAnswer(ctx context.Context, actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error)
}

type aggregationService struct {
	results     domain.ResultRepository
	catalog     domain.QuizCatalog
	auth        *Authorizer
	answerCache AnswerCacheService
	exporter    domain.Exporter
	questionsSF singleflight.Group
}

// NewAggregationService creates a new instance of aggregationService.
func NewAggregationService(
	results domain.ResultRepository,
	catalog domain.QuizCatalog,
	auth *Authorizer,
	answerCache AnswerCacheService,
	exporter domain.Exporter,
) AggregationService {
	return &aggregationService{
		results:     results,
		catalog:     catalog,
		auth:        auth,
		answerCache: answerCache,
		exporter:    exporter,
	}
}

func queryFailed(op string, err error, fields ...zap.Field) error {
	logger.Get().Error("Aggregation query failed", append(fields, zap.String("op", op), zap.Error(err))...)
	return domain.NewInternalError(fmt.Sprintf("%s failed", op), err)
}

func meanOfAverages(averages []domain.QuizAverage) *float64 {
	values := make([]float64, 0, len(averages))
	for _, a := range averages {
		values = append(values, a.Average)
	}
	mean, ok := util.Mean(values)
	if !ok {
		return nil
	}
	return &mean
}

func refsOfAverages(averages []domain.QuizAverage) []domain.UserQuizRef {
	refs := make([]domain.UserQuizRef, 0, len(averages))
	for _, a := range averages {
		refs = append(refs, domain.UserQuizRef{UserID: a.UserID, QuizID: a.QuizID})
	}
	return refs
}

func sortLeaderboard(scores []domain.UserScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].UserID < scores[j].UserID
	})
}

func (s *aggregationService) UserScoreInCompany(ctx context.Context, actor domain.Actor, companyID, userID, exportFormat string) (*ScoreReport, error) {
	if err := s.auth.RequireSelf(actor, userID); err != nil {
		return nil, err
	}
	if err := s.auth.RequireMember(ctx, actor, companyID); err != nil {
		return nil, err
	}

	averages, err := s.results.QuizAveragesForUserInCompany(ctx, companyID, userID)
	if err != nil {
		return nil, queryFailed("UserScoreInCompany", err, zap.String("companyID", companyID), zap.String("userID", userID))
	}
	return &ScoreReport{
		Score:  meanOfAverages(averages),
		Export: s.export(ctx, ExportUserScoreInCompany, exportFormat, refsOfAverages(averages)),
	}, nil
}

func (s *aggregationService) UserScoreAcrossCompanies(ctx context.Context, actor domain.Actor, userID, exportFormat string) (*ScoreReport, error) {
	if err := s.auth.RequireSelf(actor, userID); err != nil {
		return nil, err
	}

	averages, err := s.results.QuizAveragesForUser(ctx, userID)
	if err != nil {
		return nil, queryFailed("UserScoreAcrossCompanies", err, zap.String("userID", userID))
	}
	return &ScoreReport{
		Score:  meanOfAverages(averages),
		Export: s.export(ctx, ExportUserScoreAcrossCompanies, exportFormat, refsOfAverages(averages)),
	}, nil
}

func (s *aggregationService) CompanyLeaderboard(ctx context.Context, actor domain.Actor, companyID, exportFormat string) (*LeaderboardReport, error) {
	if err := s.auth.RequireAdminOrOwner(ctx, actor, companyID); err != nil {
		return nil, err
	}

	averages, err := s.results.QuizAveragesForCompany(ctx, companyID)
	if err != nil {
		return nil, queryFailed("CompanyLeaderboard", err, zap.String("companyID", companyID))
	}

	perUser := make(map[string][]float64)
	for _, a := range averages {
		perUser[a.UserID] = append(perUser[a.UserID], a.Average)
	}
	entries := make([]domain.UserScore, 0, len(perUser))
	for userID, values := range perUser {
		mean, _ := util.Mean(values)
		entries = append(entries, domain.UserScore{UserID: userID, Score: mean})
	}
	sortLeaderboard(entries)

	return &LeaderboardReport{
		Entries: entries,
		Export:  s.export(ctx, ExportCompanyLeaderboard, exportFormat, refsOfAverages(averages)),
	}, nil
}

// GlobalLeaderboard only requires an authenticated caller. It has no export.
func (s *aggregationService) GlobalLeaderboard(ctx context.Context, actor domain.Actor) (*LeaderboardReport, error) {
	if actor.UserID == "" {
		return nil, domain.NewUnauthorizedError("authentication required")
	}

	scores, err := s.results.GlobalUserRatios(ctx)
	if err != nil {
		return nil, queryFailed("GlobalLeaderboard", err)
	}
	if scores == nil {
		scores = []domain.UserScore{}
	}
	sortLeaderboard(scores)
	return &LeaderboardReport{Entries: scores}, nil
}

func (s *aggregationService) QuizLeaderboard(ctx context.Context, actor domain.Actor, quizID, exportFormat string) (*LeaderboardReport, error) {
	companyID, err := s.catalog.CompanyOfQuiz(ctx, quizID)
	if err != nil {
		return nil, queryFailed("QuizLeaderboard", err, zap.String("quizID", quizID))
	}
	if companyID == "" {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if err := s.auth.RequireAdminOrOwner(ctx, actor, companyID); err != nil {
		return nil, err
	}

	scores, err := s.results.UserAveragesForQuiz(ctx, quizID)
	if err != nil {
		return nil, queryFailed("QuizLeaderboard", err, zap.String("quizID", quizID))
	}
	if scores == nil {
		scores = []domain.UserScore{}
	}
	sortLeaderboard(scores)

	refs := make([]domain.UserQuizRef, 0, len(scores))
	for _, sc := range scores {
		refs = append(refs, domain.UserQuizRef{UserID: sc.UserID, QuizID: quizID})
	}
	return &LeaderboardReport{
		Entries: scores,
		Export:  s.export(ctx, ExportQuizLeaderboard, exportFormat, refs),
	}, nil
}

func (s *aggregationService) UserScoresOverTime(ctx context.Context, actor domain.Actor, userID, exportFormat string) (*UserTimelineReport, error) {
	if err := s.auth.RequireSelf(actor, userID); err != nil {
		return nil, err
	}

	rows, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return nil, queryFailed("UserScoresOverTime", err, zap.String("userID", userID))
	}

	timeline := make(domain.UserTimeline)
	refs := make([]domain.UserQuizRef, 0, len(rows))
	for _, r := range rows {
		byQuiz, ok := timeline[r.CompanyID]
		if !ok {
			byQuiz = make(map[string][]domain.ScorePoint)
			timeline[r.CompanyID] = byQuiz
		}
		byQuiz[r.QuizID] = append(byQuiz[r.QuizID], domain.ScorePoint{Score: r.Score(), At: r.CreatedAt})
		refs = append(refs, domain.UserQuizRef{UserID: r.UserID, QuizID: r.QuizID})
	}
	return &UserTimelineReport{
		Timeline: timeline,
		Export:   s.export(ctx, ExportUserScoresOverTime, exportFormat, refs),
	}, nil
}

func (s *aggregationService) UserCompletedQuizzes(ctx context.Context, actor domain.Actor, userID, exportFormat string) (*CompletedQuizzesReport, error) {
	if err := s.auth.RequireSelf(actor, userID); err != nil {
		return nil, err
	}

	quizzes, err := s.results.CompletedQuizzes(ctx, userID)
	if err != nil {
		return nil, queryFailed("UserCompletedQuizzes", err, zap.String("userID", userID))
	}
	if quizzes == nil {
		quizzes = []domain.CompletedQuiz{}
	}

	refs := make([]domain.UserQuizRef, 0, len(quizzes))
	for _, q := range quizzes {
		refs = append(refs, domain.UserQuizRef{UserID: userID, QuizID: q.QuizID})
	}
	return &CompletedQuizzesReport{
		Quizzes: quizzes,
		Export:  s.export(ctx, ExportUserCompletedQuizzes, exportFormat, refs),
	}, nil
}

func (s *aggregationService) CompanyScoresOverTime(ctx context.Context, actor domain.Actor, companyID, userID, exportFormat string) (*CompanyTimelineReport, error) {
	if err := s.auth.RequireAdminOrOwner(ctx, actor, companyID); err != nil {
		return nil, err
	}

	rows, err := s.results.ListByCompany(ctx, companyID, userID)
	if err != nil {
		return nil, queryFailed("CompanyScoresOverTime", err, zap.String("companyID", companyID))
	}

	series := make(map[string][]domain.ScorePoint)
	refs := make([]domain.UserQuizRef, 0, len(rows))
	for _, r := range rows {
		series[r.UserID] = append(series[r.UserID], domain.ScorePoint{Score: r.Score(), At: r.CreatedAt})
		refs = append(refs, domain.UserQuizRef{UserID: r.UserID, QuizID: r.QuizID})
	}
	return &CompanyTimelineReport{
		Series: series,
		Export: s.export(ctx, ExportCompanyScoresOverTime, exportFormat, refs),
	}, nil
}

func (s *aggregationService) CompanyLastAttemptTimes(ctx context.Context, actor domain.Actor, companyID, exportFormat string) (*LastAttemptsReport, error) {
	if err := s.auth.RequireAdminOrOwner(ctx, actor, companyID); err != nil {
		return nil, err
	}

	attempts, err := s.results.LastAttemptsForCompany(ctx, companyID)
	if err != nil {
		return nil, queryFailed("CompanyLastAttemptTimes", err, zap.String("companyID", companyID))
	}
	if attempts == nil {
		attempts = []domain.LastAttempt{}
	}

	refs := make([]domain.UserQuizRef, 0, len(attempts))
	for _, a := range attempts {
		refs = append(refs, domain.UserQuizRef{UserID: a.UserID, QuizID: a.QuizID})
	}
	return &LastAttemptsReport{
		Attempts: attempts,
		Export:   s.export(ctx, ExportCompanyLastAttempts, exportFormat, refs),
	}, nil
}

func (s *aggregationService) LookupAnswer(ctx context.Context, actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
	companyID, err := s.catalog.CompanyOfQuiz(ctx, quizID)
	if err != nil {
		return nil, queryFailed("LookupAnswer", err, zap.String("quizID", quizID))
	}
	if companyID == "" {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if actor.UserID != userID {
		if err := s.auth.RequireAdminOrOwner(ctx, actor, companyID); err != nil {
			return nil, err
		}
	}

	entry, err := s.answerCache.Lookup(ctx, quizID, userID, questionID)
	if err != nil {
		logger.Get().Warn("Answer cache lookup failed", zap.String("quizID", quizID), zap.String("userID", userID), zap.Error(err))
		return nil, domain.NewDependencyError("answer cache unavailable", err)
	}
	if entry == nil {
		return nil, domain.NewNotFoundError(
			fmt.Sprintf("no cached answer for %s", cache.QuizPassKey(quizID, userID, questionID)))
	}
	return entry, nil
}

// export is a no-op for an empty format. Every problem is recorded in the
// returned summary.
func (s *aggregationService) export(ctx context.Context, name, format string, refs []domain.UserQuizRef) *domain.ExportSummary {
	if format == "" {
		return nil
	}
	log := logger.Get().With(zap.String("export", name), zap.String("format", format))
	summary := &domain.ExportSummary{Format: format}

	exportFormat, err := domain.ParseExportFormat(format)
	if err != nil {
		log.Warn("Export rejected", zap.Error(err))
		summary.AddError(toExportError(err))
		return summary
	}
	if s.exporter == nil || s.answerCache == nil || !s.answerCache.Enabled() {
		summary.AddError(domain.NewExportFailedError("export is not configured", nil))
		return summary
	}

	entries := s.collectEntries(ctx, dedupeRefs(refs), summary)
	if len(entries) == 0 {
		return summary
	}

	path, err := s.exporter.Append(ctx, name, exportFormat, entries)
	summary.File = path
	if err != nil {
		log.Warn("Export write failed", zap.Error(err))
		summary.AddError(toExportError(err))
		return summary
	}
	summary.Records = len(entries)
	log.Info("Exported cached answers", zap.Int("records", summary.Records), zap.String("file", path))
	return summary
}

type exportSlot struct {
	quizID     string
	userID     string
	questionID string
	entry      *domain.AnswerCacheEntry
	err        *domain.DomainError
}

// collectEntries reads the cache entry of every question of every ref.
// The result keeps ref order then question order.
func (s *aggregationService) collectEntries(ctx context.Context, refs []domain.UserQuizRef, summary *domain.ExportSummary) []domain.AnswerCacheEntry {
	var slots []*exportSlot
	for _, ref := range refs {
		questionIDs, err := s.questionIDs(ctx, ref.QuizID)
		if err != nil {
			summary.AddError(domain.NewExportFailedError(
				fmt.Sprintf("failed to list questions of quiz %s", ref.QuizID), err))
			continue
		}
		for _, questionID := range questionIDs {
			slots = append(slots, &exportSlot{quizID: ref.QuizID, userID: ref.UserID, questionID: questionID})
		}
	}

	var g errgroup.Group
	g.SetLimit(exportLookupConcurrency)
	for _, slot := range slots {
		g.Go(func() error {
			entry, err := s.answerCache.Lookup(ctx, slot.quizID, slot.userID, slot.questionID)
			key := cache.QuizPassKey(slot.quizID, slot.userID, slot.questionID)
			switch {
			case err != nil:
				slot.err = domain.NewExportFailedError(fmt.Sprintf("failed to read %s", key), err)
			case entry == nil:
				slot.err = domain.NewExportFailedError(fmt.Sprintf("no cached answer for %s", key), nil)
			default:
				slot.entry = entry
			}
			return nil
		})
	}
	_ = g.Wait()

	entries := make([]domain.AnswerCacheEntry, 0, len(slots))
	for _, slot := range slots {
		if slot.err != nil {
			summary.AddError(slot.err)
			continue
		}
		entries = append(entries, *slot.entry)
	}
	return entries
}

// questionIDs collapses concurrent lookups of the same quiz. The shared call
// does not inherit the cancellation of whichever caller started it; each
// caller stops waiting on its own ctx.
func (s *aggregationService) questionIDs(ctx context.Context, quizID string) ([]string, error) {
	ch := s.questionsSF.DoChan(quizID, func() (interface{}, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), questionListTimeout)
		defer cancel()
		return s.catalog.QuestionIDsForQuiz(sharedCtx, quizID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]string), nil
	}
}

func dedupeRefs(refs []domain.UserQuizRef) []domain.UserQuizRef {
	seen := make(map[domain.UserQuizRef]struct{}, len(refs))
	out := make([]domain.UserQuizRef, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func toExportError(err error) *domain.DomainError {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return domain.NewExportFailedError("export failed", err)
}
