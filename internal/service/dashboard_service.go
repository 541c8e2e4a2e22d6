package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"statsdash/internal/insight"
	"statsdash/internal/model"
	"statsdash/internal/repository"
	"statsdash/pkg/logger"
)

var ErrEmptyToken = errors.New("token is required")

type DashboardService interface {
	CreateSession() model.Session
	Session(id uuid.UUID) (model.Session, error)
	Analyze(ctx context.Context, sessionID uuid.UUID, token string) (*model.Dashboard, error)
	EndSession(id uuid.UUID) bool
	RunJanitor(ctx context.Context, interval, ttl time.Duration)
}

type dashboardService struct {
	stats    repository.StatsRepository
	sessions repository.SessionRepository
	metrics  MetricsCollector
	strict   bool
	now      func() time.Time
}

// NewDashboardService wires the statistics source and the session store. With strict set,
// a document that breaks the statistics contract is rejected instead of rendered with warnings.
func NewDashboardService(stats repository.StatsRepository, sessions repository.SessionRepository, metrics MetricsCollector, strict bool) DashboardService {
	return &dashboardService{
		stats:    stats,
		sessions: sessions,
		metrics:  metrics,
		strict:   strict,
		now:      time.Now,
	}
}

func (s *dashboardService) CreateSession() model.Session {
	session := s.sessions.Create()
	s.metrics.SetActiveSessions(s.sessions.Count())
	logger.WithFields(logger.Fields{"session": session.ID}).Info("Dashboard session created")
	return session
}

func (s *dashboardService) Session(id uuid.UUID) (model.Session, error) {
	return s.sessions.Get(id)
}

// Analyze fetches the statistics for token and derives the dashboard. The session holds
// at most one submission at a time and keeps only the latest successful result.
func (s *dashboardService) Analyze(ctx context.Context, sessionID uuid.UUID, token string) (*model.Dashboard, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	if err := s.sessions.BeginSubmission(sessionID); err != nil {
		if errors.Is(err, repository.ErrSubmissionInFlight) {
			s.metrics.IncrementAnalyses(OutcomeConflict)
		}
		return nil, err
	}

	dashboard, err := s.analyze(ctx, token)
	if endErr := s.sessions.EndSubmission(sessionID, dashboard); endErr != nil {
		logger.WithFields(logger.Fields{"session": sessionID}).WithError(endErr).Warn("Session vanished during submission")
	}

	fields := logger.Fields{"session": sessionID}
	if err != nil {
		s.metrics.IncrementAnalyses(outcomeOf(err))
		logger.WithFields(fields).WithError(err).Warn("Stats analysis failed")
		return nil, err
	}

	s.metrics.IncrementAnalyses(OutcomeSuccess)
	fields["warnings"] = len(dashboard.Warnings)
	logger.WithFields(fields).Info("Stats analysis completed")
	return dashboard, nil
}

func (s *dashboardService) analyze(ctx context.Context, token string) (*model.Dashboard, error) {
	start := s.now()
	stats, err := s.stats.FetchStats(ctx, token)
	s.metrics.ObserveFetchDuration(s.now().Sub(start))
	if err != nil {
		return nil, err
	}

	violations := stats.Validate()
	if violations != nil {
		n := countErrors(violations)
		s.metrics.IncrementValidationWarnings(n)
		if s.strict || stats.Payments == nil || stats.Withdrawals == nil {
			return nil, fmt.Errorf("invalid stats document: %w", violations)
		}
	}

	dashboard, err := BuildDashboard(stats, s.now())
	if err != nil {
		return nil, err
	}
	if violations != nil {
		dashboard.Warnings = append(splitErrors(violations), dashboard.Warnings...)
	}
	return dashboard, nil
}

func (s *dashboardService) EndSession(id uuid.UUID) bool {
	deleted := s.sessions.Delete(id)
	s.metrics.SetActiveSessions(s.sessions.Count())
	return deleted
}

// RunJanitor expires idle sessions every interval until ctx is done
func (s *dashboardService) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ttl)
		}
	}
}

func (s *dashboardService) sweep(ttl time.Duration) int {
	expired := s.sessions.ExpireIdle(s.now(), ttl)
	s.metrics.SetActiveSessions(s.sessions.Count())
	if expired > 0 {
		logger.WithFields(logger.Fields{"expired": expired}).Info("Expired idle dashboard sessions")
	}
	return expired
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, repository.ErrTransport):
		return OutcomeTransport
	case errors.Is(err, insight.ErrParse):
		return OutcomeParse
	case errors.Is(err, insight.ErrData):
		return OutcomeData
	default:
		return OutcomeTransport
	}
}

func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
