package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"statsdash/internal/insight"
	"statsdash/internal/model"
	"statsdash/internal/repository"
)

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) FetchStats(ctx context.Context, token string) (*model.StatsResponse, error) {
	args := m.Called(ctx, token)
	stats, _ := args.Get(0).(*model.StatsResponse)
	return stats, args.Error(1)
}

type DashboardServiceTestSuite struct {
	suite.Suite
	stats    *mockStatsRepository
	sessions repository.SessionRepository
	metrics  *metricsCollector
	service  *dashboardService
}

func (s *DashboardServiceTestSuite) SetupTest() {
	s.stats = &mockStatsRepository{}
	s.sessions = repository.NewSessionRepository()
	s.metrics = NewMetricsCollector(prometheus.NewRegistry()).(*metricsCollector)
	s.service = NewDashboardService(s.stats, s.sessions, s.metrics, false).(*dashboardService)
}

func (s *DashboardServiceTestSuite) analyses(outcome string) float64 {
	return testutil.ToFloat64(s.metrics.analysesTotal.WithLabelValues(outcome))
}

func (s *DashboardServiceTestSuite) TestAnalyze_Success() {
	session := s.service.CreateSession()
	s.stats.On("FetchStats", mock.Anything, "tok-123").Return(fixtureStats(), nil).Once()

	d, err := s.service.Analyze(context.Background(), session.ID, "  tok-123\n")
	s.Require().NoError(err)
	s.Equal("$1,500.50", d.Cards[0].Value)
	s.Empty(d.Warnings)

	stored, err := s.service.Session(session.ID)
	s.Require().NoError(err)
	s.False(stored.InFlight)
	s.Same(d, stored.Result)

	s.Equal(1.0, s.analyses(OutcomeSuccess))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.activeSessions))
	s.stats.AssertExpectations(s.T())
}

func (s *DashboardServiceTestSuite) TestAnalyze_EmptyToken() {
	session := s.service.CreateSession()

	_, err := s.service.Analyze(context.Background(), session.ID, " \t ")
	s.ErrorIs(err, ErrEmptyToken)
	s.stats.AssertNotCalled(s.T(), "FetchStats", mock.Anything, mock.Anything)
}

func (s *DashboardServiceTestSuite) TestAnalyze_UnknownSession() {
	_, err := s.service.Analyze(context.Background(), uuid.New(), "tok")
	s.ErrorIs(err, repository.ErrSessionNotFound)
}

func (s *DashboardServiceTestSuite) TestAnalyze_TransportErrorClearsResult() {
	session := s.service.CreateSession()
	s.stats.On("FetchStats", mock.Anything, "good").Return(fixtureStats(), nil).Once()
	s.stats.On("FetchStats", mock.Anything, "bad").
		Return(nil, fmt.Errorf("%w: status 500", repository.ErrTransport)).Once()

	_, err := s.service.Analyze(context.Background(), session.ID, "good")
	s.Require().NoError(err)

	_, err = s.service.Analyze(context.Background(), session.ID, "bad")
	s.ErrorIs(err, repository.ErrTransport)

	stored, err := s.service.Session(session.ID)
	s.Require().NoError(err)
	s.Nil(stored.Result)
	s.False(stored.InFlight)
	s.Equal(1.0, s.analyses(OutcomeTransport))
}

func (s *DashboardServiceTestSuite) TestAnalyze_ParseError() {
	session := s.service.CreateSession()
	s.stats.On("FetchStats", mock.Anything, "tok").
		Return(nil, fmt.Errorf("failed to decode stats: %w", insight.ErrParse)).Once()

	_, err := s.service.Analyze(context.Background(), session.ID, "tok")
	s.ErrorIs(err, insight.ErrParse)
	s.Equal(1.0, s.analyses(OutcomeParse))
}

func (s *DashboardServiceTestSuite) TestAnalyze_ContractViolationsBecomeWarnings() {
	stats := fixtureStats()
	stats.Payments.TotalBonus = -5
	stats.Withdrawals.MinWithdrawal = 150
	session := s.service.CreateSession()
	s.stats.On("FetchStats", mock.Anything, "tok").Return(stats, nil).Once()

	d, err := s.service.Analyze(context.Background(), session.ID, "tok")
	s.Require().NoError(err)
	s.Len(d.Warnings, 2)
	s.Contains(d.Warnings[0], "payments.total_bonus")
	s.Equal("-$5.00", d.Payments.Items[1].Value)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.validationWarnings))
	s.Equal(1.0, s.analyses(OutcomeSuccess))
}

func (s *DashboardServiceTestSuite) TestAnalyze_StrictRejectsViolations() {
	s.service.strict = true
	stats := fixtureStats()
	stats.Payments.FailedPayments = -1
	session := s.service.CreateSession()
	s.stats.On("FetchStats", mock.Anything, "tok").Return(stats, nil).Once()

	_, err := s.service.Analyze(context.Background(), session.ID, "tok")
	s.ErrorIs(err, insight.ErrData)
	s.Equal(1.0, s.analyses(OutcomeData))

	stored, err := s.service.Session(session.ID)
	s.Require().NoError(err)
	s.Nil(stored.Result)
}

func (s *DashboardServiceTestSuite) TestAnalyze_MissingSectionAlwaysRejected() {
	stats := fixtureStats()
	stats.Payments = nil
	session := s.service.CreateSession()
	s.stats.On("FetchStats", mock.Anything, "tok").Return(stats, nil).Once()

	_, err := s.service.Analyze(context.Background(), session.ID, "tok")
	s.ErrorIs(err, insight.ErrData)
}

func (s *DashboardServiceTestSuite) TestAnalyze_OneSubmissionInFlight() {
	session := s.service.CreateSession()
	started := make(chan struct{})
	release := make(chan struct{})
	s.stats.On("FetchStats", mock.Anything, "slow").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(fixtureStats(), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := s.service.Analyze(context.Background(), session.ID, "slow")
		done <- err
	}()
	<-started

	_, err := s.service.Analyze(context.Background(), session.ID, "fast")
	s.ErrorIs(err, repository.ErrSubmissionInFlight)
	s.Equal(1.0, s.analyses(OutcomeConflict))

	close(release)
	s.NoError(<-done)
}

func (s *DashboardServiceTestSuite) TestEndSession() {
	session := s.service.CreateSession()

	s.True(s.service.EndSession(session.ID))
	s.False(s.service.EndSession(session.ID))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.activeSessions))

	_, err := s.service.Session(session.ID)
	s.ErrorIs(err, repository.ErrSessionNotFound)
}

func (s *DashboardServiceTestSuite) TestSweepExpiresIdleSessions() {
	s.service.CreateSession()
	s.service.now = func() time.Time { return time.Now().Add(time.Hour) }

	s.Equal(1, s.service.sweep(30*time.Minute))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.activeSessions))
}

func TestDashboardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}

func TestRunJanitorStopsOnCancel(t *testing.T) {
	svc := NewDashboardService(&mockStatsRepository{}, repository.NewSessionRepository(),
		NewMetricsCollector(prometheus.NewRegistry()), false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunJanitor(ctx, time.Millisecond, time.Minute)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "janitor did not stop")
	}
}
