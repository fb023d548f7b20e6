package dashboard

import (
	"context"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/leave"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/cache"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	recentLimit     = 10
	defaultCacheTTL = time.Minute
)

type Service interface {
	GetSummary(ctx context.Context) (SummaryResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, ttl time.Duration, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &service{repo: repo, rdb: rdb, sf: &singleflight.Group{}, ttl: ttl, logger: l}
}

func (s *service) GetSummary(ctx context.Context) (SummaryResponse, error) {
	return cache.GetOrLoad(ctx, s.rdb, s.sf, cache.DashboardKey, s.ttl, s.load)
}

func (s *service) load(ctx context.Context) (SummaryResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("load dashboard summary")

	var resp SummaryResponse
	var err error

	if resp.TotalEmployees, err = s.repo.CountEmployees(ctx); err != nil {
		logger.Error("count employees failed", zap.Error(err))
		return SummaryResponse{}, err
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		logger.Error("count leave statuses failed", zap.Error(err))
		return SummaryResponse{}, err
	}
	for _, c := range counts {
		st, ok := leave.ParseStatus(c.Status)
		if !ok {
			continue
		}
		switch st {
		case leave.StatusPending:
			resp.TotalPending += c.Total
		case leave.StatusApproved:
			resp.TotalApproved += c.Total
		case leave.StatusRejected:
			resp.TotalRejected += c.Total
		}
	}

	if resp.TotalDeleted, err = s.repo.CountDeletedLeaves(ctx); err != nil {
		logger.Error("count deleted leaves failed", zap.Error(err))
		return SummaryResponse{}, err
	}

	recent, err := s.repo.FindRecent(ctx, recentLimit)
	if err != nil {
		logger.Error("load recent leaves failed", zap.Error(err))
		return SummaryResponse{}, err
	}

	resp.RecentRequests = make([]RecentRequest, len(recent))
	for i, lr := range recent {
		resp.RecentRequests[i] = mapRecent(lr)
	}

	return resp, nil
}

func mapRecent(lr leave.LeaveRequest) RecentRequest {
	days, _ := lr.DaysRequested.Float64()
	r := RecentRequest{
		ID:            lr.ID.String(),
		Employee:      EmployeeRef{ID: lr.EmployeeID.String(), Name: "Unknown"},
		TypeOfLeave:   string(lr.TypeOfLeave),
		StartDate:     lr.StartDate.Format(time.DateOnly),
		EndDate:       lr.EndDate.Format(time.DateOnly),
		Status:        string(lr.Status),
		DaysRequested: days,
		CreatedAt:     lr.CreatedAt,
	}
	if lr.Employee != nil {
		r.Employee.Name = lr.Employee.FullName
		balance, _ := lr.Employee.LeaveBalance.Float64()
		r.RemainingCredits = &balance
	}
	return r
}
