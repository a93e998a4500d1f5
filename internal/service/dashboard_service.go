package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/frii-edu/examiner-api/internal/dto"
	"github.com/frii-edu/examiner-api/internal/models"
	appErrors "github.com/frii-edu/examiner-api/pkg/errors"
)

type dashboardRepository interface {
	Summary(ctx context.Context, year int) (*dto.DashboardSummary, error)
	TopTeachers(ctx context.Context, year, limit int) ([]dto.TopTeacherRow, error)
	CountByType(ctx context.Context, year int) ([]dto.NameCountRow, error)
	CountByBranch(ctx context.Context, year int) ([]dto.NameCountRow, error)
	RecentGrantedLeaves(ctx context.Context, year, limit int) ([]models.LeaveDetail, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

const (
	dashboardTopTeacherLimit  = 10
	dashboardRecentLeaveLimit = 5
)

// DashboardOverview bundles every dashboard widget in one payload.
type DashboardOverview struct {
	Summary      *dto.DashboardSummary `json:"summary"`
	TopTeachers  []dto.TopTeacherRow   `json:"top_teachers"`
	ByType       []dto.NameCountRow    `json:"by_responsibility_type"`
	ByBranch     []dto.NameCountRow    `json:"by_branch"`
	RecentLeaves []models.LeaveDetail  `json:"recent_granted_leaves"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// DashboardService aggregates the admin dashboard widgets with a short-TTL
// cache in front.
type DashboardService struct {
	repo     dashboardRepository
	cache    dashboardCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(repo dashboardRepository, cache dashboardCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Overview returns all widgets for a year.
func (s *DashboardService) Overview(ctx context.Context, year int) (*DashboardOverview, error) {
	if year <= 0 {
		year = time.Now().UTC().Year()
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%d", year)
	if s.cache != nil {
		var cached DashboardOverview
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summary, err := s.repo.Summary(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard summary")
	}
	topTeachers, err := s.repo.TopTeachers(ctx, year, dashboardTopTeacherLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load top teachers")
	}
	byType, err := s.repo.CountByType(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count by type")
	}
	byBranch, err := s.repo.CountByBranch(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count by branch")
	}
	recentLeaves, err := s.repo.RecentGrantedLeaves(ctx, year, dashboardRecentLeaveLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent leaves")
	}

	overview := &DashboardOverview{
		Summary:      summary,
		TopTeachers:  topTeachers,
		ByType:       byType,
		ByBranch:     byBranch,
		RecentLeaves: recentLeaves,
		GeneratedAt:  time.Now().UTC(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, overview, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return overview, nil
}

// Summary returns only the headline counts.
func (s *DashboardService) Summary(ctx context.Context, year int) (*dto.DashboardSummary, error) {
	if year <= 0 {
		year = time.Now().UTC().Year()
	}
	summary, err := s.repo.Summary(ctx, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard summary")
	}
	return summary, nil
}

// Invalidate drops all cached dashboard payloads. Called after writes to
// assignments, leaves or catalogs.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
