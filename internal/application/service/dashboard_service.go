package service

import (
	"context"
	"time"

	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

const recentClientsLimit = 5

// DashboardService provides dashboard statistics
type DashboardService struct {
	clientRepo     repository.ClientRepository
	matterRepo     repository.MatterRepository
	quoteRepo      repository.QuoteRepository
	receivableRepo repository.ReceivableRepository
	paymentRepo    repository.PaymentRepository
	userRepo       repository.UserRepository
	location       *time.Location
	now            func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	clientRepo repository.ClientRepository,
	matterRepo repository.MatterRepository,
	quoteRepo repository.QuoteRepository,
	receivableRepo repository.ReceivableRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		clientRepo:     clientRepo,
		matterRepo:     matterRepo,
		quoteRepo:      quoteRepo,
		receivableRepo: receivableRepo,
		paymentRepo:    paymentRepo,
		userRepo:       userRepo,
		location:       loc,
		now:            time.Now,
	}
}

// DashboardStats represents dashboard statistics. Finance figures are only
// filled for callers with finance access.
type DashboardStats struct {
	TotalClients          int64            `json:"total_clients"`
	OpenMatters           int64            `json:"open_matters"`
	CriticalMatters       int64            `json:"critical_matters"`
	QuotesByStatus        map[string]int64 `json:"quotes_by_status,omitempty"`
	OutstandingReceivable *decimal.Decimal `json:"outstanding_receivable,omitempty"`
	CollectedThisMonth    *decimal.Decimal `json:"collected_this_month,omitempty"`
	PendingApprovals      *int64           `json:"pending_approvals,omitempty"`
	RecentClients         []entity.Client  `json:"recent_clients"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	p, ok := authz.FromContext(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	tenantID, err := requireTenant(ctx)
	if err != nil {
		return nil, err
	}
	stats := &DashboardStats{}

	if stats.TotalClients, err = s.clientRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.OpenMatters, err = s.matterRepo.CountByStatus(ctx, enum.MatterStatusOpen); err != nil {
		return nil, err
	}
	if stats.CriticalMatters, err = s.matterRepo.CountByPriority(ctx, entity.PriorityCritical); err != nil {
		return nil, err
	}
	if stats.RecentClients, err = s.clientRepo.ListRecent(ctx, recentClientsLimit); err != nil {
		return nil, err
	}

	if authz.Can(p, authz.ActionView, authz.ResourceQuote) {
		counts, err := s.quoteRepo.CountByStatus(ctx)
		if err != nil {
			return nil, err
		}
		stats.QuotesByStatus = make(map[string]int64, len(counts))
		for _, c := range counts {
			stats.QuotesByStatus[c.Status.String()] = c.Count
		}
	}

	if authz.Can(p, authz.ActionView, authz.ResourceFinance) {
		outstanding, err := s.receivableRepo.SumOutstanding(ctx)
		if err != nil {
			return nil, err
		}
		n := s.now().In(s.location)
		monthStart := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, s.location)
		collected, err := s.paymentRepo.SumBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
		if err != nil {
			return nil, err
		}
		stats.OutstandingReceivable = &outstanding
		stats.CollectedThisMonth = &collected
	}

	if authz.Can(p, authz.ActionView, authz.ResourceUser) {
		pending, err := s.userRepo.CountInactive(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		stats.PendingApprovals = &pending
	}

	return stats, nil
}
