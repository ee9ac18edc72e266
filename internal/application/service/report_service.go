package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sangkips/lexdesk-api/internal/application/authz"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/export"
	"github.com/sangkips/lexdesk-api/pkg/pagination"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportPageSize  = 100
)

// Report is a generated spreadsheet ready for download
type Report struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ReportService builds the XLSX exports
type ReportService struct {
	clientRepo     repository.ClientRepository
	receivableRepo repository.ReceivableRepository
	loc            *time.Location
	now            func() time.Time
}

// NewReportService creates a new report service
func NewReportService(clientRepo repository.ClientRepository, receivableRepo repository.ReceivableRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{clientRepo: clientRepo, receivableRepo: receivableRepo, loc: loc, now: time.Now}
}

// collect pages through a listing until every row is read.
func collect[T any](list func(p *pagination.PaginationParams) ([]T, int64, error)) ([]T, error) {
	var out []T
	for page := 1; ; page++ {
		items, total, err := list(&pagination.PaginationParams{Page: page, PerPage: exportPageSize})
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
		if len(items) < exportPageSize || int64(len(out)) >= total {
			return out, nil
		}
	}
}

// ReceivablesAging exports open receivables grouped by days past due
func (s *ReportService) ReceivablesAging(ctx context.Context) (*Report, error) {
	if _, err := authz.Require(ctx, authz.ActionView, authz.ResourceFinance); err != nil {
		return nil, err
	}
	rows, err := collect(func(p *pagination.PaginationParams) ([]entity.Receivable, int64, error) {
		return s.receivableRepo.List(ctx, repository.ReceivableFilter{
			Pagination: p,
			Statuses:   []enum.ReceivableStatus{enum.ReceivableStatusPending, enum.ReceivableStatusPartial},
		})
	})
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	content, err := export.ReceivablesAging(rows, now)
	if err != nil {
		return nil, fmt.Errorf("build aging report: %w", err)
	}
	return &Report{
		Content:     content,
		Filename:    "antiguedad-" + now.Format("20060102") + ".xlsx",
		ContentType: xlsxContentType,
	}, nil
}

// Clients exports the client directory the caller can see
func (s *ReportService) Clients(ctx context.Context) (*Report, error) {
	p, err := authz.Require(ctx, authz.ActionView, authz.ResourceClient)
	if err != nil {
		return nil, err
	}
	filter := repository.ClientFilter{SortBy: "company_name", SortOrder: "asc"}
	if !p.SeesAllClients() {
		filter.AssignedTo = &p.UserID
	}
	rows, err := collect(func(page *pagination.PaginationParams) ([]entity.Client, int64, error) {
		filter.Pagination = page
		return s.clientRepo.List(ctx, filter)
	})
	if err != nil {
		return nil, err
	}

	content, err := export.Clients(rows)
	if err != nil {
		return nil, fmt.Errorf("build client report: %w", err)
	}
	return &Report{
		Content:     content,
		Filename:    "clientes-" + s.now().In(s.loc).Format("20060102") + ".xlsx",
		ContentType: xlsxContentType,
	}, nil
}
