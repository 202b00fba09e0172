package inventory

import (
	"context"
	"fmt"

	"erp-backend/internal/models"

	"go.uber.org/zap"
)

type HeaderPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func (s *Service) GetStockIn(ctx context.Context, id string) (*models.StockIn, error) {
	h, err := s.repo.FindStockIn(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find stock in: %w", err)
	}
	if h == nil {
		return nil, &NotFoundError{Entity: "stock in", ID: id}
	}
	return h, nil
}

func (s *Service) ListStockIns(ctx context.Context, p Page, r DateRange) (*HeaderPage[models.StockIn], error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	p = p.Normalize()
	rows, total, err := s.repo.ListStockIns(ctx, p, r)
	if err != nil {
		return nil, fmt.Errorf("list stock ins: %w", err)
	}
	return &HeaderPage[models.StockIn]{Items: rows, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *Service) GetStockOut(ctx context.Context, id string) (*models.StockOut, error) {
	h, err := s.repo.FindStockOut(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find stock out: %w", err)
	}
	if h == nil {
		return nil, &NotFoundError{Entity: "stock out", ID: id}
	}
	return h, nil
}

func (s *Service) ListStockOuts(ctx context.Context, p Page, r DateRange) (*HeaderPage[models.StockOut], error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	p = p.Normalize()
	rows, total, err := s.repo.ListStockOuts(ctx, p, r)
	if err != nil {
		return nil, fmt.Errorf("list stock outs: %w", err)
	}
	return &HeaderPage[models.StockOut]{Items: rows, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *Service) GetLoan(ctx context.Context, id string) (*models.Loan, error) {
	l, err := s.repo.FindLoan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	if l == nil {
		return nil, &NotFoundError{Entity: "loan", ID: id}
	}
	return l, nil
}

func (s *Service) ListLoans(ctx context.Context, f LoanFilter) (*HeaderPage[models.Loan], error) {
	f.Page = f.Page.Normalize()
	rows, total, err := s.repo.ListLoans(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	return &HeaderPage[models.Loan]{Items: rows, Total: total, Page: f.Page.Page, Limit: f.Page.Limit}, nil
}

func (s *Service) ListStockCounts(ctx context.Context, itemID string, p Page) (*HeaderPage[models.StockCount], error) {
	p = p.Normalize()
	rows, total, err := s.repo.ListStockCounts(ctx, itemID, p)
	if err != nil {
		return nil, fmt.Errorf("list stock counts: %w", err)
	}
	return &HeaderPage[models.StockCount]{Items: rows, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// SetPhoto replaces the photo of an item or header. The superseded object
// is removed from the photo store once the new reference is committed.
func (s *Service) SetPhoto(ctx context.Context, kind PhotoKind, id, photo string) error {
	switch kind {
	case PhotoItem, PhotoStockIn, PhotoStockOut, PhotoLoan:
	default:
		return invalidField("kind", "unknown photo owner "+string(kind))
	}
	if len(photo) > 255 {
		return invalidField("photo", "must be at most 255 characters")
	}
	if err := s.checkPhoto(ctx, photo); err != nil {
		return err
	}

	var previous string
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		prev, found, err := tx.SetPhoto(kind, id, photo)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{Entity: string(kind), ID: id}
		}
		previous = prev
		return nil
	})
	if err != nil {
		return err
	}

	s.dropPhoto(ctx, previous, photo)
	s.log.Debug("photo replaced", zap.String("owner", string(kind)), zap.String("id", id))
	s.writeAudit(ctx, string(kind), id, models.AuditActionUpdate, "Photo replaced", map[string]string{"photo": photo})
	return nil
}
