package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/sales/invoices"
)

// ErrReportArgs is returned when a report input is missing.
var ErrReportArgs = httpx.Userf(httpx.ErrValidation, "Please provide Start Date, End Date, and Warehouse.")

// SalesSource sums submitted invoice quantities per item.
type SalesSource interface {
	SoldItems(ctx context.Context, from, to time.Time, warehouse string) ([]invoices.SoldItem, error)
}

type Service struct {
	repo  Repository
	sales SalesSource
}

func NewService(repo Repository, sales SalesSource) *Service {
	return &Service{repo: repo, sales: sales}
}

// ItemWarehouseStock maps every requested item to the warehouses holding
// positive stock of it, optionally only those in state.
func (s *Service) ItemWarehouseStock(ctx context.Context, items []string, state string) (map[string][]WarehouseStock, error) {
	out := make(map[string][]WarehouseStock, len(items))
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := out[item]; seen {
			continue
		}
		out[item] = []WarehouseStock{}
		codes = append(codes, item)
	}
	if len(codes) == 0 {
		return out, nil
	}
	rows, err := s.repo.StockByWarehouse(ctx, codes, strings.TrimSpace(state))
	if err != nil {
		return nil, fmt.Errorf("inventory: stock by warehouse: %w", err)
	}
	for _, row := range rows {
		if _, ok := out[row.ItemCode]; ok {
			out[row.ItemCode] = append(out[row.ItemCode], row.WarehouseStock)
		}
	}
	return out, nil
}

// BuildReport loads sold and on-hand quantities for warehouse concurrently.
func (s *Service) BuildReport(ctx context.Context, start, end time.Time, warehouse string) (Report, error) {
	warehouse = strings.TrimSpace(warehouse)
	if start.IsZero() || end.IsZero() || warehouse == "" {
		return Report{}, ErrReportArgs
	}
	rep := Report{Start: start, End: end, Warehouse: warehouse}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sold, err := s.sales.SoldItems(gctx, start, end, warehouse)
		if err != nil {
			return fmt.Errorf("sold items: %w", err)
		}
		for _, it := range sold {
			rep.Sold = append(rep.Sold, ItemQty{ItemCode: it.ItemCode, Qty: it.Qty})
		}
		return nil
	})
	g.Go(func() error {
		onHand, err := s.repo.OnHand(gctx, warehouse)
		if err != nil {
			return fmt.Errorf("on hand: %w", err)
		}
		rep.OnHand = onHand
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("inventory: report: %w", err)
	}
	return rep, nil
}
