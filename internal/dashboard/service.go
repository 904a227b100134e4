package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/timmiekettle/tk2/internal/platform/cache"
	"github.com/timmiekettle/tk2/internal/shared"
)

// Cache is the versioned JSON cache the aggregates are read through.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// Service computes the per-user desk aggregates.
type Service struct {
	repo  Repository
	cache Cache
	loc   *time.Location
	now   func() time.Time
}

// NewService constructs a Service. cache may be nil.
func NewService(repo Repository, c Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if c == nil {
		c = cache.NewVersioned(nil, "dashboard", 0)
	}
	return &Service{repo: repo, cache: c, loc: loc, now: time.Now}
}

// WithNow overrides the clock for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// TotalSheets counts all sheets of the caller.
func (s *Service) TotalSheets(ctx context.Context) (int64, error) {
	return s.count(ctx, "total", SheetFilter{})
}

// SheetsWithStatus counts the caller's sheets in status.
func (s *Service) SheetsWithStatus(ctx context.Context, status string) (int64, error) {
	return s.count(ctx, "status:"+status, SheetFilter{Status: status})
}

// SheetsThisMonth counts the caller's sheets ordered in the current
// calendar month.
func (s *Service) SheetsThisMonth(ctx context.Context) (int64, error) {
	first, last := s.monthBounds()
	return s.count(ctx, "month:"+first.Format("2006-01"), SheetFilter{OrderFrom: first, OrderTo: last})
}

// DeliveryRate is the caller's delivered share of non-duplicate sheets.
func (s *Service) DeliveryRate(ctx context.Context) (Rate, error) {
	value, err := s.rate(ctx, "rate:global", time.Time{}, time.Time{})
	if err != nil {
		return Rate{}, err
	}
	return Rate{Value: value, Label: LabelGlobalDelivery}, nil
}

// DeliveryRateMTD restricts DeliveryRate to sheets created since the first
// of the month, up to the end of today.
func (s *Service) DeliveryRateMTD(ctx context.Context) (Rate, error) {
	now := s.now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	to := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), s.loc)
	value, err := s.rate(ctx, "rate:mtd:"+now.Format(time.DateOnly), from, to)
	if err != nil {
		return Rate{}, err
	}
	return Rate{Value: value, Label: LabelMTDDelivery}, nil
}

// ChartByMarketer groups the caller's sheets by digital marketer.
func (s *Service) ChartByMarketer(ctx context.Context) (ChartData, error) {
	user, err := caller(ctx)
	if err != nil {
		return ChartData{}, err
	}
	var rows []MarketerCount
	err = s.fetch(ctx, []string{"chart", "marketer", user}, &rows, func(ctx context.Context) (any, error) {
		return s.repo.CountByMarketer(ctx, user)
	})
	if err != nil {
		return ChartData{}, fmt.Errorf("dashboard: chart by marketer: %w", err)
	}
	return BuildChart(rows), nil
}

// BuildChart shapes marketer counts into the desk chart payload.
func BuildChart(rows []MarketerCount) ChartData {
	labels := make([]string, 0, len(rows))
	values := make([]int64, 0, len(rows))
	for _, row := range rows {
		label := row.Marketer
		if label == "" {
			label = NotSet
		}
		labels = append(labels, label)
		values = append(values, row.Count)
	}
	return ChartData{
		Data: ChartSeries{
			Labels:   labels,
			Datasets: []Dataset{{Name: ChartDatasetName, Values: values}},
		},
		Type: ChartTypeBar,
	}
}

func (s *Service) count(ctx context.Context, metric string, f SheetFilter) (int64, error) {
	user, err := caller(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.fetch(ctx, []string{"count", metric, user}, &n, func(ctx context.Context) (any, error) {
		return s.repo.CountSheets(ctx, user, f)
	})
	if err != nil {
		return 0, fmt.Errorf("dashboard: count %s: %w", metric, err)
	}
	return n, nil
}

func (s *Service) rate(ctx context.Context, metric string, from, to time.Time) (float64, error) {
	user, err := caller(ctx)
	if err != nil {
		return 0, err
	}
	var v float64
	err = s.fetch(ctx, []string{metric, user}, &v, func(ctx context.Context) (any, error) {
		return s.repo.DeliveryRate(ctx, user, from, to)
	})
	if err != nil {
		return 0, fmt.Errorf("dashboard: %s: %w", metric, err)
	}
	return v, nil
}

// fetch reads through the cache. Only loader errors are returned: when Redis
// is unreachable the aggregate is computed straight from the store.
func (s *Service) fetch(ctx context.Context, parts []string, dest any, loader func(context.Context) (any, error)) error {
	var loadErr error
	load := func(ctx context.Context) (any, error) {
		v, err := loader(ctx)
		loadErr = err
		return v, err
	}
	key, err := s.cache.BuildKey(ctx, append([]string{"dashboard"}, parts...)...)
	if err == nil {
		err = s.cache.FetchJSON(ctx, key, dest, load)
		if err == nil || loadErr != nil {
			return err
		}
	}

	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (s *Service) monthBounds() (time.Time, time.Time) {
	now := s.now().In(s.loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

func caller(ctx context.Context) (string, error) {
	actor, err := shared.RequireActor(ctx)
	if err != nil {
		return "", err
	}
	return actor.Caller(), nil
}
