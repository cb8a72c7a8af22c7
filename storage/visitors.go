package storage

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"

	"portfolio-api/domain"
)

// EnqueueVisit sends a raw tracking event to the visits queue.
func (s *Storage) EnqueueVisit(ctx context.Context, v domain.Visit) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.visitQueue.EnqueueMessage(ctx, string(data), nil)
	return err
}

// DequeueVisit retrieves a single message from the visits queue, or nil when
// the queue is empty.
func (s *Storage) DequeueVisit(ctx context.Context) (*azqueue.DequeuedMessage, error) {
	resp, err := s.visitQueue.DequeueMessage(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) == 0 {
		return nil, nil
	}
	return resp.Messages[0], nil
}

// DeleteVisitMessage removes a processed message from the visits queue.
func (s *Storage) DeleteVisitMessage(ctx context.Context, id, receipt string) error {
	_, err := s.visitQueue.DeleteMessage(ctx, id, receipt, nil)
	return err
}

// UpsertVisitor creates or replaces a visitor record.
func (s *Storage) UpsertVisitor(ctx context.Context, v domain.Visitor) error {
	payload, err := json.Marshal(visitorToEntity(v))
	if err != nil {
		return err
	}
	_, err = s.visitors.UpsertEntity(ctx, payload, nil)
	return err
}

// FetchVisitors returns every tracked visit.
func (s *Storage) FetchVisitors(ctx context.Context) ([]domain.Visitor, error) {
	ents, err := listEntities[visitorEntity](ctx, s.visitors, partVisitors)
	if err != nil {
		return nil, err
	}
	visitors := make([]domain.Visitor, 0, len(ents))
	for _, e := range ents {
		visitors = append(visitors, visitorFromEntity(e))
	}
	return visitors, nil
}

// FetchVisitorStats aggregates tracked visits into the dashboard summary.
func (s *Storage) FetchVisitorStats(ctx context.Context) (domain.VisitorStats, error) {
	visitors, err := s.FetchVisitors(ctx)
	if err != nil {
		return domain.VisitorStats{}, err
	}
	return AggregateVisitors(visitors, time.Now().UTC()), nil
}

// AggregateVisitors computes the visitor summary from raw records. Buckets are
// sorted by descending count, browser and OS breakdowns capped at five entries,
// and the daily series covers the trailing thirty days.
func AggregateVisitors(visitors []domain.Visitor, now time.Time) domain.VisitorStats {
	stats := domain.VisitorStats{Total: len(visitors)}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	thirtyDaysAgo := now.AddDate(0, 0, -30)

	browsers := map[string]int{}
	oses := map[string]int{}
	devices := map[string]int{}
	daily := map[string]int{}

	for _, v := range visitors {
		if !v.Time.Before(startOfDay) {
			stats.Today++
		}
		if !v.Time.Before(weekAgo) {
			stats.ThisWeek++
		}
		if !v.Time.Before(monthAgo) {
			stats.ThisMonth++
		}
		if !v.Time.Before(thirtyDaysAgo) {
			daily[v.Time.UTC().Format("2006-01-02")]++
		}
		browsers[v.Browser]++
		oses[v.OS]++
		devices[v.Device]++
	}

	stats.Browsers = topCounts(browsers, 5)
	stats.OS = topCounts(oses, 5)
	stats.Devices = topCounts(devices, 0)

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days {
		stats.Daily = append(stats.Daily, domain.DayCount{Day: d, Count: daily[d]})
	}
	return stats
}

func topCounts(counts map[string]int, limit int) []domain.NameCount {
	out := make([]domain.NameCount, 0, len(counts))
	for name, count := range counts {
		if name == "" {
			continue
		}
		out = append(out, domain.NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
