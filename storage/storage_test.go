package storage

import (
	"encoding/json"
	"testing"
	"time"

	"portfolio-api/domain"
)

func TestProjectEntityDecode(t *testing.T) {
	data := []byte(`{"PartitionKey":"projects","RowKey":"p1","Name":"Portfolio","Category":"Web Development","Technologies":"[\"Go\",\"React\"]","Featured":true,"Order":3,"CreatedAt":1700000000000}`)
	var ent projectEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := projectFromEntity(ent)
	if p.ID != "p1" || p.Name != "Portfolio" || p.Order != 3 || !p.Featured {
		t.Fatalf("unexpected project: %+v", p)
	}
	if len(p.Technologies) != 2 || p.Technologies[1] != "React" {
		t.Fatalf("unexpected technologies: %v", p.Technologies)
	}
	if p.CreatedAt.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected created at: %v", p.CreatedAt)
	}
}

func TestEscapeFilterValue(t *testing.T) {
	if got := escapeFilterValue("O'Brien's"); got != "O''Brien''s" {
		t.Fatalf("unexpected escape: %q", got)
	}
}

func TestAggregateVisitors(t *testing.T) {
	now := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)
	mk := func(age time.Duration, browser, os, device string) domain.Visitor {
		return domain.Visitor{Browser: browser, OS: os, Device: device, Time: now.Add(-age)}
	}
	visitors := []domain.Visitor{
		mk(time.Hour, "Chrome", "Windows", "Desktop"),
		mk(2*time.Hour, "Chrome", "macOS", "Desktop"),
		mk(3*24*time.Hour, "Firefox", "Linux", "Desktop"),
		mk(10*24*time.Hour, "Safari", "iOS", "Mobile"),
		mk(45*24*time.Hour, "Chrome", "Android", "Mobile"),
	}

	stats := AggregateVisitors(visitors, now)
	if stats.Total != 5 {
		t.Fatalf("total: %d", stats.Total)
	}
	if stats.Today != 2 {
		t.Fatalf("today: %d", stats.Today)
	}
	if stats.ThisWeek != 3 {
		t.Fatalf("this week: %d", stats.ThisWeek)
	}
	if stats.ThisMonth != 4 {
		t.Fatalf("this month: %d", stats.ThisMonth)
	}
	if len(stats.Browsers) == 0 || stats.Browsers[0].Name != "Chrome" || stats.Browsers[0].Count != 3 {
		t.Fatalf("unexpected browser stats: %#v", stats.Browsers)
	}
	if len(stats.Daily) != 3 {
		t.Fatalf("expected 3 daily buckets inside 30 days, got %#v", stats.Daily)
	}
}

func TestAggregateVisitorsEmpty(t *testing.T) {
	stats := AggregateVisitors(nil, time.Now().UTC())
	if stats.Total != 0 || stats.Today != 0 || len(stats.Daily) != 0 {
		t.Fatalf("unexpected stats for empty input: %+v", stats)
	}
}
