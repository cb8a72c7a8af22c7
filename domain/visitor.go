package domain

import "time"

// Visit is the raw tracking event enqueued by the API and consumed by the
// tracker processor.
type Visit struct {
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`
	Time      time.Time `json:"time"`
}

// Visitor is a persisted, deduplicated visit with the user agent already
// classified.
type Visitor struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Device    string    `json:"device,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	Time      time.Time `json:"time"`
}

// NameCount is one bucket of a grouped visitor statistic.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayCount is the visit count for a single calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// VisitorStats is the aggregate returned to the admin dashboard.
type VisitorStats struct {
	Total     int         `json:"totalVisitors"`
	Today     int         `json:"visitorsToday"`
	ThisWeek  int         `json:"visitorsThisWeek"`
	ThisMonth int         `json:"visitorsThisMonth"`
	Browsers  []NameCount `json:"browserStats,omitempty"`
	OS        []NameCount `json:"osStats,omitempty"`
	Devices   []NameCount `json:"deviceStats,omitempty"`
	Daily     []DayCount  `json:"dailyVisitors,omitempty"`
}
