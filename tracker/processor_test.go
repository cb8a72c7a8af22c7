package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	log "github.com/sirupsen/logrus"

	"portfolio-api/domain"
)

type fakeStore struct {
	messages []string
	deleted  int
	visitors []domain.Visitor

	dequeueErr error
	upsertErr  error
}

func (f *fakeStore) DequeueVisit(context.Context) (*azqueue.DequeuedMessage, error) {
	if f.dequeueErr != nil {
		return nil, f.dequeueErr
	}
	if len(f.messages) == 0 {
		return nil, nil
	}
	text := f.messages[0]
	f.messages = f.messages[1:]
	id := "msg-1"
	receipt := "receipt-1"
	return &azqueue.DequeuedMessage{MessageID: &id, PopReceipt: &receipt, MessageText: &text}, nil
}

func (f *fakeStore) DeleteVisitMessage(context.Context, string, string) error {
	f.deleted++
	return nil
}

func (f *fakeStore) UpsertVisitor(_ context.Context, v domain.Visitor) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.visitors = append(f.visitors, v)
	return nil
}

func TestProcessOneClassifiesAndPersists(t *testing.T) {
	visitTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{messages: []string{
		`{"ip":"203.0.113.7","userAgent":"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0","referrer":"https://example.com","time":"` + visitTime.Format(time.RFC3339) + `"}`,
	}}
	p := New(store, log.New())

	processed, err := p.processOne(context.Background())
	if err != nil {
		t.Fatalf("processOne: %v", err)
	}
	if !processed {
		t.Fatal("expected message to be processed")
	}
	if store.deleted != 1 {
		t.Fatalf("expected message to be deleted, got %d deletions", store.deleted)
	}
	if len(store.visitors) != 1 {
		t.Fatalf("expected 1 visitor, got %d", len(store.visitors))
	}

	v := store.visitors[0]
	if v.ID == "" {
		t.Fatal("expected visitor id to be assigned")
	}
	if v.Browser != "Chrome" || v.OS != "Windows" || v.Device != "Desktop" {
		t.Fatalf("unexpected classification: %s/%s/%s", v.Browser, v.OS, v.Device)
	}
	if !v.Time.Equal(visitTime) {
		t.Fatalf("unexpected visit time: %v", v.Time)
	}
}

func TestProcessOneDropsMalformedPayload(t *testing.T) {
	store := &fakeStore{messages: []string{`not json`}}
	p := New(store, log.New())

	processed, err := p.processOne(context.Background())
	if err != nil {
		t.Fatalf("processOne: %v", err)
	}
	if !processed {
		t.Fatal("expected message to be consumed")
	}
	if store.deleted != 1 {
		t.Fatal("malformed messages must still be deleted")
	}
	if len(store.visitors) != 0 {
		t.Fatalf("expected no visitors, got %d", len(store.visitors))
	}
}

func TestProcessOneKeepsMessageOnUpsertFailure(t *testing.T) {
	store := &fakeStore{
		messages:  []string{`{"ip":"203.0.113.7","userAgent":"x"}`},
		upsertErr: errors.New("table unavailable"),
	}
	p := New(store, log.New())

	processed, err := p.processOne(context.Background())
	if err == nil {
		t.Fatal("expected error from upsert failure")
	}
	if !processed {
		t.Fatal("expected message to count as processed")
	}
	if store.deleted != 0 {
		t.Fatal("message must not be deleted when the upsert fails")
	}
}

func TestProcessOneEmptyQueue(t *testing.T) {
	p := New(&fakeStore{}, log.New())
	processed, err := p.processOne(context.Background())
	if err != nil {
		t.Fatalf("processOne: %v", err)
	}
	if processed {
		t.Fatal("expected nothing to be processed")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ua      string
		browser string
		os      string
		device  string
	}{
		{"Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36", "Chrome", "Windows", "Desktop"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X) Version/17.0 Safari/605.1", "Safari", "macOS", "Desktop"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox", "Linux", "Desktop"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Version/17.0 Mobile/15E148 Safari/604.1", "Safari", "iOS", "Mobile"},
		{"", "Unknown", "Unknown", "Desktop"},
	}
	for _, tt := range tests {
		browser, os, device := Classify(tt.ua)
		if browser != tt.browser || os != tt.os || device != tt.device {
			t.Fatalf("Classify(%q) = %s/%s/%s, want %s/%s/%s", tt.ua, browser, os, device, tt.browser, tt.os, tt.device)
		}
	}
}
