package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"portfolio-api/domain"
)

// Store is the slice of the storage layer the tracker needs.
type Store interface {
	DequeueVisit(ctx context.Context) (*azqueue.DequeuedMessage, error)
	DeleteVisitMessage(ctx context.Context, id, receipt string) error
	UpsertVisitor(ctx context.Context, v domain.Visitor) error
}

// Processor drains the visits queue, classifies each visit's user agent and
// persists the visitor record.
type Processor struct {
	store  Store
	logger *log.Logger
	idle   time.Duration
}

func New(store Store, logger *log.Logger) *Processor {
	return &Processor{
		store:  store,
		logger: logger,
		idle:   time.Second,
	}
}

// Run polls the queue until ctx is cancelled. It sleeps between polls when the
// queue is empty or errors, so a storage outage does not spin the loop.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("visit processor started")
	for {
		processed, err := p.processOne(ctx)
		if err != nil {
			p.logger.Errorf("visit processing failed: %v", err)
		}
		if processed && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			p.logger.Info("visit processor stopped")
			return
		case <-time.After(p.idle):
		}
	}
}

func (p *Processor) processOne(ctx context.Context) (bool, error) {
	msg, err := p.store.DequeueVisit(ctx)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	if msg.MessageText != nil {
		if err := p.record(ctx, *msg.MessageText); err != nil {
			// The message stays on the queue and reappears after its
			// visibility timeout.
			return true, err
		}
	}

	if msg.MessageID != nil && msg.PopReceipt != nil {
		if err := p.store.DeleteVisitMessage(ctx, *msg.MessageID, *msg.PopReceipt); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (p *Processor) record(ctx context.Context, payload string) error {
	var visit domain.Visit
	if err := json.Unmarshal([]byte(payload), &visit); err != nil {
		// Malformed payloads are dropped, redelivery cannot fix them.
		p.logger.Errorf("dropping malformed visit payload: %v", err)
		return nil
	}

	browser, os, device := Classify(visit.UserAgent)
	visitor := domain.Visitor{
		ID:        uuid.NewString(),
		IP:        visit.IP,
		UserAgent: visit.UserAgent,
		Browser:   browser,
		OS:        os,
		Device:    device,
		Referrer:  visit.Referrer,
		Time:      visit.Time,
	}
	if visitor.Time.IsZero() {
		visitor.Time = time.Now().UTC()
	}
	return p.store.UpsertVisitor(ctx, visitor)
}
