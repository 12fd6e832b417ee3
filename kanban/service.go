// Package kanban implements the per-entity access functions for boards,
// lists, tasks, users, attachments and the image gallery on top of the
// generic store.
//
// Functions here assume their arguments were already validated by the HTTP
// layer. They stamp createdAt/updatedAt, mint ids, and materialize the
// membership edges that make board↔user lookups work without a join.
package kanban

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/blob"
	"github.com/corkboard/corkboard/internal/keys"
	"github.com/corkboard/corkboard/store"
)

// Service exposes the entity operations. All methods are safe for
// concurrent use.
type Service struct {
	store  *store.Store
	signer *blob.Signer
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock substitutes the timestamp source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDSource substitutes the id generator. Used in tests.
func WithIDSource(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service.
func NewService(st *store.Store, signer *blob.Signer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  st,
		signer: signer,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestamp returns the current time as ISO-8601.
func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// putRecord marshals a typed record and writes it.
func (s *Service) putRecord(ctx context.Context, record interface{}) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return err
	}
	_, err = s.store.Put(ctx, item)
	return err
}

// getRecord reads a key and unmarshals into out.
func (s *Service) getRecord(ctx context.Context, key keys.Key, out interface{}) error {
	item, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	return attributevalue.UnmarshalMap(item, out)
}

// fanOut runs fn for indices 0..n-1 concurrently and returns the first
// error. Independent storage calls within one operation are issued this way;
// dependent ones stay sequential.
func fanOut(n int, fn func(i int) error) error {
	if n == 0 {
		return nil
	}
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- fn(i)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
