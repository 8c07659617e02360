package payment

import (
	"context"

	"dolls-storefront/internal/model"
)

// Mock implements Gateway for testing.
// Each method can be configured via function fields.
type Mock struct {
	CreateSessionFunc   func(ctx context.Context, req *SessionRequest) (*Session, error)
	RetrieveSessionFunc func(ctx context.Context, id string) (*Session, error)
	ConstructEventFunc  func(payload []byte, sigHeader string) (*Event, error)
}

// CreateSession calls the configured CreateSessionFunc or returns an error.
func (m *Mock) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, req)
	}
	return nil, model.NewInternalError(nil)
}

// RetrieveSession calls the configured RetrieveSessionFunc or returns not found.
func (m *Mock) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	if m.RetrieveSessionFunc != nil {
		return m.RetrieveSessionFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("payment session")
}

// ConstructEvent calls the configured ConstructEventFunc or rejects the payload.
func (m *Mock) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	if m.ConstructEventFunc != nil {
		return m.ConstructEventFunc(payload, sigHeader)
	}
	return nil, model.NewValidationError("signature", "webhook signature verification failed")
}

// Verify Mock implements Gateway at compile time.
var _ Gateway = (*Mock)(nil)
