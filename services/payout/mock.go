package payout

import (
	"context"
	"fmt"
	"sync"
)

// MockProcessor approves every payout with sequential TXN ids unless told to fail.
type MockProcessor struct {
	mu       sync.Mutex
	seq      int
	failWith string
	calls    []Request
}

func NewMockProcessor() *MockProcessor {
	return &MockProcessor{}
}

// FailWith makes subsequent payouts fail with message; empty restores success.
func (m *MockProcessor) FailWith(message string) {
	m.mu.Lock()
	m.failWith = message
	m.mu.Unlock()
}

func (m *MockProcessor) ProcessPayout(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.failWith != "" {
		return Result{Success: false, Message: m.failWith}, nil
	}

	m.seq++
	return Result{
		Success:       true,
		TransactionID: fmt.Sprintf("TXN%06d", m.seq),
		Message:       fmt.Sprintf("Payout of ₹%s processed", req.Amount.StringFixed(2)),
	}, nil
}

// Calls returns a copy of every request received
func (m *MockProcessor) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}
