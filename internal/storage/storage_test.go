package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diekoffieblik/brewcast/internal/models"
)

func mustStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustPayload(t *testing.T, payload string) models.OrderHistory {
	t.Helper()
	var h models.OrderHistory
	if err := json.NewDecoder(strings.NewReader(payload)).Decode(&h); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return h
}

const twoUsers = `{"data": [
	{"id": 101, "user_id": "user-123", "status": "done", "total_price": 75.0, "created_at": "2025-09-15T08:15:00",
	 "order_products": [{"product_id": "cappuccino", "quantity": 2, "price": 50.0}, {"product_id": "cafe_latte", "quantity": 1, "price": 25.0}]},
	{"id": 103, "user_id": "user-123", "created_at": "2025-09-17T19:30:00",
	 "order_products": [{"product_id": "espresso", "quantity": 3}]},
	{"id": 102, "user_id": "user-123", "created_at": "2025-09-16T14:10:00",
	 "order_products": [{"product_id": "cappuccino"}]},
	{"user_id": "user-456", "created_at": "2025-09-16T10:00:00",
	 "order_products": [{"product_id": 9, "quantity": 1}]}
]}`

func TestStorage_ImportAndLoad(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()

	n, err := s.Import(ctx, mustPayload(t, twoUsers))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 lines imported, got %d", n)
	}

	lines, err := s.LoadOrders(ctx, "user-123")
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d", len(lines))
	}

	expected := []string{"cappuccino", "cafe_latte", "cappuccino", "espresso"}
	for i, l := range lines {
		if l.ProductID != expected[i] {
			t.Errorf("line %d product = %s, expected %s", i, l.ProductID, expected[i])
		}
		if err := l.Validate(); err != nil {
			t.Errorf("line %d invalid: %v", i, err)
		}
	}
	if lines[2].Quantity != 1 {
		t.Errorf("missing quantity should be stored as 1, got %d", lines[2].Quantity)
	}
	if lines[0].OccurredAt.Hour() != 8 {
		t.Errorf("Expected hour 8, got %d", lines[0].OccurredAt.Hour())
	}

	other, err := s.LoadOrders(ctx, "user-456")
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if len(other) != 1 || other[0].ProductID != "9" {
		t.Errorf("Unexpected lines for user-456: %+v", other)
	}
}

func TestStorage_ImportReplacesUserHistory(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()

	if _, err := s.Import(ctx, mustPayload(t, twoUsers)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	replacement := `{"data": [{"id": 200, "user_id": "user-123", "created_at": "2025-09-20T09:00:00",
		"order_products": [{"product_id": "mocha", "quantity": 4}]}]}`
	if _, err := s.Import(ctx, mustPayload(t, replacement)); err != nil {
		t.Fatalf("second Import failed: %v", err)
	}

	lines, err := s.LoadOrders(ctx, "user-123")
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != "mocha" || lines[0].Quantity != 4 {
		t.Errorf("Expected replaced history [mocha x4], got %+v", lines)
	}

	// Untouched users keep their history.
	other, _ := s.LoadOrders(ctx, "user-456")
	if len(other) != 1 {
		t.Errorf("user-456 history should survive, got %d lines", len(other))
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Users != 2 || st.Orders != 2 || st.Lines != 2 {
		t.Errorf("Unexpected stats: %+v", st)
	}
}

func TestStorage_ImportRejectsMalformed(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()

	bad := models.OrderHistory{Data: []models.Order{
		{UserID: "user-123", CreatedAt: "2025-09-15T08:15:00", OrderProducts: []models.OrderProduct{{ProductID: "latte"}}},
		{UserID: "user-123", OrderProducts: []models.OrderProduct{{ProductID: "mocha"}}},
	}}
	if _, err := s.Import(ctx, bad); !errors.Is(err, models.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}

	st, _ := s.Stats(ctx)
	if st.Orders != 0 {
		t.Errorf("malformed import must not write anything, got %+v", st)
	}
}

func TestStorage_UnknownUser(t *testing.T) {
	s := mustStorage(t)
	lines, err := s.LoadOrders(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Errorf("expected empty non-nil history, got %v", lines)
	}
}

func TestStorage_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orders.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := s.Import(context.Background(), mustPayload(t, twoUsers)); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	s.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	lines, err := reopened.LoadOrders(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("LoadOrders failed: %v", err)
	}
	if len(lines) != 4 {
		t.Errorf("Expected 4 persisted lines, got %d", len(lines))
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty path")
	}
}
