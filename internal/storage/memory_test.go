package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func ptr[T any](v T) *T { return &v }

func TestMemoryStoreUpsert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		updates []CustomerUpdate
		want    CustomerRecord
	}{
		{
			name: "insert with defaults",
			updates: []CustomerUpdate{
				{ExternalCustomerID: 789, FirstName: "Ahmed", Email: "a@x.com"},
			},
			want: CustomerRecord{
				ExternalCustomerID: 789,
				FirstName:          "Ahmed",
				Email:              "a@x.com",
				Currency:           "SAR",
			},
		},
		{
			name: "non-empty incoming overwrites",
			updates: []CustomerUpdate{
				{ExternalCustomerID: 789, FirstName: "Ahmed", Email: "old@x.com"},
				{ExternalCustomerID: 789, Email: "new@x.com", City: "Riyadh"},
			},
			want: CustomerRecord{
				ExternalCustomerID: 789,
				FirstName:          "Ahmed",
				Email:              "new@x.com",
				City:               "Riyadh",
				Currency:           "SAR",
			},
		},
		{
			name: "empty incoming preserves stored",
			updates: []CustomerUpdate{
				{ExternalCustomerID: 789, FirstName: "Ahmed", Email: "a@x.com", City: "Riyadh"},
				{ExternalCustomerID: 789, LastOrderID: ptr(int64(123456)), LastOrderAmount: ptr(150.50)},
			},
			want: CustomerRecord{
				ExternalCustomerID: 789,
				FirstName:          "Ahmed",
				Email:              "a@x.com",
				City:               "Riyadh",
				Currency:           "SAR",
				LastOrderID:        ptr(int64(123456)),
				LastOrderAmount:    ptr(150.50),
			},
		},
		{
			name: "explicit currency beats default",
			updates: []CustomerUpdate{
				{ExternalCustomerID: 789, Currency: "USD"},
			},
			want: CustomerRecord{
				ExternalCustomerID: 789,
				Currency:           "USD",
			},
		},
		{
			name: "later partial event cannot erase",
			updates: []CustomerUpdate{
				{ExternalCustomerID: 789, FirstName: "Ahmed", LastOrderID: ptr(int64(1)), LastOrderDate: "2024-05-01 10:00:00"},
				{ExternalCustomerID: 789, FirstName: ""},
			},
			want: CustomerRecord{
				ExternalCustomerID: 789,
				FirstName:          "Ahmed",
				Currency:           "SAR",
				LastOrderID:        ptr(int64(1)),
				LastOrderDate:      "2024-05-01 10:00:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewMemoryStore("SAR")
			ctx := t.Context()

			var firstID int64
			for i, update := range tt.updates {
				id, err := store.Upsert(ctx, update)
				if err != nil {
					t.Fatalf("Upsert() unexpected error: %v", err)
				}
				if i == 0 {
					firstID = id
				} else if id != firstID {
					t.Fatalf("Upsert() returned id %d, want %d (same key, same record)", id, firstID)
				}
			}

			got, err := store.Get(ctx, tt.want.ExternalCustomerID)
			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}

			ignore := cmpopts.IgnoreFields(CustomerRecord{}, "ID", "CreatedAt", "UpdatedAt")
			if diff := cmp.Diff(tt.want, *got, ignore); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemoryStoreIdempotent(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("SAR")
	ctx := t.Context()

	update := CustomerUpdate{
		ExternalCustomerID: 789,
		FirstName:          "Ahmed",
		Email:              "a@x.com",
		LastOrderID:        ptr(int64(123456)),
		LastOrderAmount:    ptr(150.50),
	}

	firstID, err := store.Upsert(ctx, update)
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	first, err := store.Get(ctx, 789)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	for range 10 {
		id, err := store.Upsert(ctx, update)
		if err != nil {
			t.Fatalf("Upsert() unexpected error: %v", err)
		}
		if id != firstID {
			t.Fatalf("redelivery returned id %d, want %d", id, firstID)
		}
	}

	after, err := store.Get(ctx, 789)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	ignore := cmpopts.IgnoreFields(CustomerRecord{}, "UpdatedAt")
	if diff := cmp.Diff(first, after, ignore); diff != "" {
		t.Errorf("redelivery changed record content (-first +after):\n%s", diff)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("SAR")

	if _, err := store.Get(t.Context(), 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreConcurrentUpserts(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("SAR")
	ctx := t.Context()

	const workers = 32

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			update := CustomerUpdate{ExternalCustomerID: 789}
			switch i % 3 {
			case 0:
				update.FirstName = "Ahmed"
			case 1:
				update.Email = "a@x.com"
			case 2:
				update.LastOrderID = ptr(int64(123456))
			}
			if _, err := store.Upsert(ctx, update); err != nil {
				t.Errorf("Upsert() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, 789)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}

	// final state must be the merge of all deliveries, never a lost update
	if got.FirstName != "Ahmed" {
		t.Errorf("FirstName = %q, want Ahmed", got.FirstName)
	}
	if got.Email != "a@x.com" {
		t.Errorf("Email = %q, want a@x.com", got.Email)
	}
	if got.LastOrderID == nil || *got.LastOrderID != 123456 {
		t.Errorf("LastOrderID = %v, want 123456", got.LastOrderID)
	}
}

func TestMemoryStoreDistinctKeys(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore("SAR")
	ctx := t.Context()

	idA, err := store.Upsert(ctx, CustomerUpdate{ExternalCustomerID: 1, FirstName: "A"})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	idB, err := store.Upsert(ctx, CustomerUpdate{ExternalCustomerID: 2, FirstName: "B"})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	if idA == idB {
		t.Errorf("distinct external ids share record id %d", idA)
	}
}
