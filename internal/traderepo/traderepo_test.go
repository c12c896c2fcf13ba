package traderepo

import "testing"

type fakeStore struct {
	createCalls []struct{ id, initiator, status string }
	err         error
}

func (f *fakeStore) CreateTrade(id, initiator, status string) error {
	f.createCalls = append(f.createCalls, struct{ id, initiator, status string }{id, initiator, status})
	return f.err
}

func TestCreateTradeSessionPersistsAndReturnsID(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	id, err := svc.CreateTradeSession("Alice")
	if err != nil {
		t.Fatalf("CreateTradeSession: %v", err)
	}
	if len(store.createCalls) != 1 {
		t.Fatalf("expected 1 CreateTrade call, got %d", len(store.createCalls))
	}
	if store.createCalls[0].id != id.String() || store.createCalls[0].initiator != "Alice" {
		t.Errorf("CreateTrade called with %+v, want id=%s initiator=Alice", store.createCalls[0], id)
	}
	if store.createCalls[0].status != StatusCreated {
		t.Errorf("CreateTrade called with status=%q, want %q", store.createCalls[0].status, StatusCreated)
	}
}

func TestCreateTradeSessionPropagatesStoreError(t *testing.T) {
	store := &fakeStore{err: errFake}
	svc := New(store)

	if _, err := svc.CreateTradeSession("Alice"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

var errFake = fakeErr("boom")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
