package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/madhukiran/stylist-agent/internal/adapters/llm"
	"github.com/madhukiran/stylist-agent/internal/app/chat"
	"github.com/madhukiran/stylist-agent/internal/domain"
)

// fakeStore is an in-memory HistoryStore with deep-copied records, so a
// test can tell committed state apart from the history the service is
// still mutating.
type fakeStore struct {
	mu      sync.Mutex
	records map[domain.UserID]domain.History
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[domain.UserID]domain.History)}
}

func (f *fakeStore) Load(_ context.Context, userID domain.UserID) (*domain.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	copied := h
	copied.Turns = append([]domain.Turn(nil), h.Turns...)
	return &copied, nil
}

func (f *fakeStore) Save(_ context.Context, h *domain.History) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *h
	copied.Turns = append([]domain.Turn(nil), h.Turns...)
	f.records[h.UserID] = copied
	f.saves++
	return nil
}

func (f *fakeStore) turnCount(userID domain.UserID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[userID].Turns)
}

// downStore simulates an unreachable backing store.
type downStore struct{}

func (downStore) Load(context.Context, domain.UserID) (*domain.History, error) {
	return nil, domain.ErrStoreUnavailable
}

func (downStore) Save(context.Context, *domain.History) error {
	return domain.ErrStoreUnavailable
}

// failingGenerator simulates a model timeout.
type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, []domain.Turn) (domain.Turn, error) {
	return domain.Turn{}, &domain.GenerationError{Err: errors.New("deadline exceeded")}
}

func newTestService(store domain.HistoryStore) *chat.Service {
	return chat.NewService(store, llm.NewMockClient(), chat.FullWindow(), testMediaCap)
}

func TestBuildContextSeedsPersona(t *testing.T) {
	svc := newTestService(newFakeStore())

	h := svc.BuildContext(context.Background(), "fresh-user")

	if len(h.Turns) != 1 {
		t.Fatalf("expected exactly the seed turn, got %d turns", len(h.Turns))
	}
	seed := h.Turns[0]
	if seed.Role != domain.RoleUser {
		t.Fatalf("expected persona seeded as user turn, got role %q", seed.Role)
	}
	if len(seed.Parts) != 1 || seed.Parts[0].Text != chat.PersonaPolicy {
		t.Fatalf("expected persona policy text in seed turn")
	}
}

func TestBuildContextReseedsEmptyRecord(t *testing.T) {
	store := newFakeStore()
	store.records["u1"] = domain.History{UserID: "u1"}

	svc := newTestService(store)
	h := svc.BuildContext(context.Background(), "u1")

	if len(h.Turns) != 1 || h.Turns[0].Parts[0].Text != chat.PersonaPolicy {
		t.Fatalf("expected empty record to be treated as absent and reseeded")
	}
}

func TestFirstExchangePersistsThreeTurns(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	out, err := svc.Exchange(context.Background(), chat.ExchangeInput{
		UserID:  "u1",
		Message: "What should I wear to a beach wedding?",
	})
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if out.Reply == "" {
		t.Fatalf("expected non-empty reply")
	}

	if got := store.turnCount("u1"); got != 3 {
		t.Fatalf("expected 3 persisted turns (persona, user, model), got %d", got)
	}

	persisted := store.records["u1"]
	if persisted.Turns[0].Parts[0].Text != chat.PersonaPolicy {
		t.Fatalf("expected persona turn first")
	}
	if persisted.Turns[1].Role != domain.RoleUser || persisted.Turns[1].Parts[0].Text != "What should I wear to a beach wedding?" {
		t.Fatalf("expected the user turn second, got %+v", persisted.Turns[1])
	}
	if persisted.Turns[2].Role != domain.RoleModel {
		t.Fatalf("expected the model turn last, got role %q", persisted.Turns[2].Role)
	}
	if persisted.UpdatedAt.IsZero() {
		t.Fatalf("expected UpdatedAt to be set on commit")
	}
}

func TestImageOnlyFollowUpGrowsToFiveTurns(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Exchange(ctx, chat.ExchangeInput{UserID: "u1", Message: "hi"}); err != nil {
		t.Fatalf("first exchange failed: %v", err)
	}

	out, err := svc.Exchange(ctx, chat.ExchangeInput{
		UserID: "u1",
		Media:  &domain.Media{MIMEType: "image/png", Data: []byte{0x89, 0x50, 0x4e, 0x47}},
	})
	if err != nil {
		t.Fatalf("image exchange failed: %v", err)
	}

	if got := store.turnCount("u1"); got != 5 {
		t.Fatalf("expected 5 persisted turns, got %d", got)
	}
	if out.UserTurn.Parts[0].Text != chat.DefaultCaption {
		t.Fatalf("expected default caption on image-only turn, got %q", out.UserTurn.Parts[0].Text)
	}
	if !out.UserTurn.Parts[1].IsMedia() {
		t.Fatalf("expected image part after the caption")
	}
}

func TestPriorTurnsNeverReordered(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	messages := []string{"first", "second", "third"}
	for _, m := range messages {
		if _, err := svc.Exchange(ctx, chat.ExchangeInput{UserID: "u1", Message: m}); err != nil {
			t.Fatalf("exchange %q failed: %v", m, err)
		}
	}

	persisted := store.records["u1"]
	if len(persisted.Turns) != 7 {
		t.Fatalf("expected 7 turns after 3 exchanges, got %d", len(persisted.Turns))
	}
	for i, m := range messages {
		userTurn := persisted.Turns[1+i*2]
		if userTurn.Role != domain.RoleUser || userTurn.Parts[0].Text != m {
			t.Fatalf("turn %d: expected user %q, got %+v", 1+i*2, m, userTurn)
		}
		if persisted.Turns[2+i*2].Role != domain.RoleModel {
			t.Fatalf("turn %d: expected model reply after user %q", 2+i*2, m)
		}
	}
}

func TestGenerationFailureLeavesHistoryUntouched(t *testing.T) {
	store := newFakeStore()
	store.records["u2"] = domain.History{
		UserID: "u2",
		Turns:  []domain.Turn{domain.TextTurn(domain.RoleUser, chat.PersonaPolicy)},
	}

	svc := chat.NewService(store, failingGenerator{}, chat.FullWindow(), testMediaCap)

	_, err := svc.Exchange(context.Background(), chat.ExchangeInput{UserID: "u2", Message: "hello?"})
	if err == nil {
		t.Fatalf("expected an error from the failing generator")
	}
	if !domain.IsGenerationError(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}

	if got := store.turnCount("u2"); got != 1 {
		t.Fatalf("expected persisted history to remain at 1 turn, got %d", got)
	}
	if store.saves != 0 {
		t.Fatalf("expected no save after a failed generation, got %d", store.saves)
	}
}

func TestStoreOutageStillProducesReply(t *testing.T) {
	svc := newTestService(downStore{})

	out, err := svc.Exchange(context.Background(), chat.ExchangeInput{UserID: "u1", Message: "hi"})
	if err != nil {
		t.Fatalf("expected exchange to survive store outage, got %v", err)
	}
	if out.Reply == "" {
		t.Fatalf("expected a reply despite the store being down")
	}

	// The in-memory result still carries the full exchange.
	if len(out.History.Turns) != 3 {
		t.Fatalf("expected 3 turns in the returned history, got %d", len(out.History.Turns))
	}
}

func TestInvalidInputRejectedBeforeStores(t *testing.T) {
	// downStore would error loudly if touched; composition must fail first.
	svc := newTestService(downStore{})

	_, err := svc.Exchange(context.Background(), chat.ExchangeInput{
		UserID: "u1",
		Media:  &domain.Media{MIMEType: "application/pdf", Data: []byte("%PDF")},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Exchange(context.Background(), chat.ExchangeInput{UserID: ""})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing userId, got %v", err)
	}
}

func TestConcurrentSameUserExchangesAllCommitted(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Exchange(context.Background(), chat.ExchangeInput{UserID: "u1", Message: "hi"}); err != nil {
				t.Errorf("exchange failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// persona + 2 turns per exchange; serialization means none is lost.
	if got := store.turnCount("u1"); got != 1+2*n {
		t.Fatalf("expected %d turns, got %d", 1+2*n, got)
	}
}
