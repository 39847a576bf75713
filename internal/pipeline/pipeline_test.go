package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/goodsign/monday"

	"github.com/radamanthiss/transaction-api/internal/blob"
	"github.com/radamanthiss/transaction-api/internal/domain"
)

const csvHeader = "Id;AccountId;Date;Transaction"

// fakeBlob serves file contents by bucket/key.
type fakeBlob struct {
	objects map[string]string
}

func (f *fakeBlob) Fetch(ctx context.Context, bucket, key string) (string, error) {
	content, ok := f.objects[bucket+"/"+key]
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", bucket, key, blob.ErrNotFound)
	}
	return content, nil
}

// fakeDispatcher records sends and fails for scripted recipients.
type fakeDispatcher struct {
	sent    []string // recipients in send order
	bodies  []string
	failFor map[string]bool
}

func (f *fakeDispatcher) Send(ctx context.Context, sender, recipient, subject, htmlBody string) (string, error) {
	if f.failFor[recipient] {
		return "", errors.New("smtp connection refused")
	}
	f.sent = append(f.sent, recipient)
	f.bodies = append(f.bodies, htmlBody)
	return "msg-1", nil
}

// mapResolver resolves recipients from a fixed map.
type mapResolver map[string]string

func (m mapResolver) Email(ctx context.Context, accountID string) (string, error) {
	addr, ok := m[accountID]
	if !ok {
		return "", errors.New("account not registered")
	}
	return addr, nil
}

// fakeTxnStore records persisted batches and can fail.
type fakeTxnStore struct {
	persisted []domain.Transaction
	err       error
}

func (f *fakeTxnStore) PutTransactions(ctx context.Context, txns []domain.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.persisted = append(f.persisted, txns...)
	return nil
}

// fakeRenderer renders a recognizable body without templating.
type fakeRenderer struct{}

func (fakeRenderer) Render(sum domain.AccountSummary) (string, error) {
	return "<p>balance " + sum.TotalBalance.String() + "</p>", nil
}

func newTestPipeline(csv string) (*Pipeline, *fakeDispatcher, *fakeTxnStore) {
	dispatcher := &fakeDispatcher{failFor: map[string]bool{}}
	store := &fakeTxnStore{}
	p := &Pipeline{
		Blob:         &fakeBlob{objects: map[string]string{"uploads/txns.csv": csv}},
		Renderer:     fakeRenderer{},
		Dispatcher:   dispatcher,
		Recipients:   mapResolver{"1": "one@example.com", "2": "two@example.com"},
		Transactions: store,
		Sender:       "noreply@example.com",
		Locale:       monday.LocaleEsES,
	}
	return p, dispatcher, store
}

func TestRun_HappyPath(t *testing.T) {
	csv := csvHeader + "\n1;1;jul-23;10.1\n2;1;jul-23;-8.2\n3;2;aug-1;5.0"
	p, dispatcher, store := newTestPipeline(csv)

	result, err := p.Run(context.Background(), "uploads", "txns.csv")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Accounts != 2 || result.EmailsSent != 2 || result.EmailsFailed != 0 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Persisted != 3 {
		t.Errorf("expected 3 persisted, got %d", result.Persisted)
	}
	if len(store.persisted) != 3 {
		t.Errorf("store received %d transactions", len(store.persisted))
	}
	// Accounts are processed in first-occurrence order.
	if len(dispatcher.sent) != 2 || dispatcher.sent[0] != "one@example.com" || dispatcher.sent[1] != "two@example.com" {
		t.Errorf("unexpected send order: %v", dispatcher.sent)
	}
	if dispatcher.bodies[0] != "<p>balance 1.9</p>" {
		t.Errorf("unexpected rendered body: %q", dispatcher.bodies[0])
	}
}

func TestRun_FetchFailureIsFatal(t *testing.T) {
	p, _, store := newTestPipeline("")
	p.Blob = &fakeBlob{objects: map[string]string{}}

	if _, err := p.Run(context.Background(), "uploads", "missing.csv"); err == nil {
		t.Fatal("expected fetch failure to abort the run")
	}
	if len(store.persisted) != 0 {
		t.Error("nothing must be persisted after a fetch failure")
	}
}

func TestRun_EmptyFileSucceeds(t *testing.T) {
	for _, csv := range []string{"", csvHeader} {
		p, dispatcher, store := newTestPipeline(csv)

		result, err := p.Run(context.Background(), "uploads", "txns.csv")
		if err != nil {
			t.Fatalf("Run(%q) failed: %v", csv, err)
		}
		if result.Accounts != 0 {
			t.Errorf("expected 0 accounts, got %d", result.Accounts)
		}
		if len(dispatcher.sent) != 0 || len(store.persisted) != 0 {
			t.Error("empty input must send and persist nothing")
		}
	}
}

func TestRun_DispatchFailureIsIsolated(t *testing.T) {
	csv := csvHeader + "\n1;1;jul-23;10.1\n2;2;jul-23;5.0\n3;3;jul-23;1.0"
	p, dispatcher, store := newTestPipeline(csv)
	p.Recipients = mapResolver{"1": "one@example.com", "2": "two@example.com", "3": "three@example.com"}
	dispatcher.failFor["two@example.com"] = true

	result, err := p.Run(context.Background(), "uploads", "txns.csv")
	if err != nil {
		t.Fatalf("one failing send must not fail the run: %v", err)
	}

	if result.EmailsSent != 2 || result.EmailsFailed != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	// All transactions still persist, including the failed account's.
	if len(store.persisted) != 3 {
		t.Errorf("expected all 3 transactions persisted, got %d", len(store.persisted))
	}
}

func TestRun_MissingRecipientIsSkipped(t *testing.T) {
	csv := csvHeader + "\n1;1;jul-23;10.1\n2;99;jul-23;5.0"
	p, dispatcher, _ := newTestPipeline(csv)

	result, err := p.Run(context.Background(), "uploads", "txns.csv")
	if err != nil {
		t.Fatalf("unresolved recipient must not fail the run: %v", err)
	}
	if result.EmailsSent != 1 || result.EmailsFailed != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if len(dispatcher.sent) != 1 || dispatcher.sent[0] != "one@example.com" {
		t.Errorf("unexpected sends: %v", dispatcher.sent)
	}
}

func TestRun_NoTransactionStoreSkipsPersistence(t *testing.T) {
	csv := csvHeader + "\n1;1;jul-23;10.1"
	p, _, _ := newTestPipeline(csv)
	p.Transactions = nil

	result, err := p.Run(context.Background(), "uploads", "txns.csv")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Persisted != 0 {
		t.Errorf("expected no persistence, got %d", result.Persisted)
	}
}

func TestRun_PersistFailureSurfaces(t *testing.T) {
	csv := csvHeader + "\n1;1;jul-23;10.1"
	p, dispatcher, store := newTestPipeline(csv)
	store.err = errors.New("batch write throttled")

	result, err := p.Run(context.Background(), "uploads", "txns.csv")
	if err == nil {
		t.Fatal("expected persist failure to surface")
	}
	// Emails already went out; the partial result reports them.
	if result == nil || result.EmailsSent != 1 || len(dispatcher.sent) != 1 {
		t.Errorf("sends before the persist failure must be reported, got %+v", result)
	}
}

func TestRun_SkippedRowsReported(t *testing.T) {
	csv := csvHeader + "\n1;1;13-99;10.1\n2;1;jul-23;5.0"
	p, _, _ := newTestPipeline(csv)

	result, err := p.Run(context.Background(), "uploads", "txns.csv")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.SkippedRows != 1 {
		t.Errorf("expected 1 skipped row, got %d", result.SkippedRows)
	}
}

func TestFixedRecipient(t *testing.T) {
	addr, err := FixedRecipient("fallback@example.com").Email(context.Background(), "any")
	if err != nil {
		t.Fatalf("FixedRecipient failed: %v", err)
	}
	if addr != "fallback@example.com" {
		t.Errorf("unexpected address %q", addr)
	}

	if _, err := FixedRecipient("").Email(context.Background(), "any"); err == nil {
		t.Error("empty fallback must be an error")
	}
}
