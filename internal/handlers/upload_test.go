package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goodsign/monday"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/pipeline"
)

type stubBlob map[string]string

func (s stubBlob) Fetch(ctx context.Context, bucket, key string) (string, error) {
	content, ok := s[bucket+"/"+key]
	if !ok {
		return "", errors.New("no such object")
	}
	return content, nil
}

type stubDispatcher struct{ sent int }

func (s *stubDispatcher) Send(ctx context.Context, sender, recipient, subject, htmlBody string) (string, error) {
	s.sent++
	return "msg", nil
}

type stubRenderer struct{}

func (stubRenderer) Render(sum domain.AccountSummary) (string, error) { return "<html/>", nil }

func uploadEvent(mode domain.Mode, bucket, key string) UploadEvent {
	return UploadEvent{
		S3Event: events.S3Event{
			Records: []events.S3EventRecord{{
				S3: events.S3Entity{
					Bucket: events.S3Bucket{Name: bucket},
					Object: events.S3Object{Key: key},
				},
			}},
		},
		RunningType: mode,
	}
}

func testFactory(objects stubBlob, dispatcher *stubDispatcher) PipelineFactory {
	return func(ctx context.Context, mode domain.Mode) (*pipeline.Pipeline, error) {
		return &pipeline.Pipeline{
			Blob:       objects,
			Renderer:   stubRenderer{},
			Dispatcher: dispatcher,
			Recipients: pipeline.FixedRecipient("fallback@example.com"),
			Sender:     "noreply@example.com",
			Locale:     monday.LocaleEsES,
		}, nil
	}
}

func TestUploadHandler_Success(t *testing.T) {
	objects := stubBlob{"uploads/txns.csv": "Id;AccountId;Date;Transaction\n1;1;jul-23;10.1"}
	dispatcher := &stubDispatcher{}
	h := NewUploadHandler(testFactory(objects, dispatcher))

	resp, err := h.Handle(context.Background(), uploadEvent("", "uploads", "txns.csv"))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Body != "Successfully processed transactions and sent summary email." {
		t.Errorf("unexpected body: %q", resp.Body)
	}
	if dispatcher.sent != 1 {
		t.Errorf("expected 1 email sent, got %d", dispatcher.sent)
	}
}

func TestUploadHandler_FetchFailurePropagates(t *testing.T) {
	h := NewUploadHandler(testFactory(stubBlob{}, &stubDispatcher{}))

	if _, err := h.Handle(context.Background(), uploadEvent(domain.ModeProd, "uploads", "missing.csv")); err == nil {
		t.Fatal("expected fetch failure to propagate as an invocation error")
	}
}

func TestUploadHandler_UnknownMode(t *testing.T) {
	h := NewUploadHandler(testFactory(stubBlob{}, &stubDispatcher{}))

	if _, err := h.Handle(context.Background(), uploadEvent("staging", "b", "k")); err == nil {
		t.Fatal("expected unknown running type to be rejected")
	}
}

func TestUploadHandler_FactoryError(t *testing.T) {
	h := NewUploadHandler(func(ctx context.Context, mode domain.Mode) (*pipeline.Pipeline, error) {
		return nil, fmt.Errorf("no config for %s", mode)
	})

	if _, err := h.Handle(context.Background(), uploadEvent(domain.ModeLocal, "b", "k")); err == nil {
		t.Fatal("expected factory error to propagate")
	}
}

func TestUploadHandler_MultipleRecords(t *testing.T) {
	objects := stubBlob{
		"uploads/a.csv": "Id;AccountId;Date;Transaction\n1;1;jul-23;10.1",
		"uploads/b.csv": "Id;AccountId;Date;Transaction\n2;2;aug-1;-3.0",
	}
	dispatcher := &stubDispatcher{}
	h := NewUploadHandler(testFactory(objects, dispatcher))

	event := uploadEvent(domain.ModeProd, "uploads", "a.csv")
	event.Records = append(event.Records, uploadEvent(domain.ModeProd, "uploads", "b.csv").Records...)

	resp, err := h.Handle(context.Background(), event)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK || dispatcher.sent != 2 {
		t.Errorf("expected both records processed, got status %d, %d sends", resp.StatusCode, dispatcher.sent)
	}
}
