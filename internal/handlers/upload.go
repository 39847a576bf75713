package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/pipeline"
)

// bodyProcessed is the success body of the upload-triggered entry point.
const bodyProcessed = "Successfully processed transactions and sent summary email."

// UploadEvent is the S3 upload notification, extended with the execution
// mode flag the caller may set. An empty mode means prod.
type UploadEvent struct {
	events.S3Event
	RunningType domain.Mode `json:"running_type,omitempty"`
}

// Response is the upload entry point's result shape.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// PipelineFactory builds the pipeline for an execution mode. The mode flag
// is resolved exactly once, here; no component below re-reads it.
type PipelineFactory func(ctx context.Context, mode domain.Mode) (*pipeline.Pipeline, error)

// UploadHandler serves the upload-triggered pipeline entry point.
type UploadHandler struct {
	pipelines PipelineFactory
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(factory PipelineFactory) *UploadHandler {
	return &UploadHandler{pipelines: factory}
}

// Handle processes every record of the upload event. Fetch and persist
// failures are fatal: the error propagates and the invocation fails. There
// is deliberately no non-200 response path.
func (h *UploadHandler) Handle(ctx context.Context, event UploadEvent) (Response, error) {
	mode := event.RunningType
	if mode == "" {
		mode = domain.ModeProd
	}
	if !domain.ValidateMode(mode) {
		return Response{}, fmt.Errorf("unknown running type %q", mode)
	}

	p, err := h.pipelines(ctx, mode)
	if err != nil {
		return Response{}, fmt.Errorf("building %s pipeline: %w", mode, err)
	}

	for _, record := range event.Records {
		bucket := record.S3.Bucket.Name
		key := record.S3.Object.Key

		result, err := p.Run(ctx, bucket, key)
		if err != nil {
			return Response{}, fmt.Errorf("processing %s/%s: %w", bucket, key, err)
		}
		log.Printf("processed %s/%s: %d accounts, %d sent, %d send failures, %d rows skipped, %d persisted",
			bucket, key, result.Accounts, result.EmailsSent, result.EmailsFailed,
			result.SkippedRows, result.Persisted)
	}

	return Response{StatusCode: http.StatusOK, Body: bodyProcessed}, nil
}
