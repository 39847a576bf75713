// Lambda entry point for the upload-triggered transaction pipeline.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"github.com/radamanthiss/transaction-api/internal/blob"
	"github.com/radamanthiss/transaction-api/internal/config"
	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/email"
	"github.com/radamanthiss/transaction-api/internal/handlers"
	"github.com/radamanthiss/transaction-api/internal/months"
	"github.com/radamanthiss/transaction-api/internal/pipeline"
	"github.com/radamanthiss/transaction-api/internal/registrar"
	"github.com/radamanthiss/transaction-api/internal/render"
	"github.com/radamanthiss/transaction-api/internal/store/dynamo"
)

func main() {
	lambda.Start(handlers.NewUploadHandler(buildPipeline).Handle)
}

// buildPipeline assembles the pipeline for the requested execution mode.
// This is the single place the mode flag is interpreted.
func buildPipeline(ctx context.Context, mode domain.Mode) (*pipeline.Pipeline, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	locale, err := months.Resolve(cfg.Locale)
	if err != nil {
		return nil, err
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	p := &pipeline.Pipeline{
		Blob:     blob.NewS3Reader(s3.NewFromConfig(awsCfg)),
		Renderer: renderer,
		Sender:   cfg.SenderEmail,
		Locale:   locale,
	}

	switch mode {
	case domain.ModeProd:
		store := dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.AccountsTable, cfg.TransactionsTable)
		p.Dispatcher = email.NewSESDispatcher(ses.NewFromConfig(awsCfg))
		p.Recipients = registrar.New(store)
		p.Transactions = store
	case domain.ModeLocal:
		p.Dispatcher = email.NewSMTPDispatcher(cfg.SMTP.Email())
		p.Recipients = pipeline.FixedRecipient(cfg.FallbackRecipient)
	}

	log.Printf("pipeline configured for %s mode", mode)
	return p, nil
}
