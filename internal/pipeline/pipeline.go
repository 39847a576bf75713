// Package pipeline orchestrates one transaction-file run: fetch the upload
// from object storage, parse it, aggregate per account, render and dispatch
// the summary emails, and persist the parsed transactions.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/radamanthiss/transaction-api/internal/blob"
	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/email"
	"github.com/radamanthiss/transaction-api/internal/months"
	"github.com/radamanthiss/transaction-api/internal/parser"
	"github.com/radamanthiss/transaction-api/internal/render"
	"github.com/radamanthiss/transaction-api/internal/store"
	"github.com/radamanthiss/transaction-api/internal/summary"
)

// Subject is the summary email subject line.
const Subject = "Your Transaction Summary"

// RecipientResolver resolves the notification address for an account id.
// The live path looks accounts up in the store; the local path returns a
// configured fallback address.
type RecipientResolver interface {
	Email(ctx context.Context, accountID string) (string, error)
}

// FixedRecipient resolves every account to one configured address.
type FixedRecipient string

func (f FixedRecipient) Email(ctx context.Context, accountID string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("no fallback recipient configured")
	}
	return string(f), nil
}

// Pipeline wires the collaborators of one run. Execution-mode differences
// live entirely in how this struct is built: which dispatcher, which
// resolver, and whether a transaction store is present.
type Pipeline struct {
	Blob       blob.Reader
	Renderer   render.Renderer
	Dispatcher email.Dispatcher
	Recipients RecipientResolver

	// Transactions receives the batched persist after all accounts are
	// processed. Nil disables persistence (the local default).
	Transactions store.TransactionStore

	Sender string
	Locale months.Locale
}

// Result reports what one run did.
type Result struct {
	Accounts     int
	EmailsSent   int
	EmailsFailed int
	SkippedRows  int
	Persisted    int
}

// Run processes one uploaded file. Fetch failures and persist failures are
// fatal to the run; everything per-account is best-effort and isolated, so
// one bad account never blocks the others.
func (p *Pipeline) Run(ctx context.Context, bucket, key string) (*Result, error) {
	raw, err := p.Blob.Fetch(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetching upload: %w", err)
	}

	parsed, err := parser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing upload %s/%s: %w", bucket, key, err)
	}
	if parsed.Skipped > 0 {
		log.Printf("skipped %d malformed rows in %s/%s", parsed.Skipped, bucket, key)
	}

	groups, order := domain.GroupByAccount(parsed.Transactions)

	result := &Result{Accounts: len(order), SkippedRows: parsed.Skipped}
	for _, accountID := range order {
		if err := p.processAccount(ctx, accountID, groups[accountID]); err != nil {
			log.Printf("ERROR: account %s: %v", accountID, err)
			result.EmailsFailed++
			continue
		}
		result.EmailsSent++
	}

	if p.Transactions != nil && len(parsed.Transactions) > 0 {
		if err := p.Transactions.PutTransactions(ctx, parsed.Transactions); err != nil {
			return result, fmt.Errorf("persisting %d transactions: %w", len(parsed.Transactions), err)
		}
		result.Persisted = len(parsed.Transactions)
	}
	return result, nil
}

// processAccount runs the summarize -> resolve -> render -> send sequence
// for one account. Any failure is a soft failure for that account only.
func (p *Pipeline) processAccount(ctx context.Context, accountID string, txns []domain.Transaction) error {
	sum := summary.Summarize(txns, p.Locale)

	recipient, err := p.Recipients.Email(ctx, accountID)
	if err != nil {
		return fmt.Errorf("resolving recipient: %w", err)
	}

	body, err := p.Renderer.Render(sum)
	if err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}

	messageID, err := p.Dispatcher.Send(ctx, p.Sender, recipient, Subject, body)
	if err != nil {
		return fmt.Errorf("dispatching summary: %w", err)
	}
	log.Printf("sent summary for account %s to %s (message %s)", accountID, recipient, messageID)
	return nil
}
