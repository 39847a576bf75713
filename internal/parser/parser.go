// Package parser turns raw semicolon-delimited transaction exports into
// typed domain transactions.
//
// The input format is fixed: a header row naming Id, AccountId, Date and
// Transaction (case-sensitive), then one row per transaction. Dates carry no
// year ("Jul-23") and are normalized to the current calendar year. Malformed
// rows are never fatal: they are logged, counted, and skipped.
package parser

import (
	"encoding/csv"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radamanthiss/transaction-api/internal/domain"
)

// Delimiter is the field separator of the transaction export format.
const Delimiter = ';'

// dateLayout matches abbreviated-month-hyphen-day dates such as "Jul-23".
const dateLayout = "Jan-2"

// Column names required in the header row. The match is case-sensitive.
const (
	colID        = "Id"
	colAccountID = "AccountId"
	colDate      = "Date"
	colAmount    = "Transaction"
)

// Result is the outcome of parsing one file: the transactions in input row
// order plus a count of rows that were dropped. The skipped count is a data
// quality signal for the orchestrator; it never fails a run.
type Result struct {
	Transactions []domain.Transaction
	Skipped      int
}

// columns holds the resolved index of each required column.
type columns struct {
	id, accountID, date, amount int
}

// Parse reads raw CSV text into transactions. A leading byte-order mark is
// stripped. Empty and header-only inputs yield an empty result; a header
// missing a required column is an error because no row could ever be mapped.
func Parse(raw string) (*Result, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")

	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}

	result := &Result{Transactions: []domain.Transaction{}}
	if len(records) == 0 {
		return result, nil
	}

	cols, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}

	year := time.Now().Year()
	for i, rec := range records[1:] {
		rowNum := i + 2
		txn, err := parseRow(rec, cols, year)
		if err != nil {
			log.Printf("ERROR: skipping row %d: %v", rowNum, err)
			result.Skipped++
			continue
		}
		result.Transactions = append(result.Transactions, *txn)
	}
	return result, nil
}

// resolveColumns locates the required columns in the header row.
func resolveColumns(header []string) (*columns, error) {
	idx := map[string]int{}
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	cols := &columns{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{colID, &cols.id},
		{colAccountID, &cols.accountID},
		{colDate, &cols.date},
		{colAmount, &cols.amount},
	} {
		i, ok := idx[want.name]
		if !ok {
			return nil, fmt.Errorf("header missing required column %q", want.name)
		}
		*want.dst = i
	}
	return cols, nil
}

// parseRow maps one data row to a transaction.
func parseRow(rec []string, cols *columns, year int) (*domain.Transaction, error) {
	max := cols.id
	for _, c := range []int{cols.accountID, cols.date, cols.amount} {
		if c > max {
			max = c
		}
	}
	if len(rec) <= max {
		return nil, fmt.Errorf("row has %d fields, need at least %d", len(rec), max+1)
	}

	date, err := parseDate(strings.TrimSpace(rec[cols.date]), year)
	if err != nil {
		return nil, err
	}

	amountStr := strings.TrimSpace(rec[cols.amount])
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	return domain.NewTransaction(
		strings.TrimSpace(rec[cols.id]),
		strings.TrimSpace(rec[cols.accountID]),
		date,
		amount,
	)
}

// parseDate parses a "Mon-DD" date, capitalizing the first letter of the
// month token so lowercase exports like "jul-23" still parse. The source
// carries no year, so every date is stamped with the given one.
func parseDate(s string, year int) (time.Time, error) {
	if s != "" {
		s = strings.ToUpper(s[:1]) + s[1:]
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}
