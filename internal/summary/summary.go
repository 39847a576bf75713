// Package summary computes per-account aggregates from parsed transactions.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/months"
)

// Summarize aggregates the transactions of a single account: exact total
// balance, mean credit and mean debit (zero when the partition is empty),
// and per-month transaction counts with month names rendered in loc.
//
// Pure function: no I/O, deterministic for a given input sequence. Month
// entries appear in first-occurrence order of the input.
func Summarize(txns []domain.Transaction, loc months.Locale) domain.AccountSummary {
	total := decimal.Zero
	creditSum, debitSum := decimal.Zero, decimal.Zero
	creditN, debitN := 0, 0

	var monthly []domain.MonthCount
	monthIdx := make(map[string]int)

	for _, txn := range txns {
		total = total.Add(txn.Amount)

		switch {
		case txn.IsCredit():
			creditSum = creditSum.Add(txn.Amount)
			creditN++
		case txn.IsDebit():
			debitSum = debitSum.Add(txn.Amount)
			debitN++
		}

		name := months.Name(txn.Date, loc)
		if i, ok := monthIdx[name]; ok {
			monthly[i].Count++
		} else {
			monthIdx[name] = len(monthly)
			monthly = append(monthly, domain.MonthCount{Month: name, Count: 1})
		}
	}

	return domain.AccountSummary{
		TotalBalance:  total,
		AverageCredit: mean(creditSum, creditN),
		AverageDebit:  mean(debitSum, debitN),
		Monthly:       monthly,
	}
}

// mean returns sum/n, or zero for an empty partition.
func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}
