package models

import (
	"context"

	"github.com/itehadironstore/steelbooks_backend/utils"
)

// CustomerStatementResponse is the khata view: the customer, their statement
// newest-first, and the closing balance (what they currently owe).
type CustomerStatementResponse struct {
	Customer       Customer         `json:"customer"`
	Statement      *LedgerStatement `json:"statement"`
	CurrentBalance Money            `json:"current_balance"`
}

// DailyCashStatementResponse is the roznamcha view for one store day.
type DailyCashStatementResponse struct {
	Date      DateString       `json:"date"`
	Statement *LedgerStatement `json:"statement"`
	Balance   *DailyBalance    `json:"balance"`
}

// GetCustomerStatement assembles the khata: collect the customer's rows,
// fold from their old-book opening balance, reverse for display. The date
// window only narrows what is shown; the fold always starts at the first
// row so windowed balances stay correct.
func GetCustomerStatement(ctx context.Context, customerId int, fromDate *DateString, toDate *DateString) (*CustomerStatementResponse, error) {
	var cached CustomerStatementResponse
	if hit, err := getCachedCustomerStatement(customerId, fromDate, toDate, &cached); err == nil && hit {
		return &cached, nil
	}

	customer, err := GetCustomerById(ctx, customerId)
	if err != nil {
		return nil, err
	}

	entries, err := GetCustomerLedgerTransactions(ctx, customerId, nil, nil)
	if err != nil {
		return nil, err
	}
	full, err := BuildStatement(entries, customer.OpeningBalance)
	if err != nil {
		return nil, err
	}

	windowed := full
	if fromDate != nil || toDate != nil {
		windowed = &LedgerStatement{OpeningBalance: full.OpeningBalance}
		for _, line := range full.Lines {
			if fromDate != nil && line.TransactionDate.Before(*fromDate) {
				windowed.OpeningBalance = line.RunningBalance
				continue
			}
			if toDate != nil && toDate.Before(line.TransactionDate) {
				continue
			}
			windowed.Lines = append(windowed.Lines, line)
			windowed.TotalDebit = windowed.TotalDebit.Add(line.Debit)
			windowed.TotalCredit = windowed.TotalCredit.Add(line.Credit)
		}
	}

	response := &CustomerStatementResponse{
		Customer:       *customer,
		Statement:      windowed.Reversed(),
		CurrentBalance: full.ClosingBalance(),
	}
	cacheCustomerStatement(customerId, fromDate, toDate, response)
	return response, nil
}

// GetDailyCashStatement assembles the roznamcha for one date: the day's
// cash rows folded from the prior day's closing, newest-first. A cached
// response is served when present; postings invalidate it.
func GetDailyCashStatement(ctx context.Context, date DateString) (*DailyCashStatementResponse, error) {
	var cached DailyCashStatementResponse
	if hit, err := getCachedDailyStatement(date, &cached); err == nil && hit {
		return &cached, nil
	}

	opening, err := OpeningBalanceFor(ctx, date)
	if err != nil {
		return nil, err
	}
	entries, err := GetLedgerTransactionsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	statement, err := BuildDailyCashStatement(entries, opening)
	if err != nil {
		return nil, err
	}

	balance, err := GetDailyBalance(ctx, date)
	if err != nil {
		if !utils.IsRecordNotFound(err) {
			return nil, err
		}
		// Quiet day with no persisted row; derive it from the fold.
		balance, err = ComputeDailyBalance(date, opening, entries)
		if err != nil {
			return nil, err
		}
	}

	response := &DailyCashStatementResponse{
		Date:      date,
		Statement: statement.Reversed(),
		Balance:   balance,
	}
	cacheDailyStatement(date, response)
	return response, nil
}

// GetDateRangeStatement folds every ledger row in [fromDate, toDate] from a
// caller-supplied opening, for period reviews across all counterparties.
func GetDateRangeStatement(ctx context.Context, fromDate DateString, toDate DateString, opening Money) (*LedgerStatement, error) {
	entries, err := GetLedgerTransactionsBetween(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return BuildStatement(entries, opening)
}
