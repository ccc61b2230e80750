package models

import (
	"fmt"
	"sort"
)

// StatementLine couples one ledger row with the running balance after it.
// The balance travels with the line, so reversing a statement for display
// never recomputes anything.
type StatementLine struct {
	LedgerTransaction
	RunningBalance Money `json:"running_balance"`
}

// LedgerStatement is a computed view. It is never persisted; callers
// rebuild it from the transaction store whenever they need it.
type LedgerStatement struct {
	OpeningBalance Money           `json:"opening_balance"`
	Lines          []StatementLine `json:"lines"`
	TotalDebit     Money           `json:"total_debit"`
	TotalCredit    Money           `json:"total_credit"`
}

func (s *LedgerStatement) ClosingBalance() Money {
	if len(s.Lines) == 0 {
		return s.OpeningBalance
	}
	return s.Lines[len(s.Lines)-1].RunningBalance
}

// Reversed returns a newest-first copy for display. Running balances are
// carried over untouched.
func (s *LedgerStatement) Reversed() *LedgerStatement {
	reversed := &LedgerStatement{
		OpeningBalance: s.OpeningBalance,
		TotalDebit:     s.TotalDebit,
		TotalCredit:    s.TotalCredit,
		Lines:          make([]StatementLine, len(s.Lines)),
	}
	for i, line := range s.Lines {
		reversed.Lines[len(s.Lines)-1-i] = line
	}
	return reversed
}

// BuildStatement orders an unordered snapshot of ledger rows and folds the
// running balance: sort stable ascending on (datetime, id), then
// running[i] = running[i-1] + debit - credit, seeded with opening.
//
// The input slice is not modified. A transaction id appearing twice is a
// hard ErrDuplicateEntry; the upstream defect that used to be papered over
// by deduplicating must surface.
func BuildStatement(entries []LedgerTransaction, opening Money) (*LedgerStatement, error) {
	ordered := make([]LedgerTransaction, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := ordered[i].TransactionDateTime, ordered[j].TransactionDateTime
		if ti.Equal(tj) {
			return ordered[i].ID < ordered[j].ID
		}
		return ti.Before(tj)
	})

	statement := &LedgerStatement{
		OpeningBalance: opening,
		Lines:          make([]StatementLine, 0, len(ordered)),
	}
	seen := make(map[int]bool, len(ordered))
	running := opening
	for _, entry := range ordered {
		if seen[entry.ID] {
			return nil, fmt.Errorf("%w: id=%d ref=%s", ErrDuplicateEntry, entry.ID, entry.ReferenceNumber)
		}
		seen[entry.ID] = true

		running = running.Add(entry.Debit).Sub(entry.Credit)
		statement.TotalDebit = statement.TotalDebit.Add(entry.Debit)
		statement.TotalCredit = statement.TotalCredit.Add(entry.Credit)
		statement.Lines = append(statement.Lines, StatementLine{
			LedgerTransaction: entry,
			RunningBalance:    running,
		})
	}
	return statement, nil
}

// BuildDailyCashStatement folds only actual cash movements, re-oriented to
// the cash box by CashView. Invoice rows are receivables and stay out of
// the roznamcha even though they hit the customer khata; a payment shows up
// in both, as a khata credit there and as incoming cash here.
func BuildDailyCashStatement(entries []LedgerTransaction, opening Money) (*LedgerStatement, error) {
	cash := make([]LedgerTransaction, 0, len(entries))
	for _, entry := range entries {
		if view, ok := entry.CashView(); ok {
			cash = append(cash, view)
		}
	}
	return BuildStatement(cash, opening)
}
