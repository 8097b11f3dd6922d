package reconcile

import (
	"reflect"
	"testing"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

func TestDeduplicate_ContinuationMerge(t *testing.T) {
	in := []domain.Transaction{
		{Date: "01/01/2024", Description: "Transfer", Debit: 0, Credit: 100, Balance: 500},
		{Date: "", Description: "ref 123", Debit: 0, Credit: 0, Balance: 0},
	}

	got := Deduplicate(in)

	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Description != "Transfer ref 123" {
		t.Errorf("description = %q, want %q", got[0].Description, "Transfer ref 123")
	}
	if got[0].Credit != 100 || got[0].Balance != 500 {
		t.Errorf("credit/balance = %v/%v, want 100/500", got[0].Credit, got[0].Balance)
	}
}

func TestDeduplicate_ContinuationBackfill(t *testing.T) {
	in := []domain.Transaction{
		{Date: "01/01/2024", Description: "Cheque 4471", Debit: 0, Credit: 0, Balance: 0},
		{Date: "N/A", Description: "presented", Debit: 250, Credit: 0, Balance: 1250},
	}

	got := Deduplicate(in)

	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Debit != 250 {
		t.Errorf("debit = %v, want 250 (backfilled)", got[0].Debit)
	}
	if got[0].Balance != 1250 {
		t.Errorf("balance = %v, want 1250 (backfilled)", got[0].Balance)
	}
}

func TestDeduplicate_CarryOverDrop(t *testing.T) {
	in := []domain.Transaction{
		{Date: "01/01/2024", Description: "Opening entry", Debit: 0, Credit: 500, Balance: 500},
		{Date: "02/01/2024", Description: "Balance brought forward", Debit: 0, Credit: 0, Balance: 500},
	}

	got := Deduplicate(in)

	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Description != "Opening entry" {
		t.Errorf("kept wrong row: %q", got[0].Description)
	}
}

func TestDeduplicate_ExactRepeatDrop(t *testing.T) {
	row := domain.Transaction{Date: "03/01/2024", Description: "POS Purchase", Debit: 42.5, Credit: 0, Balance: 957.5}
	other := domain.Transaction{Date: "04/01/2024", Description: "Salary", Debit: 0, Credit: 5000, Balance: 5957.5}

	got := Deduplicate([]domain.Transaction{row, other, row})

	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
}

func TestDeduplicate_SequentialRedundancyDrop(t *testing.T) {
	in := []domain.Transaction{
		{Date: "05/01/2024", Description: "ATM Withdrawal", Debit: 200, Credit: 0, Balance: 800},
		// Same movement re-read with a zero balance cell.
		{Date: "05/01/2024", Description: "ATM Withdrawal Dubai Mall", Debit: 200, Credit: 0, Balance: 0},
	}

	got := Deduplicate(in)

	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
}

func TestDeduplicate_DistinctRowsKept(t *testing.T) {
	in := []domain.Transaction{
		{Date: "05/01/2024", Description: "ATM Withdrawal", Debit: 200, Credit: 0, Balance: 800},
		{Date: "05/01/2024", Description: "ATM Withdrawal", Debit: 100, Credit: 0, Balance: 700},
		{Date: "06/01/2024", Description: "Fee", Debit: 5, Credit: 0, Balance: 695},
	}

	got := Deduplicate(in)

	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
}

func TestDeduplicate_Idempotent(t *testing.T) {
	inputs := [][]domain.Transaction{
		{
			{Date: "01/01/2024", Description: "Transfer", Credit: 100, Balance: 500},
			{Date: "", Description: "ref 123"},
			{Date: "02/01/2024", Description: "Balance fwd", Balance: 500},
			{Date: "03/01/2024", Description: "POS", Debit: 42.5, Balance: 457.5},
			{Date: "03/01/2024", Description: "POS", Debit: 42.5, Balance: 457.5},
			{Date: "03/01/2024", Description: "Fee", Debit: 1, Balance: 456.5},
		},
		{},
		{
			{Date: "-", Description: "orphan continuation"},
		},
	}

	for i, in := range inputs {
		once := Deduplicate(in)
		twice := Deduplicate(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("input %d: dedup not idempotent:\nonce:  %+v\ntwice: %+v", i, once, twice)
		}
	}
}
