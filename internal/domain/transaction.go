package domain

// Page is one page of a source document as handed to the extraction
// pipeline: raw bytes plus the MIME type the model should be told about.
type Page struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Transaction is one ledger row recovered from a bank statement.
// Amounts are kept as extracted; Balance is rewritten by the balance
// reconstruction pass, which treats its computed value as authoritative.
type Transaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Debit       float64 `json:"debit"`
	Credit      float64 `json:"credit"`
	Balance     float64 `json:"balance"`
	Confidence  float64 `json:"confidence"`
	SourceFile  string  `json:"sourceFile,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// BankStatementSummary holds the header-level figures of a statement.
// It is seeded from the first page that yields one, refined (closing
// balance only) by later pages, and finally overwritten by the
// reconstruction pass where the extracted figures disagree.
type BankStatementSummary struct {
	AccountHolder    string  `json:"accountHolder"`
	AccountNumber    string  `json:"accountNumber"`
	StatementPeriod  string  `json:"statementPeriod"`
	OpeningBalance   float64 `json:"openingBalance"`
	ClosingBalance   float64 `json:"closingBalance"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`
	TotalDeposits    float64 `json:"totalDeposits"`
}

// ColumnMapping maps semantic fields to 0-based table column indices.
type ColumnMapping struct {
	Date        int `json:"date"`
	Description int `json:"description"`
	Debit       int `json:"debit"`
	Credit      int `json:"credit"`
	Balance     int `json:"balance"`
}

// StatementLayout is the structural description inferred from the first
// page of a statement. It is a read-only hint: every downstream stage
// must also work with a nil layout.
type StatementLayout struct {
	ColumnMapping          ColumnMapping `json:"columnMapping"`
	HasSeparateDebitCredit bool          `json:"hasSeparateDebitCredit"`
	Currency               string        `json:"currency"`
	BankName               string        `json:"bankName"`
	DateFormat             string        `json:"dateFormat"`
}

// StatementResult is the contract surface consumed by presentation-layer
// collaborators for a processed statement batch.
type StatementResult struct {
	Transactions []Transaction        `json:"transactions"`
	Summary      BankStatementSummary `json:"summary"`
	Currency     string               `json:"currency"`
}
