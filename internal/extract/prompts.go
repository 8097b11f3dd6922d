package extract

import (
	"fmt"
	"strings"

	"github.com/tech6-code/DocuFlow-AI-sub001/internal/domain"
)

const layoutPrompt = "You are a bank statement structure analyst.\n\n" +
	"Look at the attached statement page and describe the layout of its transaction table.\n\n" +
	"Return ONLY a JSON object with this exact structure, no markdown fences:\n" +
	"{\n" +
	"  \"columnMapping\": {\"date\": 0, \"description\": 1, \"debit\": 2, \"credit\": 3, \"balance\": 4},\n" +
	"  \"hasSeparateDebitCredit\": true,\n" +
	"  \"currency\": \"AED\",\n" +
	"  \"bankName\": \"Example Bank\",\n" +
	"  \"dateFormat\": \"DD/MM/YYYY\"\n" +
	"}\n\n" +
	"Rules:\n" +
	"- columnMapping holds zero-based column indexes; use -1 for a column the table does not have.\n" +
	"- hasSeparateDebitCredit is false when withdrawals and deposits share one signed amount column.\n" +
	"- currency is the ISO 4217 code if printed, otherwise the symbol or label as shown.\n" +
	"- dateFormat describes the dates as printed, e.g. DD/MM/YYYY or \"DD Mon YYYY\".\n"

const rawTableFallbackPrompt = "Transcribe the transaction table printed on the attached bank statement page.\n\n" +
	"Return ONLY a JSON object, no markdown fences:\n" +
	"{\"summary\": null, \"markdownTable\": \"| Date | Description | Debit | Credit | Balance |\\n|---|---|---|---|---|\\n| ... |\"}\n\n" +
	"Copy every row exactly as printed, one table row per statement line. " +
	"If the page has no transaction rows, return {\"summary\": null, \"markdownTable\": \"\"}.\n"

// rawTablePrompt builds the per-page transcription prompt, embedding the
// discovered layout so the model maps columns consistently across pages.
func rawTablePrompt(layout *domain.StatementLayout) string {
	var b strings.Builder

	b.WriteString("You are a bank statement transcription engine.\n\n")
	b.WriteString("Transcribe the attached statement page into a markdown table, copying rows verbatim.\n\n")

	if layout != nil {
		b.WriteString("Known layout of this statement:\n")
		if layout.BankName != "" {
			fmt.Fprintf(&b, "- Bank: %s\n", layout.BankName)
		}
		if layout.DateFormat != "" {
			fmt.Fprintf(&b, "- Date format: %s\n", layout.DateFormat)
		}
		if layout.Currency != "" {
			fmt.Fprintf(&b, "- Currency: %s\n", layout.Currency)
		}
		if layout.HasSeparateDebitCredit {
			b.WriteString("- Withdrawals and deposits are in separate columns.\n")
		} else {
			b.WriteString("- A single signed amount column holds both withdrawals and deposits.\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Return ONLY a JSON object, no markdown fences:\n")
	b.WriteString("{\n")
	b.WriteString("  \"summary\": {\n")
	b.WriteString("    \"accountHolder\": \"\",\n")
	b.WriteString("    \"accountNumber\": \"\",\n")
	b.WriteString("    \"statementPeriod\": \"\",\n")
	b.WriteString("    \"openingBalance\": 0,\n")
	b.WriteString("    \"closingBalance\": 0,\n")
	b.WriteString("    \"currency\": \"\"\n")
	b.WriteString("  },\n")
	b.WriteString("  \"markdownTable\": \"| Date | Description | Debit | Credit | Balance |\\n|---|---|---|---|---|\\n| ... |\"\n")
	b.WriteString("}\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Fill summary only from values printed on THIS page; set it to null when the page shows none.\n")
	b.WriteString("- Keep continuation lines (rows without a date) as their own table rows with an empty date cell.\n")
	b.WriteString("- Do not compute, reorder or deduplicate anything; transcribe what is printed.\n")
	b.WriteString("- If the page has no transaction rows, set markdownTable to \"\".\n")

	return b.String()
}

// harmonizePrompt builds the instruction for the single consolidation call
// over all page fragments.
func harmonizePrompt(layout *domain.StatementLayout) string {
	var b strings.Builder

	b.WriteString("You are a bank statement harmonizer.\n\n")
	b.WriteString("Below are raw transaction table fragments transcribed from consecutive pages of one statement, separated by PAGE BREAK markers. ")
	b.WriteString("Merge them into a single clean list of transactions.\n\n")

	if layout != nil && layout.DateFormat != "" {
		fmt.Fprintf(&b, "Dates in the fragments use the format %s.\n\n", layout.DateFormat)
	}

	b.WriteString("Return ONLY a JSON array, no markdown fences:\n")
	b.WriteString("[{\"date\": \"DD/MM/YYYY\", \"description\": \"\", \"debit\": \"0.00\", \"credit\": \"0.00\", \"balance\": \"0.00\", \"confidence\": 0.95}]\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Keep transactions in statement order.\n")
	b.WriteString("- debit and credit are always non-negative; a signed amount column maps negatives to debit and positives to credit.\n")
	b.WriteString("- Copy amounts as printed (commas allowed); use \"0\" for an empty cell.\n")
	b.WriteString("- Keep rows without a date as separate entries with the date cell copied as-is.\n")
	b.WriteString("- Skip header, footer and column-title rows.\n")
	b.WriteString("- confidence is your 0..1 estimate that the row is transcribed correctly.\n\n")
	b.WriteString("Fragments:\n\n")

	return b.String()
}

// invoicePrompt asks for every invoice found in the attached document.
const invoicePrompt = "You are an invoice data extraction engine.\n\n" +
	"Extract every invoice from the attached document. A document may contain more than one invoice.\n\n" +
	"Return ONLY a JSON array, no markdown fences:\n" +
	"[{\n" +
	"  \"invoiceId\": \"\",\n" +
	"  \"vendorName\": \"\",\n" +
	"  \"customerName\": \"\",\n" +
	"  \"invoiceDate\": \"\",\n" +
	"  \"dueDate\": \"\",\n" +
	"  \"currency\": \"\",\n" +
	"  \"totalBeforeTax\": \"0.00\",\n" +
	"  \"totalAfterTax\": \"0.00\",\n" +
	"  \"vendorTrn\": \"\",\n" +
	"  \"customerTrn\": \"\",\n" +
	"  \"confidence\": 0.95,\n" +
	"  \"lineItems\": [{\"description\": \"\", \"quantity\": \"1\", \"unitPrice\": \"0.00\", \"subtotal\": \"0.00\", \"taxRate\": \"0.05\", \"taxAmount\": \"0.00\", \"total\": \"0.00\"}]\n" +
	"}]\n\n" +
	"Rules:\n" +
	"- Copy identifiers, names and tax registration numbers exactly as printed.\n" +
	"- currency is the ISO 4217 code if printed, otherwise the symbol or label as shown.\n" +
	"- Amounts are copied as printed; leave \"0\" when a value is not shown.\n" +
	"- Return [] if the document contains no invoice.\n"
