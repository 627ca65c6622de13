package corebank

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// writeStatement renders the account's ledger entries as a PDF table.
func writeStatement(w io.Writer, acct *Account, entries []Entry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Account statement %d", acct.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Balance: %s", acct.Balance.String()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, "Counterparty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, "Bank", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, e := range entries {
		counter := ""
		if e.Counterparty != 0 {
			counter = fmt.Sprintf("%d", e.Counterparty)
		}
		pdf.CellFormat(40, 7, e.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, e.Typ, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, e.Amount.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, counter, "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, e.BankName, "1", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}
