package render

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

// BatchResult is the outcome of processing one transaction folder.
type BatchResult struct {
	Name   string
	Report *domain.ReconciliationReport
	Err    error
}

// WritePDF writes a batch summary PDF: one page of totals followed by a
// metric table per transaction.
func WritePDF(results []BatchResult, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Batch Reconciliation Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, "Batch Reconciliation Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 10, "Executive Summary", "", 1, "L", false, 0, "")
	writePDFRow(pdf, "Total Transactions", fmt.Sprintf("%d", len(results)), true)
	writePDFRow(pdf, "Successful", fmt.Sprintf("%d", succeeded), false)
	writePDFRow(pdf, "Failed", fmt.Sprintf("%d", failed), false)
	pdf.Ln(6)

	for _, r := range results {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 9, fmt.Sprintf("Transaction: %s", r.Name), "", 1, "L", false, 0, "")

		if r.Err != nil {
			pdf.SetFont("Arial", "", 10)
			pdf.SetTextColor(200, 0, 0)
			pdf.CellFormat(0, 7, fmt.Sprintf("FAILED: %v", r.Err), "", 1, "L", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(3)
			continue
		}

		summary := r.Report.Summary
		writePDFRow(pdf, "Metric", "Value", true)
		writePDFRow(pdf, "Amount Reconciled", summary.AmountReconciledPct.Display(), false)
		writePDFRow(pdf, "Fee Reconciled", summary.FeeReconciledPct.Display(), false)
		writePDFRow(pdf, "Items Reconciled", fmt.Sprintf("%d/%d", summary.MatchedItems, summary.TotalInvoiceItems), false)
		writePDFRow(pdf, "Amount Match %", summary.MatchPct.Display(), false)
		writePDFRow(pdf, "Calculated Total (INR)", summary.CalculatedTotal.StringFixed(2), false)
		writePDFRow(pdf, "Invoice Total (INR)", summary.InvoiceTotal.StringFixed(2), false)
		writePDFRow(pdf, "Fee Mappings", fmt.Sprintf("%d", summary.TotalFeeMappings), false)
		if r.Report.Degraded {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 6, "Run degraded: see report diagnostics", "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF %s: %w", path, err)
	}
	return nil
}

func writePDFRow(pdf *gofpdf.Fpdf, label, value string, header bool) {
	if header {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(31, 78, 120)
		pdf.SetTextColor(255, 255, 255)
	} else {
		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.CellFormat(80, 7, label, "1", 0, "L", true, 0, "")
	pdf.CellFormat(60, 7, value, "1", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
