// Package render writes reconciliation reports to presentation formats for
// downstream consumers. The engine itself only produces the report struct;
// rendering is a collaborator concern.
package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

const headerColor = "1F4E78"

// WriteWorkbook writes the full report as a multi-sheet Excel workbook.
func WriteWorkbook(report *domain.ReconciliationReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummarySheet(f, report, headerStyle); err != nil {
		return err
	}
	if report.Card != nil {
		if err := writeCardSheet(f, report.Card, headerStyle); err != nil {
			return err
		}
	}
	if len(report.Overview) > 0 {
		if err := writeOverviewSheet(f, report.Overview, headerStyle); err != nil {
			return err
		}
	}
	if err := writeMatchSheet(f, report.Matches, headerStyle); err != nil {
		return err
	}
	if len(report.Diagnostics) > 0 {
		if err := writeDiagnosticsSheet(f, report.Diagnostics, headerStyle); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *domain.ReconciliationReport, style int) error {
	const sheet = "Summary"
	f.SetSheetName("Sheet1", sheet)
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Amount Reconciled", report.Summary.AmountReconciledPct.Display()},
		{"Fee Reconciled", report.Summary.FeeReconciledPct.Display()},
		{"Items Reconciled", fmt.Sprintf("%d/%d", report.Summary.MatchedItems, report.Summary.TotalInvoiceItems)},
		{"Amount Match Percentage", report.Summary.MatchPct.Display()},
		{"Calculated Total (INR)", report.Summary.CalculatedTotal.StringFixed(2)},
		{"Invoice Total (INR)", report.Summary.InvoiceTotal.StringFixed(2)},
		{"Total Fee Mappings", report.Summary.TotalFeeMappings},
		{"Total Invoice Items", report.Summary.TotalInvoiceItems},
		{"Total Calculated Items", report.Summary.TotalCalculatedItems},
		{"Exact Match Items", report.Summary.ExactMatchItems},
		{"Run State", string(report.State)},
		{"Degraded", report.Degraded},
	}
	return writeSheet(f, sheet, rows, style)
}

func writeCardSheet(f *excelize.File, card *domain.CardSummary, style int) error {
	const sheet = "Card Issuance"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Period", "Cards Issued"}}
	for _, entry := range card.Monthly {
		rows = append(rows, []interface{}{entry.Period, entry.Cards})
	}
	rows = append(rows, []interface{}{"Total", card.TotalCards})
	return writeSheet(f, sheet, rows, style)
}

func writeOverviewSheet(f *excelize.File, overview []domain.CategoryOverview, style int) error {
	const sheet = "Transaction Overview"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Category", "Amount", "Volume", "Calculated Total (INR)"}}
	for _, entry := range overview {
		rows = append(rows, []interface{}{
			entry.Category.String(),
			entry.Amount.StringFixed(2),
			entry.Volume,
			entry.CalculatedTotal.StringFixed(2),
		})
	}
	return writeSheet(f, sheet, rows, style)
}

func writeMatchSheet(f *excelize.File, matches []domain.MatchResult, style int) error {
	const sheet = "Match Detail"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{
		"Fee Type", "Rule", "Calculated (INR)", "Invoice Description", "Invoice (INR)",
		"Score", "Percentage Difference", "Status",
	}}
	for _, m := range matches {
		feeType, rule, calcAmount := "", "", ""
		if m.Calculated != nil {
			feeType = m.Calculated.FeeType
			rule = m.Calculated.RuleID
			calcAmount = m.Calculated.Amount.StringFixed(2)
		}
		invDesc, invAmount := "", ""
		if m.Invoice != nil {
			invDesc = m.Invoice.Description
			invAmount = m.Invoice.Amount.StringFixed(2)
		}
		rows = append(rows, []interface{}{
			feeType, rule, calcAmount, invDesc, invAmount,
			fmt.Sprintf("%.4f", m.Score), m.PercentDiff.Display(), string(m.Status),
		})
	}
	return writeSheet(f, sheet, rows, style)
}

func writeDiagnosticsSheet(f *excelize.File, diags []domain.Diagnostic, style int) error {
	const sheet = "Diagnostics"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
	}
	rows := [][]interface{}{{"Kind", "Category", "Message"}}
	for _, d := range diags {
		rows = append(rows, []interface{}{d.Kind, d.Category.String(), d.Message})
	}
	return writeSheet(f, sheet, rows, style)
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("bad cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return fmt.Errorf("bad cell coordinates: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	return nil
}
