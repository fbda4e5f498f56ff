package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

func formatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}

// WriteProjectSummaryCSV serialises per-project figures to CSV.
func WriteProjectSummaryCSV(w io.Writer, summaries []ProjectSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Project", "Units", "Sold", "Contract Value", "Collected", "Outstanding", "Overdue Obligations"}); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			s.ProjectName,
			fmt.Sprintf("%d", s.TotalUnits),
			fmt.Sprintf("%d", s.SoldUnits),
			formatMoney(s.ContractedV),
			formatMoney(s.Collected),
			formatMoney(s.Outstanding),
			fmt.Sprintf("%d", s.OverdueCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCollectionCSV serialises the collection report to CSV.
func WriteCollectionCSV(w io.Writer, report CollectionReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Sale", "Project", "Block", "Customer", "Description", "Paid", "Paid Date", "Method"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{
			fmt.Sprintf("%d", row.SaleID),
			row.ProjectName,
			row.BlockNumber,
			row.CustomerName,
			row.Description,
			formatMoney(row.PaidAmount),
			row.PaidDate.Format("2006-01-02"),
			row.PaymentMethod,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"Total", "", "", "", "", formatMoney(report.Total), "", ""}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteOverdueCSV serialises the overdue report to CSV.
func WriteOverdueCSV(w io.Writer, report OverdueReport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Sale", "Project", "Block", "Customer", "Description", "Remaining", "Due Date", "Days Overdue", "Bucket"}); err != nil {
		return err
	}
	for _, row := range report.Rows {
		record := []string{
			fmt.Sprintf("%d", row.SaleID),
			row.ProjectName,
			row.BlockNumber,
			row.CustomerName,
			row.Description,
			formatMoney(row.Remaining),
			row.DueDate.Format("2006-01-02"),
			fmt.Sprintf("%d", row.DaysOverdue),
			row.Bucket,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardXLSX renders the full dashboard as a workbook with one sheet
// per report.
func WriteDashboardXLSX(w io.Writer, dashboard Dashboard) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const projectsSheet = "Projects"
	f.SetSheetName("Sheet1", projectsSheet)
	headers := []any{"Project", "Units", "Sold", "Contract Value", "Collected", "Outstanding", "Overdue Obligations"}
	if err := f.SetSheetRow(projectsSheet, "A1", &headers); err != nil {
		return err
	}
	for i, s := range dashboard.Projects {
		row := []any{s.ProjectName, s.TotalUnits, s.SoldUnits, s.ContractedV, s.Collected, s.Outstanding, s.OverdueCount}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(projectsSheet, cell, &row); err != nil {
			return err
		}
	}

	const collectionSheet = "Collections"
	if _, err := f.NewSheet(collectionSheet); err != nil {
		return err
	}
	headers = []any{"Sale", "Project", "Block", "Customer", "Description", "Paid", "Paid Date", "Method"}
	if err := f.SetSheetRow(collectionSheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range dashboard.Collection.Rows {
		values := []any{row.SaleID, row.ProjectName, row.BlockNumber, row.CustomerName,
			row.Description, row.PaidAmount, row.PaidDate.Format("2006-01-02"), row.PaymentMethod}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(collectionSheet, cell, &values); err != nil {
			return err
		}
	}

	const overdueSheet = "Overdue"
	if _, err := f.NewSheet(overdueSheet); err != nil {
		return err
	}
	headers = []any{"Sale", "Project", "Block", "Customer", "Description", "Remaining", "Due Date", "Days Overdue", "Bucket"}
	if err := f.SetSheetRow(overdueSheet, "A1", &headers); err != nil {
		return err
	}
	for i, row := range dashboard.Overdue.Rows {
		values := []any{row.SaleID, row.ProjectName, row.BlockNumber, row.CustomerName,
			row.Description, row.Remaining, row.DueDate.Format("2006-01-02"), row.DaysOverdue, row.Bucket}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(overdueSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// ReportFileName builds an export file name stamped with the given day.
func ReportFileName(prefix string, at time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, at.Format("2006-01-02"), ext)
}
