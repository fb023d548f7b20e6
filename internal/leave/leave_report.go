package leave

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// WriteHistoryReport renders an employee's leave history as an A4 PDF.
func WriteHistoryReport(w io.Writer, hist EmployeeHistoryResponse, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Leave history "+hist.Employee.EmployeeNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Leave History")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", hist.Employee.FullName, hist.Employee.EmployeeNumber))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Department: %s / %s", hist.Employee.Department, hist.Employee.Position))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Current balance: %.1f day(s)", hist.Employee.LeaveBalance))
	pdf.Ln(6)
	pdf.Cell(0, 7, "Generated: "+generatedAt.UTC().Format(time.RFC1123))
	pdf.Ln(10)

	widths := []float64{25, 25, 28, 16, 24, 22, 50}
	headers := []string{"Start", "End", "Type", "Days", "Status", "Balance", "Note"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(hist.Leaves) == 0 {
		pdf.CellFormat(sum(widths), 8, "No leave requests", "1", 1, "C", false, 0, "")
	}
	for _, lr := range hist.Leaves {
		note := ""
		if lr.RejectionReason != nil {
			note = *lr.RejectionReason
		}
		if lr.DeletedAt != nil {
			note = "deleted " + (*lr.DeletedAt)[:10]
		}
		row := []string{
			lr.StartDate,
			lr.EndDate,
			lr.TypeOfLeave,
			fmt.Sprintf("%.1f", lr.DaysRequested),
			lr.Status,
			fmt.Sprintf("%.1f", lr.RemainingCredits),
			truncate(note, 32),
		}
		for i, v := range row {
			align := "L"
			if i == 3 || i == 5 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func sum(vs []float64) float64 {
	var t float64
	for _, v := range vs {
		t += v
	}
	return t
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
