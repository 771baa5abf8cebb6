// Package export writes application listings as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hiway-api/internal/model"
)

const (
	ApplicationsSheet = "Applications"
	SummarySheet      = "Summary"
	ContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"Applicant", "Email", "Phone", "Position", "Company", "Status",
	"Applied", "Match Confidence", "Experience", "Skills", "Resume",
}

// Filename is the download name for an export generated at t.
func Filename(t time.Time) string {
	return "applications-" + t.Format("20060102-150405") + ".xlsx"
}

// Applications writes one row per application plus a status summary sheet.
func Applications(w io.Writer, apps []model.ApplicationView, generated time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", ApplicationsSheet)
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}

	if err := writeApplications(f, apps); err != nil {
		return fmt.Errorf("applications sheet: %w", err)
	}
	if err := writeSummary(f, apps, generated); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	return f.Write(w)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func writeApplications(f *excelize.File, apps []model.ApplicationView) error {
	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ApplicationsSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(ApplicationsSheet, "A1", last, hs)

	linkStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	})

	for i, a := range apps {
		row := i + 2
		vals := []any{
			a.Applicant.Name,
			a.Applicant.Email,
			a.Applicant.Phone,
			a.Position,
			a.Company,
			a.StatusDisplay.Label,
			a.AppliedDate.Format("2006-01-02"),
			a.MatchConfidence,
			a.Applicant.Experience,
			strings.Join(a.Skills, ", "),
		}
		for col, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(ApplicationsSheet, cell, v)
		}

		if a.ResumeURL != "" {
			cell, _ := excelize.CoordinatesToCellName(len(headers), row)
			f.SetCellValue(ApplicationsSheet, cell, "Open Resume")
			if strings.HasPrefix(a.ResumeURL, "http") {
				f.SetCellHyperLink(ApplicationsSheet, cell, a.ResumeURL, "External")
				f.SetCellStyle(ApplicationsSheet, cell, cell, linkStyle)
			}
		}
	}

	f.SetColWidth(ApplicationsSheet, "A", "C", 24)
	f.SetColWidth(ApplicationsSheet, "D", "E", 28)
	f.SetColWidth(ApplicationsSheet, "J", "J", 40)
	return f.SetPanes(ApplicationsSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	})
}

func writeSummary(f *excelize.File, apps []model.ApplicationView, generated time.Time) error {
	hs, err := headerStyle(f)
	if err != nil {
		return err
	}
	counts := make(map[model.Status]int)
	for _, a := range apps {
		counts[a.Status]++
	}

	f.SetCellValue(SummarySheet, "A1", "Generated")
	f.SetCellValue(SummarySheet, "B1", generated.Format(time.RFC1123))
	f.SetCellValue(SummarySheet, "A2", "Total Applications")
	f.SetCellValue(SummarySheet, "B2", len(apps))

	f.SetCellValue(SummarySheet, "A4", "Status")
	f.SetCellValue(SummarySheet, "B4", "Count")
	f.SetCellStyle(SummarySheet, "A4", "B4", hs)
	for i, st := range model.Statuses {
		row := i + 5
		f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), st.Display().Label)
		f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), counts[st])
	}
	return f.SetColWidth(SummarySheet, "A", "B", 22)
}
