// Package report renders an analysis summary workbook for a user's
// analyzed calls.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"call-coach-go/internal/store"
)

const sheetName = "Call Analyses"

var header = []any{
	"Call", "Uploaded", "Status", "Duration (s)",
	"Overall", "Call Opening", "Issue Understanding", "Customer Sentiment",
	"Predicted CSAT", "Resolution", "Strengths", "Improvement Areas",
}

// WriteXLSX writes a workbook with one row per analyzed call. Calls
// without an analysis yet appear with their status and empty score cells.
func WriteXLSX(st *store.Store, userID string, w io.Writer) error {
	calls, _, err := st.ListCalls(userID, "", 0, 0)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	row := 2
	for i := range calls {
		c := &calls[i]
		cells := []any{
			c.OriginalName,
			c.UploadedAt.Format("2006-01-02 15:04"),
			string(c.Status),
			c.DurationSeconds,
		}
		if a, err := st.GetAnalysisByCall(c.ID); err == nil {
			cells = append(cells,
				a.OverallScore,
				a.Scores.CallOpening.Score,
				a.Scores.IssueUnderstanding.Score,
				a.Scores.Sentiment.CustomerSentiment,
				a.Scores.CSAT.PredictedScore,
				a.Scores.ResolutionQuality.Score,
				strings.Join(a.Strengths, "; "),
				strings.Join(a.ImprovementAreas, "; "),
			)
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		row++
	}

	return f.Write(w)
}
