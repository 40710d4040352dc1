package results

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/evpower/recruit-backend/internal/model"
)

// Sheet names of the exported workbook.
const (
	SheetAttempts = "Attempts"
	SheetAnswers  = "Answers"
)

var bandFill = map[Band]string{
	BandHigh:   "C6EFCE",
	BandMedium: "FFEB9C",
	BandLow:    "FFC7CE",
}

// WriteWorkbook exports attempts as an .xlsx workbook: one summary row per
// attempt plus one row per answered question.
func WriteWorkbook(w io.Writer, records []model.AttemptRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAttempts); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetAnswers); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	bandStyles := make(map[Band]int, len(bandFill))
	for b, fill := range bandFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		bandStyles[b] = id
	}

	if err := writeHeader(f, SheetAttempts, headerStyle,
		"#", "Email", "Test Date", "Score", "Total", "Percentage", "Band", "Time Spent", "Outcome"); err != nil {
		return err
	}
	if err := writeHeader(f, SheetAnswers, headerStyle,
		"Attempt #", "Email", "Question #", "Question", "Chosen", "Correct", "Result"); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetAttempts, "B", "B", 32)
	_ = f.SetColWidth(SheetAttempts, "C", "C", 20)
	_ = f.SetColWidth(SheetAnswers, "D", "D", 60)

	answerRow := 2
	for i, rec := range records {
		v := Render(rec)
		row := i + 2
		values := []any{
			i, v.Email, v.TestDate.Format("2006-01-02 15:04:05"), v.Score, v.Total,
			v.Percentage, string(v.Band), v.Elapsed, string(v.Outcome),
		}
		if err := setRow(f, SheetAttempts, row, values); err != nil {
			return err
		}
		cell, _ := excelize.CoordinatesToCellName(6, row)
		if err := f.SetCellStyle(SheetAttempts, cell, cell, bandStyles[v.Band]); err != nil {
			return err
		}

		for _, q := range v.Questions {
			chosen := "(not answered)"
			if q.Answered() {
				chosen = q.ChosenText
			}
			result := "incorrect"
			if q.IsCorrect {
				result = "correct"
			}
			if err := setRow(f, SheetAnswers, answerRow,
				[]any{i, v.Email, q.Number, q.Prompt, chosen, q.CorrectText, result}); err != nil {
				return err
			}
			answerRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, titles ...string) error {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(titles), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
