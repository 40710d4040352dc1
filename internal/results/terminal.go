package results

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/evpower/recruit-backend/internal/model"
)

func bandColor(b Band) *color.Color {
	switch b {
	case BandHigh:
		return color.New(color.FgGreen, color.Bold)
	case BandMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// WriteView prints one attempt review as a summary line plus a question table.
func WriteView(w io.Writer, v View) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "\nResults for %s\n", v.Email)
	fmt.Fprintf(w, "Taken:      %s\n", v.TestDate.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Score:      %d/%d  ", v.Score, v.Total)
	bandColor(v.Band).Fprintf(w, "%d%%\n", v.Percentage)
	fmt.Fprintf(w, "Time spent: %s\n", v.Elapsed)
	if v.Outcome == model.AttemptOutcomeTimedOut {
		color.New(color.FgYellow).Fprintln(w, "Time ran out before submission")
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Question", "Your answer", "Correct answer", ""})
	table.SetAutoWrapText(true)

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	for _, q := range v.Questions {
		chosen := "(not answered)"
		if q.Answered() {
			chosen = q.ChosenText
		}
		mark := bad("✗")
		if q.IsCorrect {
			mark = ok("✓")
		}
		table.Append([]string{strconv.Itoa(q.Number), q.Prompt, chosen, q.CorrectText, mark})
	}
	table.Render()
}

// WriteAttemptList prints the attempt log as an indexed table.
func WriteAttemptList(w io.Writer, records []model.AttemptRecord) {
	if len(records) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No test results available")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Email", "Date", "Score", "Percentage", "Time Spent"})

	for i, r := range records {
		v := Render(r)
		table.Append([]string{
			strconv.Itoa(i),
			v.Email,
			v.TestDate.Local().Format("2006-01-02"),
			fmt.Sprintf("%d/%d", v.Score, v.Total),
			bandColor(v.Band).Sprintf("%d%%", v.Percentage),
			v.Elapsed,
		})
	}
	table.Render()
	fmt.Fprintf(w, "Total: %d\n", len(records))
}
