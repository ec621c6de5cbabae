package table

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/qbpharma/deployctl/internal/report"
)

var defaultTableStyle = table.Style{
	Name: "qb",
	Box: table.BoxStyle{
		BottomLeft:       "└",
		BottomRight:      "┘",
		BottomSeparator:  "",
		EmptySeparator:   text.RepeatAndTrim(" ", text.RuneCount("+")),
		Left:             "│",
		LeftSeparator:    "",
		MiddleHorizontal: "─",
		MiddleSeparator:  "",
		MiddleVertical:   "",
		PaddingLeft:      "  ",
		PaddingRight:     "  ",
		PageSeparator:    "\n",
		Right:            "│",
		RightSeparator:   "",
		TopLeft:          "┌",
		TopRight:         "┐",
		TopSeparator:     "",
		UnfinishedRow:    " ...",
	},
	Color: table.ColorOptionsDefault,
	Format: table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	},
	HTML: table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  true,
		SeparateHeader:  true,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

// Reporter is a table writer implementation for report.Reporter.
type Reporter struct {
	Steps []report.StepResult
	Dst   io.Writer
	lock  sync.Mutex
}

// Add adds the step result to the summary table.
func (r *Reporter) Add(s report.StepResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Steps = append(r.Steps, s)
}

// Render renders out a deployment summary table to the destination of Reporter.Dst.
func (r *Reporter) Render() {
	r.lock.Lock()
	defer r.lock.Unlock()

	t := table.NewWriter()
	t.SetOutputMirror(r.Dst)
	t.SetStyle(defaultTableStyle)
	t.SuppressEmptyColumns()

	t.AppendHeader(table.Row{"", "Step", "Duration", "Status", "Details"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{
			Number:   0, // it's the first nameless column that contains the passed/fail icon
			WidthMax: 1,
		},
		{
			Name:     "Step",
			WidthMin: 20,
		},
		{
			Name:        "Duration",
			Align:       text.AlignRight,
			AlignFooter: text.AlignRight,
		},
	})

	var (
		failed   string
		totalDur time.Duration
		title    = cases.Title(language.English)
	)
	for _, s := range r.Steps {
		if !s.Passed && failed == "" {
			failed = s.Name
		}
		totalDur += s.Duration

		details := s.Details
		if s.Error != "" {
			details = s.Error
		}

		// the order of values must match the order of the header
		t.AppendRow(table.Row{statusSymbol(s.Passed), title.String(s.Name), s.Duration.Truncate(time.Millisecond),
			statusText(s.Passed), details})
	}

	t.AppendFooter(footer(failed, totalDur))

	_, _ = fmt.Fprintln(r.Dst)
	t.Render()
}

// Reset resets the reporter to its initial state. This action will delete all step results.
func (r *Reporter) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Steps = make([]report.StepResult, 0)
}

func footer(failed string, dur time.Duration) table.Row {
	if failed != "" {
		return table.Row{statusSymbol(false), fmt.Sprintf("Deployment failed at step '%s'", failed), dur.Truncate(time.Millisecond)}
	}
	return table.Row{statusSymbol(true), "Deployment prepared", dur.Truncate(time.Millisecond)}
}

func statusText(passed bool) string {
	if passed {
		return color.GreenString("passed")
	}
	return color.RedString("failed")
}

func statusSymbol(passed bool) string {
	if passed {
		return color.GreenString("✔")
	}
	return color.RedString("✖")
}
