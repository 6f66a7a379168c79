package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/fullshot/pkg/job"
)

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	nameStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)
)

// console prints capture progress. It implements job.Reporter.
type console struct {
	out io.Writer
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) header(version, backend string, pages int) {
	fmt.Fprintf(c.out, "%s %s\n",
		headerStyle.Render("fullshot v"+version),
		tipsStyle.Render(fmt.Sprintf("%s, %d page(s)", backend, pages)))
}

func (c *console) PageStarted(p job.Page) {
	fmt.Fprintf(c.out, "%s %s %s\n", tipsStyle.Render("→"), nameStyle.Render(p.Name), tipsStyle.Render(p.URL))
}

func (c *console) PageDone(r job.Result) {
	detail := fmt.Sprintf("%dx%d", r.Shot.Width, r.Shot.Height)
	if r.Shot.Stitched {
		detail += fmt.Sprintf(", %d tiles", r.Shot.Tiles)
	}
	detail += fmt.Sprintf(", %s", r.Duration.Round(10*time.Millisecond))

	fmt.Fprintf(c.out, "  %s %s %s\n", successStyle.Render("✓"), r.Path, tipsStyle.Render(detail))
}

func (c *console) PageFailed(p job.Page, err error) {
	fmt.Fprintf(c.out, "  %s %s\n", errorStyle.Render("✗"), errorStyle.Render(err.Error()))
}

func (c *console) summary(done, total int) {
	style := successStyle
	if done < total {
		style = errorStyle
	}
	fmt.Fprintln(c.out, style.Render(fmt.Sprintf("%d of %d page(s) captured", done, total)))
}
