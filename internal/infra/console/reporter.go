// Package console renders the command loop's feedback on a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"voice-grbl/internal/domain"
	"voice-grbl/internal/infra/sessionlog"
)

// Reporter implements application.Reporter. Colors are dropped when out is
// not a terminal.
type Reporter struct {
	out         io.Writer
	destination string
	mu          sync.Mutex

	titleStyle lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
	warnStyle  lipgloss.Style
	errorStyle lipgloss.Style
	mutedStyle lipgloss.Style
}

// NewReporter writes to out. destination names where move records are
// logged and is shown at the foot of each report.
func NewReporter(out io.Writer, destination string) *Reporter {
	r := lipgloss.NewRenderer(out)
	return &Reporter{
		out:         out,
		destination: destination,
		titleStyle:  r.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		labelStyle:  r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		valueStyle:  r.NewStyle().Foreground(lipgloss.Color("#F0F0F0")),
		warnStyle:   r.NewStyle().Foreground(lipgloss.Color("#E6B450")),
		errorStyle:  r.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		mutedStyle:  r.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	}
}

func (r *Reporter) Usage() {
	r.print(strings.Join([]string{
		"",
		r.titleStyle.Render("Say commands like:"),
		"  • 'forward two spins'",
		"  • 'backward 1.5 turns'",
		"  • 'stop'",
		r.mutedStyle.Render("Ctrl+C to quit."),
		"",
	}, "\n"))
}

func (r *Reporter) Transcript(t domain.Transcript) {
	r.print(r.field("Transcript", fmt.Sprintf("%q", t.Text())))
}

func (r *Reporter) NotUnderstood() {
	r.print(r.warnStyle.Render("Could not understand that. Try again."))
}

func (r *Reporter) Unrecognized(text string) {
	r.print(r.warnStyle.Render(fmt.Sprintf("Couldn't understand direction/turns in %q. Try again.", text)))
}

func (r *Reporter) Hold(reply string, err error) {
	if err != nil {
		r.print(r.errorStyle.Render("Feed hold failed: " + err.Error()))
		return
	}
	r.print(r.titleStyle.Render("Feed hold") + "  " + r.valueStyle.Render(replyText(reply)))
}

func (r *Reporter) Move(e domain.LogEntry) {
	grbl := r.valueStyle.Render(replyText(e.DeviceReply))
	if e.Error != "" {
		grbl = r.errorStyle.Render("error: " + e.Error)
	}

	lines := []string{
		"",
		r.titleStyle.Render("--- Voice → Motion Report ---"),
		r.field("Command", fmt.Sprintf("%q", e.Transcript)),
		r.field("Parsed", fmt.Sprintf("%s  %.4f rotation(s)", e.Direction, e.Magnitude)),
		r.field("G-code", e.ProtocolLine),
		r.field("Steps/rot", fmt.Sprintf("%d   Total steps: %d", e.StepsPerTurn, e.TotalSteps)),
		r.labelStyle.Render(fmt.Sprintf("%-10s ", "GRBL:")) + grbl,
	}
	if r.destination != "" {
		lines = append(lines, r.field("Log", r.destination))
	}
	lines = append(lines, "")
	r.print(strings.Join(lines, "\n"))
}

func (r *Reporter) field(label, value string) string {
	return r.labelStyle.Render(fmt.Sprintf("%-10s ", label+":")) + r.valueStyle.Render(value)
}

func (r *Reporter) print(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

func replyText(reply string) string {
	if s := sessionlog.JoinReply(reply); s != "" {
		return s
	}
	return "(no reply)"
}
