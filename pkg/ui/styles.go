// Package ui renders styled CLI output for cmd/bootstrap using lipgloss:
// a banner, one block per module with per-stage step lines, and a closing
// summary.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("#7D56F4")
	colorSecondary = lipgloss.Color("#56C3F4")
	colorSuccess   = lipgloss.Color("#5AF78E")
	colorWarning   = lipgloss.Color("#F7DC6F")
	colorError     = lipgloss.Color("#FF6B9D")
	colorMuted     = lipgloss.Color("#6C7086")

	colorText      = lipgloss.Color("#CDD6F4")
	colorHighlight = lipgloss.Color("#F5E0DC")
	colorBorder    = lipgloss.Color("#45475A")
	colorSubtle    = lipgloss.Color("#7F849C")
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)

	styleSection = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary).MarginTop(1)

	styleHeaderPath = lipgloss.NewStyle().Foreground(colorText)
	styleOutputPath = lipgloss.NewStyle().Foreground(colorSuccess)

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleStepLabel = lipgloss.NewStyle().Foreground(colorText).Width(14).Align(lipgloss.Left)
	styleStepTime  = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorBorder).
			MarginTop(1).
			PaddingTop(1)

	styleIndent = lipgloss.NewStyle().PaddingLeft(2)
)

// ImportOutput drives the console output for one `bootstrap import` /
// `cimport` run across however many modules it's given
// PrintModuleStart/PrintStep/PrintModuleDone for.
type ImportOutput struct {
	startTime   time.Time
	moduleCount int
}

// NewImportOutput starts timing a run.
func NewImportOutput() *ImportOutput {
	return &ImportOutput{startTime: time.Now()}
}

// PrintHeader prints the toolchain banner.
func (o *ImportOutput) PrintHeader(version string) {
	header := styleHeader.Render("vesper bootstrap")
	badge := styleVersion.Render("v" + version)
	fmt.Println(header + " " + badge)
}

// PrintRunStart announces how many modules this run will process.
func (o *ImportOutput) PrintRunStart(moduleCount int) {
	o.moduleCount = moduleCount
	var msg string
	if moduleCount == 1 {
		msg = "Importing 1 module"
	} else {
		msg = fmt.Sprintf("Importing %d modules", moduleCount)
	}
	fmt.Println(styleSection.Render(msg))
	fmt.Println()
}

// PrintModuleStart announces the header a module is about to be imported
// from and the declarations file it will produce.
func (o *ImportOutput) PrintModuleStart(header, declFile string) {
	in := styleHeaderPath.Render(header)
	arrow := styleMuted.Render("->")
	out := styleOutputPath.Render(declFile)
	fmt.Printf("  %s %s %s\n", in, arrow, out)
}

// StepStatus is the outcome of one pipeline stage within a module import.
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepSkipped
	StepWarning
	StepError
)

// Step is one reported stage of a module's import pipeline (front end,
// walk, emit).
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// PrintStep prints one pipeline step with its status and timing.
func (o *ImportOutput) PrintStep(step Step) {
	var icon, rendered string
	switch step.Status {
	case StepSuccess:
		icon, rendered = "+", styleSuccess.Render("done")
	case StepSkipped:
		icon, rendered = "-", styleMuted.Render("skipped")
	case StepWarning:
		icon, rendered = "!", styleWarning.Render("warning")
	case StepError:
		icon, rendered = "x", styleError.Render("failed")
	}

	line := fmt.Sprintf("    %s %s %s", icon, styleStepLabel.Render(step.Name), rendered)
	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(step.Duration)+")")
	}
	fmt.Println(line)

	if step.Message != "" {
		fmt.Println(styleMuted.Render("      " + step.Message))
	}
}

// PrintModuleDone closes out one module's block with a blank line.
func (o *ImportOutput) PrintModuleDone() {
	fmt.Println()
}

// PrintSummary prints the run's final status line.
func (o *ImportOutput) PrintSummary(success bool, errMsg string) {
	elapsed := time.Since(o.startTime)
	var summary string
	if success {
		summary = fmt.Sprintf("%s %d modules imported in %s",
			styleSuccess.Render("done."), o.moduleCount, styleStepTime.Render(formatDuration(elapsed)))
	} else {
		summary = styleError.Render("import failed.")
		if errMsg != "" {
			summary += "\n" + styleError.Render("  error: ") + errMsg
		}
	}
	fmt.Println(styleSummary.Render(summary))
}

// PrintError prints a standalone error line, indented to match step output.
func (o *ImportOutput) PrintError(msg string) {
	fmt.Println(styleIndent.Render(styleError.Render("error: ") + msg))
}

// PrintWarning prints a standalone warning line.
func (o *ImportOutput) PrintWarning(msg string) {
	fmt.Println(styleIndent.Render(styleWarning.Render("warning: ") + msg))
}

// PrintInfo prints a standalone informational line.
func (o *ImportOutput) PrintInfo(msg string) {
	fmt.Println(styleIndent.Render(styleMuted.Render(msg)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// PrintVersionInfo prints `bootstrap version` output.
func PrintVersionInfo(version string) {
	fmt.Println(styleHeader.Render("vesper bootstrap"))
	fmt.Println()
	fmt.Printf("  %s %s\n", styleMuted.Render("version:"), styleSuccess.Render(version))
	fmt.Printf("  %s %s\n", styleMuted.Render("runtime:"), lipgloss.NewStyle().Foreground(colorText).Render("Go"))
	fmt.Println()
}

// PrintHelp prints the toolchain's top-level usage summary.
func PrintHelp(version string) {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	muted := lipgloss.NewStyle().Foreground(colorMuted)
	desc := lipgloss.NewStyle().Foreground(colorText)
	section := lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
	command := lipgloss.NewStyle().Foreground(colorSuccess)
	flag := lipgloss.NewStyle().Foreground(colorHighlight)

	fmt.Println()
	fmt.Println(header.Render("vesper bootstrap") + " " + muted.Render("- self-hosting build driver and C header importer"))
	fmt.Println(muted.Render("  v" + version))
	fmt.Println()

	fmt.Println(desc.Render("Builds the Vesper compiler from source (downloading a prior release"))
	fmt.Println(desc.Render("to bootstrap the first stage), and imports C headers into Vesper"))
	fmt.Println(desc.Render("declaration + symbol-table source files."))
	fmt.Println()

	fmt.Println(section.Render("Usage:"))
	fmt.Println("  bootstrap [command] [flags]")
	fmt.Println()

	fmt.Println(section.Render("Available Commands:"))
	commands := []struct{ name, desc string }{
		{"build", "Compile src/main.vpr with the bootstrap compiler"},
		{"import", "Import configured C headers into Vesper declarations"},
		{"release", "Self-compile twice and package a release archive"},
		{"test", "Build and run the compiler's own test suite"},
		{"clean", "Remove the build directory and release archives"},
		{"download", "Fetch the pinned bootstrap compiler release"},
		{"version", "Print the version number"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", command.Render(fmt.Sprintf("%-10s", cmd.name)), cmd.desc)
	}
	fmt.Println()

	fmt.Println(section.Render("Flags:"))
	fmt.Printf("  %s      help for bootstrap\n", flag.Render("-h, --help"))
	fmt.Printf("  %s   version for bootstrap\n", flag.Render("-v, --version"))
	fmt.Println()
}

// Divider renders a horizontal rule for separating sections of output.
func Divider() string {
	return styleMuted.Render(strings.Repeat("-", 60))
}
