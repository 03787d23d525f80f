package validation

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"genai_studio/core"
)

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPassed StepStatus = iota
	StepFailed
	StepWarning
	StepSkipped
)

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	switch s {
	case StepPassed:
		return "passed"
	case StepFailed:
		return "failed"
	case StepWarning:
		return "warning"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SuiteResult represents the complete result of a validation run.
type SuiteResult struct {
	Checks   []CheckResult
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
	Success  bool
}

// Errors returns the errors from all failed checks.
func (r SuiteResult) Errors() []error {
	var errs []error
	for _, c := range r.Checks {
		if c.Status == StepFailed && c.Err != nil {
			errs = append(errs, c.Err)
		}
	}
	return errs
}

// Suite runs all startup checks in sequence with progress output.
// It composes the individual check atoms and prints a colored report.
type Suite struct {
	output       io.Writer
	showProgress bool
}

// NewSuite creates a Suite writing progress to stdout.
func NewSuite() *Suite {
	return &Suite{output: os.Stdout, showProgress: true}
}

// WithOutput sets the output writer for progress messages.
func (s *Suite) WithOutput(w io.Writer) *Suite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *Suite) WithShowProgress(show bool) *Suite {
	s.showProgress = show
	return s
}

// Validate runs every startup check against the configuration and
// returns the aggregated result. Checks run in dependency order but a
// failure does not stop later checks; the operator sees the full report.
func (s *Suite) Validate(cfg *core.Config) SuiteResult {
	start := time.Now()
	if s.showProgress {
		s.printHeader("Startup Validation")
	}

	checks := []CheckResult{
		CheckConfig(cfg),
		CheckImageAPIURL(cfg.ImageAPIURL),
		CheckCacheDir(cfg.CacheDir),
		CheckDatabasePath(cfg.DBPath),
		CheckStylesFile(cfg.StylesFile),
	}

	result := SuiteResult{Checks: checks, Success: true}
	for _, c := range checks {
		if s.showProgress {
			s.printCheck(c)
		}
		switch c.Status {
		case StepPassed:
			result.Passed++
		case StepFailed:
			result.Failed++
			result.Success = false
		case StepSkipped:
			result.Skipped++
		}
	}
	result.Duration = time.Since(start)

	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// printHeader prints a validation header.
func (s *Suite) printHeader(title string) {
	fmt.Fprintln(s.output)
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

// printCheck prints a completed check with a status indicator.
func (s *Suite) printCheck(c CheckResult) {
	var icon string
	var clr *color.Color

	switch c.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	clr.Fprintf(s.output, "  %s %s", icon, c.Name)
	if c.Message != "" {
		color.New(color.FgHiBlack).Fprintf(s.output, " - %s", c.Message)
	}
	fmt.Fprintln(s.output)

	if c.Status == StepFailed && c.Err != nil {
		color.New(color.FgRed).Fprintf(s.output, "    └─ %s\n", c.Err.Error())
	}
}

// printSummary prints the validation summary.
func (s *Suite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)
	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "━━━ Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d checks passed in %v)",
			result.Passed, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "━━━ Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.Passed, result.Failed)
		failColor.Fprintln(s.output, " ━━━")
	}
	fmt.Fprintln(s.output)
}
