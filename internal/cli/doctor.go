// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Doctor command implementation for diagutil.
//
// Command: doctor
// Short:   Check that this machine can run the Diagram helpers
//
// Health Checks Performed:
//   1. Config Valid       - Validates the loaded configuration
//   2. Code Page          - Resolves the legacy code page and encodes a sample
//   3. .NET Framework     - Compares the installed release to framework.min_version
//   4. Conversion Backend - Checks the configured backend can run here
//   5. Temp Dir Writable  - Checks the conversion scratch directory
//
// Exit Codes:
//   0   All checks passed (warnings allowed)
//   1   One or more checks failed
package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/diagutil/internal/detect"
	"github.com/jeranaias/diagutil/internal/spreadsheet"
	"github.com/jeranaias/diagutil/internal/util"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	// Check pass style (green)
	checkPassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	// Check warn style (yellow)
	checkWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	// Check fail style (red)
	checkFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Fix suggestion style
	fixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true).
			PaddingLeft(2)
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	case CheckFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns the rendered marker for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return checkPassStyle.Render("[OK]")
	case CheckWarn:
		return checkWarnStyle.Render("[!!]")
	case CheckFail:
		return checkFailStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Fix     string `json:"fix,omitempty"`

	status CheckStatus
}

func newCheck(name string, status CheckStatus, msg, fix string) HealthCheck {
	return HealthCheck{Name: name, Status: status.String(), Message: msg, Fix: fix, status: status}
}

// Render returns a formatted string representation of the health check.
func (c HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s: %s", c.status.Symbol(), c.Name, c.Message)
	if c.status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// DoctorSummary counts check outcomes.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// DoctorData is the JSON payload of doctor.
type DoctorData struct {
	Checks  []HealthCheck `json:"checks"`
	Summary DoctorSummary `json:"summary"`
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctor handles the "doctor" command.
func (a *App) HandleDoctor(args Args) error {
	checks := a.runAllChecks()

	var sum DoctorSummary
	for _, c := range checks {
		switch c.status {
		case CheckPass:
			sum.Passed++
		case CheckWarn:
			sum.Warned++
		case CheckFail:
			sum.Failed++
		}
	}
	sum.Healthy = sum.Failed == 0

	var failure error
	if sum.Failed > 0 {
		failure = fmt.Errorf("%d health check(s) failed", sum.Failed)
	}

	if args.JSON {
		resp := NewJSONResponse("doctor", DoctorData{Checks: checks, Summary: sum})
		if failure != nil {
			msg := failure.Error()
			resp.Success = false
			resp.Error = &msg
		}
		if err := resp.Print(a.Out); err != nil {
			return err
		}
		if failure != nil {
			return &reportedError{failure}
		}
		return nil
	}

	fmt.Fprintln(a.Out, TitleStyle.Render("diagutil Doctor"))
	fmt.Fprintln(a.Out, RenderSeparator(41))
	for _, c := range checks {
		fmt.Fprintln(a.Out, c.Render())
	}
	fmt.Fprintln(a.Out, RenderSeparator(41))

	parts := []string{fmt.Sprintf("%d passed", sum.Passed)}
	if sum.Warned > 0 {
		parts = append(parts, checkWarnStyle.Render(fmt.Sprintf("%d warning", sum.Warned)))
	}
	if sum.Failed > 0 {
		parts = append(parts, checkFailStyle.Render(fmt.Sprintf("%d failed", sum.Failed)))
	}
	fmt.Fprintln(a.Out, DimStyle.Render(strings.Join(parts, ", ")))

	return failure
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

func (a *App) runAllChecks() []HealthCheck {
	return []HealthCheck{
		a.checkConfigValid(),
		a.checkCodePage(),
		a.checkFramework(),
		a.checkBackend(),
		a.checkTempDir(),
	}
}

func (a *App) checkConfigValid() HealthCheck {
	if err := a.Config.Validate(); err != nil {
		return newCheck("Config Valid", CheckFail, err.Error(), "Edit the config file or run \"diagutil config reset\"")
	}
	return newCheck("Config Valid", CheckPass, "configuration valid", "")
}

func (a *App) checkCodePage() HealthCheck {
	name := a.Config.Encoding.CodePage
	label := name
	if label == "" {
		label = "system default"
	}
	enc, err := util.CodePageByName(name)
	if err != nil {
		return newCheck("Code Page", CheckFail, err.Error(), "Set [encoding] code_page, e.g. \"windows-1252\"")
	}
	sample := "Año diseño"
	data, err := util.EncodeLegacy(sample, enc)
	if err != nil {
		return newCheck("Code Page", CheckFail, err.Error(), "")
	}
	if back, err := util.DecodeLegacy(data, enc); err != nil || back != sample {
		return newCheck("Code Page", CheckWarn,
			fmt.Sprintf("%s cannot represent Spanish letters; they will be written as '?'", label),
			"Use windows-1252 or cp850")
	}
	return newCheck("Code Page", CheckPass, label, "")
}

func (a *App) checkFramework() HealthCheck {
	label := a.Config.Framework.MinVersion
	installed := a.Checker.Installed()
	version := detect.VersionForRelease(installed)
	if version == "" {
		version = "none"
	}

	if runtime.GOOS != "windows" && installed == 0 {
		return newCheck(".NET Framework", CheckWarn, "not a Windows system; registry not available", "")
	}
	if label == "" {
		return newCheck(".NET Framework", CheckPass, "installed "+version+" (no minimum configured)", "")
	}
	if !detect.Satisfies(installed, label) {
		return newCheck(".NET Framework", CheckFail,
			fmt.Sprintf("%s installed, %s required", version, label),
			"Install .NET Framework "+label+" or later")
	}
	return newCheck(".NET Framework", CheckPass, fmt.Sprintf("%s installed, %s required", version, label), "")
}

func (a *App) checkBackend() HealthCheck {
	opts, err := a.Config.ConverterOptions()
	if err != nil {
		return newCheck("Conversion Backend", CheckFail, err.Error(), `Set [convert] backend = "native"`)
	}
	if opts.Backend == spreadsheet.BackendExcel && runtime.GOOS != "windows" {
		return newCheck("Conversion Backend", CheckFail,
			spreadsheet.ErrAutomationUnavailable.Error(), `Set [convert] backend = "native"`)
	}
	if _, err := a.NewConverter(opts); err != nil {
		return newCheck("Conversion Backend", CheckFail, err.Error(), "")
	}
	return newCheck("Conversion Backend", CheckPass, string(opts.Backend), "")
}

func (a *App) checkTempDir() HealthCheck {
	dir := a.Config.Convert.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, ".diagutil-doctor-")
	if err != nil {
		fix := "Set [convert] temp_dir to a writable directory"
		if errors.Is(err, os.ErrNotExist) {
			fix = "Create " + dir
		}
		return newCheck("Temp Dir Writable", CheckFail, err.Error(), fix)
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return newCheck("Temp Dir Writable", CheckPass, dir, "")
}
