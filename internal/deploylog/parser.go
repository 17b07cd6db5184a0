// AngelaMos | 2026
// parser.go

// Package deploylog turns raw deployment output into a failing-step
// classification, a fix suggestion and a developer-facing report. It backs
// the devtools endpoint used when a storefront deploy goes sideways.
package deploylog

import (
	"regexp"
	"strings"
)

type FailingStep string

const (
	StepBuild   FailingStep = "build"
	StepBundle  FailingStep = "bundle"
	StepInstall FailingStep = "install"
	StepUnknown FailingStep = "unknown"
)

type ParsedLog struct {
	FailingStep FailingStep
	ErrorText   string
	RawOutput   string
}

var (
	buildPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)build.*fail`),
		regexp.MustCompile(`(?i)compilation.*error`),
		regexp.MustCompile(`(?i)npm.*error`),
		regexp.MustCompile(`(?i)vite.*error`),
		regexp.MustCompile(`(?i)typescript.*error`),
	}
	bundlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)bundle.*fail`),
		regexp.MustCompile(`(?i)wasm.*error`),
		regexp.MustCompile(`(?i)candid.*error`),
	}
	installPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)install.*fail`),
		regexp.MustCompile(`(?i)canister.*error`),
		regexp.MustCompile(`(?i)replica.*reject`),
		regexp.MustCompile(`(?i)trap`),
	}
	genericError = regexp.MustCompile(`(?i)error`)

	buildErrorBlock = []*regexp.Regexp{
		regexp.MustCompile(`(?i)error:`),
		regexp.MustCompile(`(?i)failed to compile`),
		regexp.MustCompile(`(?i)build failed`),
	}
	bundleErrorBlock = []*regexp.Regexp{
		regexp.MustCompile(`(?i)error:`),
		regexp.MustCompile(`(?i)failed to bundle`),
	}
	installErrorBlock = []*regexp.Regexp{
		regexp.MustCompile(`(?i)error:`),
		regexp.MustCompile(`(?i)reject`),
		regexp.MustCompile(`(?i)trap`),
		regexp.MustCompile(`(?i)failed to install`),
	}
	genericErrorBlock = []*regexp.Regexp{
		regexp.MustCompile(`(?i)error:`),
	}

	sectionStart = regexp.MustCompile(`(?i)^(Building|Deploying|Installing)`)
)

const (
	maxErrorLines = 20
	tailFallback  = 500
)

// Parse classifies the failing step and extracts the error block. When no
// pattern matches, the tail of the output stands in for the error text.
func Parse(output string) ParsedLog {
	raw := strings.TrimSpace(output)
	if raw == "" {
		return ParsedLog{
			FailingStep: StepUnknown,
			ErrorText:   "No output provided",
			RawOutput:   "",
		}
	}

	step := StepUnknown
	errorText := ""

	switch {
	case matchesAny(output, buildPatterns):
		step = StepBuild
		errorText = extractErrorBlock(output, buildErrorBlock)
	case matchesAny(output, bundlePatterns):
		step = StepBundle
		errorText = extractErrorBlock(output, bundleErrorBlock)
	case matchesAny(output, installPatterns):
		step = StepInstall
		errorText = extractErrorBlock(output, installErrorBlock)
	case genericError.MatchString(output):
		errorText = extractErrorBlock(output, genericErrorBlock)
	}

	if errorText == "" {
		if len(output) > tailFallback {
			errorText = output[len(output)-tailFallback:]
		} else {
			errorText = output
		}
	}

	return ParsedLog{
		FailingStep: step,
		ErrorText:   strings.TrimSpace(errorText),
		RawOutput:   raw,
	}
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// extractErrorBlock captures the first matching line plus the contiguous
// lines after it, stopping at a blank line or a new build section.
func extractErrorBlock(output string, patterns []*regexp.Regexp) string {
	lines := strings.Split(output, "\n")

	for i, line := range lines {
		if !matchesAny(line, patterns) {
			continue
		}

		block := []string{line}
		limit := i + maxErrorLines
		if limit > len(lines)-1 {
			limit = len(lines) - 1
		}

		for j := i + 1; j <= limit; j++ {
			next := lines[j]
			if strings.TrimSpace(next) == "" || sectionStart.MatchString(next) {
				break
			}
			block = append(block, next)
		}

		return strings.Join(block, "\n")
	}

	return ""
}
