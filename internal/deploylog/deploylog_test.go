// AngelaMos | 2026
// deploylog_test.go

package deploylog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buildFailureLog = `Building frontend...
npm ERR! code ELIFECYCLE
error: Cannot find module '@tanstack/react-query'
    at Function.Module._resolveFilename
    at require (internal/modules/cjs/helpers.js:25:18)

Deploying canisters...`

const installFailureLog = `Installing code for canister backend
Error: The replica returned a rejection error: trap at init
canister trapped explicitly`

func TestParseClassifiesBuildFailure(t *testing.T) {
	parsed := Parse(buildFailureLog)

	assert.Equal(t, StepBuild, parsed.FailingStep)
	assert.Contains(t, parsed.ErrorText, "Cannot find module")
	// The block ends at the blank line before the next section.
	assert.NotContains(t, parsed.ErrorText, "Deploying canisters")
}

func TestParseClassifiesInstallFailure(t *testing.T) {
	parsed := Parse(installFailureLog)

	assert.Equal(t, StepInstall, parsed.FailingStep)
	assert.Contains(t, parsed.ErrorText, "trap")
}

func TestParseEmptyOutput(t *testing.T) {
	parsed := Parse("   ")

	assert.Equal(t, StepUnknown, parsed.FailingStep)
	assert.Equal(t, "No output provided", parsed.ErrorText)
	assert.Empty(t, parsed.RawOutput)
}

func TestParseFallsBackToTail(t *testing.T) {
	long := strings.Repeat("noise ", 200) + "final words"
	parsed := Parse(long)

	assert.Equal(t, StepUnknown, parsed.FailingStep)
	assert.LessOrEqual(t, len(parsed.ErrorText), tailFallback)
	assert.True(t, strings.HasSuffix(parsed.ErrorText, "final words"))
}

func TestSuggestFixForMissingModule(t *testing.T) {
	fix := SuggestFix(ParsedLog{
		FailingStep: StepBuild,
		ErrorText:   "error: Cannot find module 'react'",
	})

	assert.Equal(t, "Install missing dependencies", fix.Suggestion)
	assert.Contains(t, fix.CodeSnippet, "npm install")
}

func TestSuggestFixForInsufficientCycles(t *testing.T) {
	fix := SuggestFix(ParsedLog{
		FailingStep: StepInstall,
		ErrorText:   "error: insufficient cycles to install",
	})

	assert.Equal(t, "Add cycles to your wallet", fix.Suggestion)
}

func TestSuggestFixUnknownStep(t *testing.T) {
	fix := SuggestFix(ParsedLog{FailingStep: StepUnknown})

	assert.Equal(t, "Review full deployment output", fix.Suggestion)
	assert.Contains(t, fix.CodeSnippet, "--verbose")
}

func TestFormatReportSections(t *testing.T) {
	parsed := Parse(buildFailureLog)
	fix := SuggestFix(parsed)
	report := FormatReport(parsed, fix)

	require.Contains(t, report, "DEPLOYMENT FAILURE REPORT")
	assert.Contains(t, report, "FAILING STEP:")
	assert.Contains(t, report, "BUILD")
	assert.Contains(t, report, "SUGGESTED FIX:")
	assert.Contains(t, report, "RECOMMENDED COMMAND(S):")
	assert.Contains(t, report, "FULL ERROR OUTPUT:")
	assert.Contains(t, report, "END OF REPORT")
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "dfx deploy --network ic", RetryCommand())
	assert.Len(t, DiagnosticCommands(), 3)
}
