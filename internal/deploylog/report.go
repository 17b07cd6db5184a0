// AngelaMos | 2026
// report.go

package deploylog

import "strings"

const reportWidth = 60

// FormatReport renders a plain-text failure report for developers.
func FormatReport(parsed ParsedLog, fix FixSuggestion) string {
	var b strings.Builder
	rule := strings.Repeat("=", reportWidth)
	thinRule := strings.Repeat("-", reportWidth)

	writeLine := func(lines ...string) {
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	writeLine(rule, "DEPLOYMENT FAILURE REPORT", rule, "")

	writeLine("FAILING STEP:")
	writeLine("  " + strings.ToUpper(string(parsed.FailingStep)))
	writeLine("")

	writeLine("SUGGESTED FIX:")
	writeLine("  " + fix.Suggestion)
	writeLine("")
	writeLine("RATIONALE:")
	writeLine("  " + fix.Rationale)
	writeLine("")

	if fix.CodeSnippet != "" {
		writeLine("RECOMMENDED COMMAND(S):", "")
		for _, line := range strings.Split(fix.CodeSnippet, "\n") {
			writeLine("  " + line)
		}
		writeLine("")
	}

	writeLine("FULL ERROR OUTPUT:")
	writeLine(thinRule)
	writeLine(parsed.ErrorText)
	writeLine(thinRule, "")

	writeLine("END OF REPORT")
	b.WriteString(rule)

	return b.String()
}

// RetryCommand is the command to rerun the failed deployment from the
// project root.
func RetryCommand() string {
	return "dfx deploy --network ic"
}

// DiagnosticCommands help debug a failed deployment.
func DiagnosticCommands() []string {
	return []string{
		"dfx identity whoami",
		"dfx wallet balance",
		"dfx canister status --network ic --all",
	}
}
