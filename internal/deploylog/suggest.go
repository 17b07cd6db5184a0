// AngelaMos | 2026
// suggest.go

package deploylog

import "regexp"

type FixSuggestion struct {
	Suggestion  string
	Rationale   string
	CodeSnippet string
}

var (
	missingModule   = regexp.MustCompile(`(?i)cannot find module`)
	typeError       = regexp.MustCompile(`(?i)type.*error`)
	missingProperty = regexp.MustCompile(`(?i)property.*does not exist`)
	syntaxError     = regexp.MustCompile(`(?i)syntax error`)
	wasmError       = regexp.MustCompile(`(?i)wasm`)
	candidError     = regexp.MustCompile(`(?i)candid`)
	outOfCycles     = regexp.MustCompile(`(?i)out of cycles`)
	lowCycles       = regexp.MustCompile(`(?i)insufficient cycles`)
	unauthorized    = regexp.MustCompile(`(?i)unauthorized`)
	permission      = regexp.MustCompile(`(?i)permission`)
	trapped         = regexp.MustCompile(`(?i)trap`)
)

// SuggestFix maps common failure signatures to an actionable fix.
func SuggestFix(parsed ParsedLog) FixSuggestion {
	switch parsed.FailingStep {
	case StepBuild:
		return suggestBuildFix(parsed.ErrorText)
	case StepBundle:
		return suggestBundleFix(parsed.ErrorText)
	case StepInstall:
		return suggestInstallFix(parsed.ErrorText)
	default:
		return FixSuggestion{
			Suggestion: "Review full deployment output",
			Rationale: "Unable to determine specific failure cause. " +
				"Review the complete output for error details.",
			CodeSnippet: "dfx deploy --network ic --verbose",
		}
	}
}

func suggestBuildFix(errorText string) FixSuggestion {
	if missingModule.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Install missing dependencies",
			Rationale: "The build is failing because a required module " +
				"cannot be found.",
			CodeSnippet: "npm install\n# or\npnpm install",
		}
	}

	if typeError.MatchString(errorText) ||
		missingProperty.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Fix TypeScript type errors",
			Rationale: "TypeScript compilation is failing due to type " +
				"mismatches. Review the error output and fix type definitions.",
		}
	}

	if syntaxError.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Fix syntax errors in source code",
			Rationale: "There are syntax errors preventing compilation. " +
				"Check the file and line number in the error output.",
		}
	}

	return FixSuggestion{
		Suggestion: "Review build configuration and source code",
		Rationale: "The build step is failing. Check the full error output " +
			"for specific file and line numbers.",
	}
}

func suggestBundleFix(errorText string) FixSuggestion {
	if wasmError.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Rebuild backend canisters",
			Rationale: "The Wasm bundle generation failed. Try rebuilding " +
				"the backend canister.",
			CodeSnippet: "dfx build backend",
		}
	}

	if candidError.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Regenerate Candid interface",
			Rationale: "The Candid interface may be out of sync with the " +
				"backend code.",
			CodeSnippet: "dfx generate backend",
		}
	}

	return FixSuggestion{
		Suggestion: "Clean and rebuild project",
		Rationale: "Bundle generation failed. Try cleaning the build " +
			"artifacts and rebuilding.",
		CodeSnippet: "rm -rf .dfx\ndfx build",
	}
}

func suggestInstallFix(errorText string) FixSuggestion {
	if outOfCycles.MatchString(errorText) || lowCycles.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Add cycles to your wallet",
			Rationale: "The deployment failed due to insufficient cycles " +
				"in your wallet.",
			CodeSnippet: "dfx wallet balance\n# Top up your wallet if needed",
		}
	}

	if unauthorized.MatchString(errorText) ||
		permission.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Check canister controller permissions",
			Rationale: "You may not have permission to install/upgrade " +
				"this canister.",
			CodeSnippet: "dfx canister status --network ic <canister-name>",
		}
	}

	if trapped.MatchString(errorText) {
		return FixSuggestion{
			Suggestion: "Review canister initialization code",
			Rationale: "The canister trapped during installation. Check " +
				"init/post_upgrade logic in your backend code.",
		}
	}

	return FixSuggestion{
		Suggestion: "Review canister installation logs",
		Rationale: "Canister installation failed. Check the full error " +
			"output for specific details.",
	}
}
