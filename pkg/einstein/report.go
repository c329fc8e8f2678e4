package einstein

import (
	"fmt"
	"strings"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
)

const (
	ReportTitle = "Einstein Report"

	reportRule = "-----------------------------------------------"
	testRule   = "--------"
)

// RenderReport lays a report out line by line.
func RenderReport(report *bridge.Report) []string {
	lines := []string{
		"REPORT FOR " + report.Task,
		reportRule,
		"",
	}

	if report.Passed {
		lines = append(lines,
			fmt.Sprintf(`[PASSED] - "%s" passed all test cases successfully.`, report.Task),
			"",
		)
		return appendFooter(lines, report)
	}

	lines = append(lines,
		fmt.Sprintf(`[FAILED] - "%s" did not pass 1 or more tasks. See additional information for all failed tasks below.`, report.Task),
		"",
	)

	if report.DetailErr != nil {
		lines = append(lines, "[ERROR] Could not parse results:", report.DetailErr.Error(), "")
		lines = appendBody(lines, report.Body)
		return appendFooter(lines, report)
	}

	failed := bridge.FailureDetail{Results: report.Results}.Failed()
	if len(failed) == 0 {
		lines = appendBody(lines, report.Body)
	}
	for _, r := range failed {
		stderr := r.Stderr
		if stderr == "" {
			stderr = "N/A"
		}
		lines = append(lines,
			fmt.Sprintf("Test: %s | INCORRECT", r.Test),
			"",
			"[!] Standard Output (your file):",
			r.Stdout,
			"[!] Expected Output:",
			r.Expected,
			"[!] Standard Error:",
			stderr,
			"",
			testRule,
			"",
		)
	}
	return appendFooter(lines, report)
}

func appendBody(lines []string, body string) []string {
	body = strings.TrimRight(body, "\n")
	if body == "" {
		return lines
	}
	return append(lines, "[!] Einstein said:", body, "")
}

func appendFooter(lines []string, report *bridge.Report) []string {
	return append(lines,
		"To view the full report visit: "+report.ReportURL,
		"",
		reportRule,
	)
}
