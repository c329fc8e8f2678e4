package bridge

type TestResult struct {
	Test     string `json:"test"`
	Correct  bool   `json:"correct"`
	Stdout   string `json:"stdout"`
	Expected string `json:"expected"`
	Stderr   string `json:"stderr"`
}

type FailureDetail struct {
	Results []TestResult `json:"results"`
}

// Failed returns the results that did not pass, in report order.
func (d FailureDetail) Failed() []TestResult {
	failed := make([]TestResult, 0, len(d.Results))
	for _, r := range d.Results {
		if !r.Correct {
			failed = append(failed, r)
		}
	}
	return failed
}

type Report struct {
	Task      string       `json:"task"`
	Module    ModuleCode   `json:"module"`
	Passed    bool         `json:"passed"`
	Body      string       `json:"body"`
	Results   []TestResult `json:"results,omitempty"`
	DetailErr error        `json:"-"`
	ID        string       `json:"id,omitempty"`
	ReportURL string       `json:"report_url"`
}
