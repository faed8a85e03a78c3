package types

// TestCase defines a single input / expected output pair
type TestCase struct {
	Input          string `json:"input" yaml:"input" toml:"input"`
	ExpectedOutput string `json:"expectedOutput" yaml:"expectedOutput" toml:"expected_output"`
	Explanation    string `json:"explanation,omitempty" yaml:"explanation,omitempty" toml:"explanation,omitempty"`
}

// TestCaseResult contains result for single case
type TestCaseResult struct {
	TestCase TestCase `json:"testCase"`
	Outcome  Outcome  `json:"outcome"`

	// Passed is true only for a successful run whose output equals the expected output
	Passed bool `json:"passed"`

	// Message is a user facing explanation of the result
	Message string `json:"message"`
}

// AggregateVerdict contains the results of all cases of a run, in input order
type AggregateVerdict struct {
	Results   []TestCaseResult `json:"results"`
	AllPassed bool             `json:"allPassed"`
}

// NewAggregateVerdict derives the verdict from per case results.
// An empty result list passes vacuously.
func NewAggregateVerdict(results []TestCaseResult) *AggregateVerdict {
	allPassed := true
	for _, r := range results {
		if !r.Passed {
			allPassed = false
			break
		}
	}
	return &AggregateVerdict{
		Results:   results,
		AllPassed: allPassed,
	}
}
