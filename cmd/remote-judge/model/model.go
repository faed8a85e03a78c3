// Package model defines the JSON bodies of the remote judge HTTP API.
package model

import (
	"github.com/codepractice/remote-judge/client"
	"github.com/codepractice/remote-judge/problem"
	"github.com/codepractice/remote-judge/types"
)

// RunRequest runs a program once
type RunRequest struct {
	Source   string         `json:"source"`
	Stdin    string         `json:"stdin"`
	Language types.Language `json:"language,omitempty"`
}

// RunResponse contains the user facing output and the outcome it came from
type RunResponse struct {
	Output  string        `json:"output"`
	Outcome types.Outcome `json:"outcome"`
}

// TestRequest grades a program against test cases
type TestRequest struct {
	Source    string           `json:"source"`
	Language  types.Language   `json:"language,omitempty"`
	TestCases []types.TestCase `json:"testCases"`
}

// SubmitRequest grades a program against the test cases of an exercise
type SubmitRequest struct {
	Source   string         `json:"source"`
	Language types.Language `json:"language,omitempty"`
}

// TestResponse is the report together with the detailed per case results
type TestResponse struct {
	client.Report
	Results []types.TestCaseResult `json:"results"`
}

// NewTestResponse converts the aggregate verdict
func NewTestResponse(v *types.AggregateVerdict) TestResponse {
	return TestResponse{
		Report:  client.NewReport(v),
		Results: v.Results,
	}
}

// ExerciseSummary is an exercise without its test cases
type ExerciseSummary struct {
	ID         int                `json:"id"`
	Title      string             `json:"title"`
	Difficulty problem.Difficulty `json:"difficulty"`
	Category   string             `json:"category"`
	Language   types.Language     `json:"language"`
}

// NewExerciseSummary creates summary
func NewExerciseSummary(e *problem.Exercise) ExerciseSummary {
	return ExerciseSummary{
		ID:         e.ID,
		Title:      e.Title,
		Difficulty: e.Difficulty,
		Category:   e.Category,
		Language:   e.Lang(),
	}
}

// CaseEvent is streamed over websocket when a test case finished
type CaseEvent struct {
	Index  int                  `json:"index"`
	Result types.TestCaseResult `json:"result"`
}

// StreamMessage is a single websocket message, exactly one field is set
type StreamMessage struct {
	Case   *CaseEvent    `json:"case,omitempty"`
	Finish *TestResponse `json:"finish,omitempty"`
	Error  string        `json:"error,omitempty"`
}
