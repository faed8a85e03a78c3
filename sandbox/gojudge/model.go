package gojudge

import "github.com/codepractice/remote-judge/sandbox"

// CmdFile defines file from memory, cached file or pipe collector
type CmdFile struct {
	Content *string `json:"content,omitempty"`
	FileID  *string `json:"fileId,omitempty"`
	Name    *string `json:"name,omitempty"`
	Max     *int64  `json:"max,omitempty"`
}

// Cmd defines command and limits to start a program inside go-judge
type Cmd struct {
	Args  []string   `json:"args"`
	Env   []string   `json:"env,omitempty"`
	Files []*CmdFile `json:"files,omitempty"`

	CPULimit    uint64 `json:"cpuLimit"`
	ClockLimit  uint64 `json:"clockLimit"`
	MemoryLimit uint64 `json:"memoryLimit"`
	ProcLimit   uint64 `json:"procLimit"`

	CopyIn map[string]CmdFile `json:"copyIn"`

	CopyOutCached []string `json:"copyOutCached,omitempty"`
}

// Request defines single go-judge request
type Request struct {
	RequestID string `json:"requestId"`
	Cmd       []Cmd  `json:"cmd"`
}

// Response defines go-judge response for single request
type Response struct {
	RequestID string                  `json:"requestId"`
	Results   []sandbox.GoJudgeResult `json:"results"`
	ErrorMsg  string                  `json:"error,omitempty"`
}

func memoryFile(content string) *CmdFile {
	return &CmdFile{Content: &content}
}

func cachedFile(id string) *CmdFile {
	return &CmdFile{FileID: &id}
}

func collector(name string, max int64) *CmdFile {
	return &CmdFile{Name: &name, Max: &max}
}
