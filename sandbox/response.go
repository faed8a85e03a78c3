package sandbox

// Judge0 status ids
const (
	Judge0InQueue       = 1
	Judge0Processing    = 2
	Judge0Accepted      = 3
	Judge0TimeLimit     = 6
	Judge0MemoryLimit   = 7
	Judge0InternalError = 13
)

// Judge0Status is the status object of a Judge0 submission
type Judge0Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Judge0Response is a Judge0 submission with base64_encoded=false
type Judge0Response struct {
	Token         string        `json:"token,omitempty"`
	Stdout        string        `json:"stdout"`
	Stderr        string        `json:"stderr"`
	CompileOutput string        `json:"compile_output"`
	Message       string        `json:"message"`
	Status        *Judge0Status `json:"status"`
	Time          string        `json:"time,omitempty"`
	Memory        int           `json:"memory,omitempty"`
}

// Backend implements RawResponse
func (*Judge0Response) Backend() Kind { return KindJudge0 }

// Finished reports whether the submission left the queue
func (r *Judge0Response) Finished() bool {
	return r.Status != nil && r.Status.ID != Judge0InQueue && r.Status.ID != Judge0Processing
}

// Piston run status reported by newer Piston versions
const (
	PistonStatusTimeout  = "TO"
	PistonStatusSignal   = "SG"
	PistonStatusOutput   = "OL"
	PistonStatusError    = "RE"
	PistonStatusInternal = "XX"
)

// PistonStage is the compile or run stage of a Piston execution
type PistonStage struct {
	Stdout  string  `json:"stdout"`
	Stderr  string  `json:"stderr"`
	Output  string  `json:"output"`
	Code    *int    `json:"code"`
	Signal  *string `json:"signal"`
	Status  string  `json:"status,omitempty"`
	Message string  `json:"message,omitempty"`
}

// PistonResponse is the response of Piston /execute
type PistonResponse struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Compile  *PistonStage `json:"compile,omitempty"`
	Run      *PistonStage `json:"run,omitempty"`
}

// Backend implements RawResponse
func (*PistonResponse) Backend() Kind { return KindPiston }

// go-judge result status strings
const (
	GoJudgeAccepted      = "Accepted"
	GoJudgeMemoryLimit   = "Memory Limit Exceeded"
	GoJudgeTimeLimit     = "Time Limit Exceeded"
	GoJudgeOutputLimit   = "Output Limit Exceeded"
	GoJudgeFileError     = "File Error"
	GoJudgeNonZeroExit   = "Nonzero Exit Status"
	GoJudgeSignalled     = "Signalled"
	GoJudgeInternalError = "Internal Error"
	GoJudgeDangerousCall = "Dangerous Syscall"
	GoJudgeInvalidStatus = "Invalid"
)

// GoJudgeStatusName converts the numeric go-judge status to its string form
func GoJudgeStatusName(s int) string {
	if s < 0 || s >= len(goJudgeStatusNames) {
		return GoJudgeInvalidStatus
	}
	return goJudgeStatusNames[s]
}

var goJudgeStatusNames = []string{
	GoJudgeInvalidStatus,
	GoJudgeAccepted,
	"Wrong Answer",
	"Partially Correct",
	GoJudgeMemoryLimit,
	GoJudgeTimeLimit,
	GoJudgeOutputLimit,
	GoJudgeFileError,
	GoJudgeNonZeroExit,
	GoJudgeSignalled,
	GoJudgeDangerousCall,
	"Judgement Failed",
	"Invalid Interaction",
	GoJudgeInternalError,
}

// GoJudgeResult is the result of a single go-judge command
type GoJudgeResult struct {
	Status     string            `json:"status"`
	ExitStatus int               `json:"exitStatus"`
	Error      string            `json:"error,omitempty"`
	Time       uint64            `json:"time"`
	Memory     uint64            `json:"memory"`
	RunTime    uint64            `json:"runTime"`
	Files      map[string]string `json:"files,omitempty"`
	FileIDs    map[string]string `json:"fileIds,omitempty"`
}

// Stdout returns the collected standard output
func (r *GoJudgeResult) Stdout() string { return r.Files["stdout"] }

// Stderr returns the collected standard error
func (r *GoJudgeResult) Stderr() string { return r.Files["stderr"] }

// GoJudgeResponse holds the compile step (nil for interpreted languages)
// and the run step (nil when compilation failed)
type GoJudgeResponse struct {
	Compile *GoJudgeResult `json:"compile,omitempty"`
	Run     *GoJudgeResult `json:"run,omitempty"`
}

// Backend implements RawResponse
func (*GoJudgeResponse) Backend() Kind { return KindGoJudge }
