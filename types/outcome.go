package types

// Fixed user facing messages
const (
	NoOutputPlaceholder = "Program executed successfully (no output)"
	UnknownErrorDetails = "unknown error"
	RateLimitedMessage  = "Too many requests. Please wait a few seconds and try again."

	timedOutMessage       = "Error: time limit exceeded"
	memoryExceededMessage = "Error: memory limit exceeded"
)

// Outcome is the normalized result of one run.
// Exactly one of the cases is populated: Stdout is only set for StatusSuccess
// and Details only for the failure statuses.
type Outcome struct {
	Status  Status `json:"status"`
	Stdout  string `json:"stdout,omitempty"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful outcome
func Success(stdout string) Outcome {
	return Outcome{Status: StatusSuccess, Stdout: stdout}
}

// CompileError creates a compile error outcome carrying compiler diagnostics
func CompileError(details string) Outcome {
	return Outcome{Status: StatusCompileError, Details: details}
}

// RuntimeError creates a runtime error outcome
func RuntimeError(details string) Outcome {
	return Outcome{Status: StatusRuntimeError, Details: details}
}

// TimedOut creates a time limit exceeded outcome
func TimedOut() Outcome {
	return Outcome{Status: StatusTimedOut}
}

// MemoryExceeded creates a memory limit exceeded outcome
func MemoryExceeded() Outcome {
	return Outcome{Status: StatusMemoryExceeded}
}

// TransportError creates an outcome for failures before any verdict existed
func TransportError(message string) Outcome {
	return Outcome{Status: StatusTransportError, Details: message}
}

// IsSuccess reports whether the program ran to completion
func (o Outcome) IsSuccess() bool {
	return o.Status == StatusSuccess
}

// IsUnknown reports whether the sandbox response could not be mapped to any category
func (o Outcome) IsUnknown() bool {
	return o.Status == StatusRuntimeError && o.Details == UnknownErrorDetails
}

// Message renders the outcome as a category prefixed message for the user
func (o Outcome) Message() string {
	switch o.Status {
	case StatusSuccess:
		return o.Stdout
	case StatusCompileError:
		return "Compile error:\n" + o.Details
	case StatusRuntimeError:
		return "Runtime error:\n" + o.Details
	case StatusTimedOut:
		return timedOutMessage
	case StatusMemoryExceeded:
		return memoryExceededMessage
	case StatusTransportError:
		return "Error: " + o.Details
	default:
		return "Error: " + UnknownErrorDetails
	}
}

func (o Outcome) String() string {
	if o.Status == StatusSuccess {
		return o.Status.String()
	}
	if o.Details == "" {
		return o.Status.String()
	}
	return o.Status.String() + ": " + o.Details
}
