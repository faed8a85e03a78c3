package types

import (
	"fmt"
)

// Status defines the category of an execution outcome
type Status int

// Defines outcome categories
const (
	// not initialized status (as error)
	StatusInvalid Status = iota

	// program ran to completion
	StatusSuccess

	// verdicts reported by the sandbox
	StatusCompileError
	StatusRuntimeError
	StatusTimedOut       // TLE
	StatusMemoryExceeded // MLE

	// no verdict: network / HTTP / rate limit failure
	StatusTransportError
)

var statusToString = []string{
	"Invalid",
	"Success",
	"Compile Error",
	"Runtime Error",
	"Time Limit Exceeded",
	"Memory Limit Exceeded",
	"Transport Error",
}

// stringToStatus map string to corresponding Status
var stringToStatus = make(map[string]Status)

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return statusToString[0] // invalid
	}
	return statusToString[si]
}

// StringToStatus convert string to Status
func StringToStatus(s string) (Status, error) {
	v, ok := stringToStatus[s]
	if !ok {
		return 0, fmt.Errorf("invalid string converting: %s", s)
	}
	return v, nil
}

// MarshalJSON convert status into string
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

// UnmarshalJSON convert string into status
func (s *Status) UnmarshalJSON(b []byte) error {
	str := string(b)
	if len(str) < 2 || str[0] != '"' || str[len(str)-1] != '"' {
		return fmt.Errorf("invalid status json: %s", str)
	}
	v, err := StringToStatus(str[1 : len(str)-1])
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func init() {
	for i, v := range statusToString {
		stringToStatus[v] = Status(i)
	}
}
