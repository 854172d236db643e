package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel is the identifier that maps to the process's standard input
// (as an input) or standard output (as an output).
const Sentinel = "-"

var (
	ErrInvalidRequest = errors.New("invalid stream request")
	ErrInvalidWindow  = errors.New("window length must be a positive integer")
	ErrDuplicateInput = errors.New("duplicate input identifier")
)

// Request is the user-declared intent for one stream. It is immutable and
// identified by its Input.
type Request struct {
	Window int    `json:"window" yaml:"window" toml:"window"`
	Input  string `json:"input" yaml:"input" toml:"input"`
	Output string `json:"output" yaml:"output" toml:"output"`
}

// String describes the request in log-friendly form.
func (r Request) String() string {
	return fmt.Sprintf("stream(window=%d, in=%s, out=%s)", r.Window, r.Input, r.Output)
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if r.Window <= 0 {
		return fmt.Errorf("%w: got %d for input %q", ErrInvalidWindow, r.Window, r.Input)
	}
	if r.Input == "" {
		return fmt.Errorf("%w: empty input identifier", ErrInvalidRequest)
	}
	if r.Output == "" {
		return fmt.Errorf("%w: empty output identifier for input %q", ErrInvalidRequest, r.Input)
	}
	return nil
}

// ParseRequest parses a "window,input,output" triple.
func ParseRequest(arg string) (Request, error) {
	fields := strings.Split(arg, ",")
	if len(fields) != 3 {
		return Request{}, fmt.Errorf("%w: %q: expected window,input,output", ErrInvalidRequest, arg)
	}

	window, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Request{}, fmt.Errorf("%w: %q: %v", ErrInvalidWindow, arg, err)
	}

	req := Request{Window: window, Input: fields[1], Output: fields[2]}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ParseRequests parses every triple in args, in order.
func ParseRequests(args []string) ([]Request, error) {
	reqs := make([]Request, 0, len(args))
	for _, arg := range args {
		req, err := ParseRequest(arg)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// CheckUnique validates every request and rejects two requests sharing an
// input identifier.
func CheckUnique(reqs []Request) error {
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return err
		}
		if _, dup := seen[req.Input]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateInput, req.Input)
		}
		seen[req.Input] = struct{}{}
	}
	return nil
}

// Inputs returns the input identifiers of reqs in declaration order.
func Inputs(reqs []Request) []string {
	ids := make([]string, len(reqs))
	for i, req := range reqs {
		ids[i] = req.Input
	}
	return ids
}
