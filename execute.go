package knitout

import (
	"os"
)

// Execute parses text as a knitout program and runs it to completion,
// mirroring run_knitout.py's top-level run_knitout entry point.
func Execute(source, text string, opts ...ExecuterOption) (*Program, error) {
	p, err := ParseProgram(source, text)
	if err != nil {
		return nil, err
	}
	return NewExecuter(opts...).Execute(p)
}

// ExecuteFile reads path and runs it to completion.
func ExecuteFile(path string, opts ...ExecuterOption) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Execute(path, string(data), opts...)
}
