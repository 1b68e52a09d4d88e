package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0
	ExitError       = 2 // Bad input or runtime error
	ExitUnavailable = 3 // Model server unreachable (status only)
)

// UnavailableError reports that the model server did not answer its health probe.
type UnavailableError struct {
	BaseURL string
	Reason  string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("model server at %s is unavailable", e.BaseURL)
	}
	return fmt.Sprintf("model server at %s is unavailable: %s", e.BaseURL, e.Reason)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var unavailable *UnavailableError
		if errors.As(err, &unavailable) {
			os.Exit(ExitUnavailable)
		}
		os.Exit(ExitError)
	}
}
