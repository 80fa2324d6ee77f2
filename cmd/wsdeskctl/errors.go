package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/notify"
)

// reportedError marks an error the user has already been shown as a
// notification or alert.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	return reportedError{err}
}

func printError(err error) {
	var r reportedError
	if errors.As(err, &r) {
		return
	}
	fmt.Fprintln(os.Stderr, notify.Badge(notify.SeverityError)+" Error: "+core.Message(err))
}
