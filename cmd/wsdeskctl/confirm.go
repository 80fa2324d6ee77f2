package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// answers, when set, feeds confirmations from a reader that already owns
// stdin (see watch).
var answers <-chan string

// confirm asks on the terminal unless --yes was given. Anything but an
// explicit yes declines.
func confirm(ctx context.Context, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", prompt)
	line, ok := readAnswer(ctx)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func readAnswer(ctx context.Context) (string, bool) {
	if answers != nil {
		select {
		case line, ok := <-answers:
			return line, ok
		case <-ctx.Done():
			return "", false
		}
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return line, true
}

// readLines sends each line of r to out and closes out at EOF.
func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out <- strings.TrimSpace(sc.Text())
	}
}
