package ports

import "context"

// Command is an external program invocation
type Command struct {
	Name string
	Args []string
	Dir  string // working directory, empty for the current one
}

// CommandResult reports how an external program finished
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner runs external programs synchronously.
// A program that starts and exits non-zero is not an error: callers inspect ExitCode.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}
