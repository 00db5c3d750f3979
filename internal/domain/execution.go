package domain

// ExecutionResult is the raw outcome of one shell command. It is owned
// by the executing request and never cached or shared.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}
