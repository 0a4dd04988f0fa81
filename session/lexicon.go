package session

// DefaultLexicon returns the executor's built-in command words plus the
// local clear directive, in completion order.
func DefaultLexicon() []string {
	return []string{"about", "cd", "clear", "echo", "help", "ls", "pwd", "whoami"}
}
