package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (no repository, invalid config or source)
	ExitDataError    = 3 // Data error (malformed input, unreadable studies)
	ExitNetworkError = 4 // Study site unreachable
)
