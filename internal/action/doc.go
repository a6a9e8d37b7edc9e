// Package action implements the sinks a firing schedule can invoke.
//
// Two built-ins are provided: "log" writes a structured log line, and
// "command" runs a shell command. The Dispatcher resolves an action name
// and applies a global rate limit so a misconfigured dense schedule
// (e.g. "* * * * *" across many entries) cannot stampede the host.
package action
