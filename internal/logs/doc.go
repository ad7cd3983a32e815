// Package logs reads the matchtracker log file for the logs command: the
// last lines, an optional run filter, and a polling follow mode.
package logs
