// Package review lets a person confirm or correct extracted values before the
// orchestrator writes them into a form.
package review
