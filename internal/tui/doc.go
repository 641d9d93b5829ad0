// Package tui renders mirror status reports for the terminal.
package tui
