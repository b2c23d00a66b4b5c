// Package ui renders terminal output for the CLI.
//
// [ProgressPrinter] prints one line per [tasks.ProgressUpdate] with a static bar from charmbracelet/bubbles/progress,
// [Prompt] asks the overwrite confirmation, and [Summary] formats the final report. All colors come from a
// lipgloss [Palette].
package ui
