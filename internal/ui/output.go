// Package ui provides terminal output helpers for the local CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// Center pads text on the left so it appears centered within width.
// Text wider than width is returned unchanged.
func Center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	pad := (width - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}

// Header prints a boxed section title.
func Header(title string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(Center(title, headerWidth))
	headerColor.Println(line)
}

// Step prints a numbered progress step, e.g. "[2/4] Parsing file".
func Step(n, total int, msg string) {
	stepColor.Printf("[%d/%d] %s\n", n, total, msg)
}

// Success prints a green checkmark line.
func Success(msg string) {
	successColor.Printf("✓ %s\n", msg)
}

// Errorf prints a red error line.
func Errorf(format string, args ...interface{}) {
	errorColor.Printf("✗ "+format+"\n", args...)
}

// Field prints an aligned name/value line for summaries.
func Field(name, value string) {
	fmt.Printf("  %-18s %s\n", name+":", value)
}
