package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// ShowProgress runs fn with a spinner and message on stderr. Outside a TTY
// it logs the message and just runs fn.
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !IsTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}

	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	done := make(chan error, 1)
	spinnerDone := make(chan struct{})
	spinnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-spinnerCtx.Done():
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				fmt.Fprintf(os.Stderr, "\r%s %s", progressStyle.Render(char), message)
				i++
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		cancel()
		<-spinnerDone
		if err != nil {
			fmt.Fprintf(os.Stderr, "\r%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		fmt.Fprintf(os.Stderr, "\r%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		cancel()
		<-spinnerDone
		return ctx.Err()
	}
}

// IsTerminal checks if the writer is a terminal
func IsTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if IsTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if IsTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if IsTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if IsTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
