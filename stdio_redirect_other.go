//go:build !unix

package main

import "os"

// Without dup2 runtime panics still go to the inherited stderr; only Go-level
// writes through os.Stdout/os.Stderr are captured.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
