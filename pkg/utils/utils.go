package utils

import (
	"log"
	"strings"
)

// ContainsString checks if a slice of strings contains a specific string.
func ContainsString(slice []string, str string) bool {
	for _, item := range slice {
		if item == str {
			return true
		}
	}
	return false
}

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// NormalizeTicker strips an exchange prefix, e.g. "NASDAQ:AAPL" -> "AAPL".
func NormalizeTicker(ticker string) string {
	if idx := strings.LastIndex(ticker, ":"); idx >= 0 {
		return ticker[idx+1:]
	}
	return ticker
}
