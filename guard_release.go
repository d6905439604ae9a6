//go:build !chandebug

package channels

const debugChecks = false
