//go:build chandebug

package channels

// debugChecks enables programmer-error detection that is elided from
// regular builds, such as rejecting overlapping Recv calls on one
// channel.
const debugChecks = true
