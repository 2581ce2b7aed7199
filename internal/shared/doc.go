// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler for asserting
// on log output and fixtures that write small raw crime tables to disk.
// It is imported from _test.go files only.
package shared
