// Package scanner finds infected artifacts. Each pass covers one artifact
// class and returns zero or more findings; script files yield at most one
// finding per well-known name.
package scanner
