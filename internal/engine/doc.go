// Package engine drives scan sessions for mayascan. It pairs the host's file
// event callbacks with the reference tracker, runs explicit scans of the
// current scene, a file or a directory tree, and resolves each operation into
// the save, quit and exit-code decision. This package is internal; external
// consumers should use the stable facade in pkg/core.
package engine
