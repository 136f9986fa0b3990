// Package host declares the narrow capabilities the scanner consumes from the
// content-authoring application: its scene document, background jobs,
// scripting runtime, dialogs and process control. Implementations live in
// internal/offline (standalone CLI) and internal/host/hosttest (tests).
package host
