// Package offline implements host.Host for the standalone mayascan binary.
//
// Without a running Maya there is no job registry and no MEL interpreter, so
// those capabilities report nothing and refuse edits. The document is a Maya
// ASCII scene read from disk; referenced scenes are layered on top read-only,
// the way Maya locks nodes that come from a reference.
package offline
