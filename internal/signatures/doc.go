// Package signatures holds the fixed markers of the MayaMelUIConfigurationFile
// infection and the match predicate for each artifact class. Matching is pure:
// callers supply content, names and descriptions read from the host.
package signatures
