// Package textutil provides filename sanitization helpers.
//
// StripIllegal removes the characters Windows rejects, CleanSuggestion also
// drops control runes from model suggestions, and FallbackFileName produces
// the deterministic ASCII name used when no suggestion is available.
package textutil
