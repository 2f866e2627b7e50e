// Package pricing computes estimated prices for catalog entries.
//
// Every function is pure: no storage, network or clock access, and no errors. Missing or
// malformed inputs degrade to a zero or flat-fallback price so a render is never aborted.
// Prices are estimates; the downstream booking system is authoritative.
package pricing
