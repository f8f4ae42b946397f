// Package memory provides the in-memory key-value store served by rehashkv.
//
// Store wraps a single incrementally-rehashing dictionary (pkg/dict) behind
// one mutex. Each public method is one lock scope, so a command executed
// through the store sees and leaves the dictionary in a consistent state
// even when the admin endpoints or several event loops share it.
//
// Thread Safety:
//
// All operations are thread-safe. Stats never advances a
// migration; Get, Set, Delete and Len do.
package memory
