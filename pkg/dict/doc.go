// Package dict provides a string-keyed hash dictionary that grows without
// stalling its caller.
//
// The dictionary is built from two layers:
//
//   - HashTable: a fixed-size, power-of-two array of singly linked bucket
//     chains. It never resizes itself.
//   - Dict: owns a primary HashTable and, while growing, the previous
//     (smaller) table. Every public call moves a bounded number of entries
//     from the old table into the new one, so the cost of a full rehash is
//     spread across many operations.
//
// Usage:
//
//	d := dict.New()
//	d.Insert("key", "value")
//	v, ok := d.Get("key")
//
// Thread Safety:
//
// Dict is not safe for concurrent use. A migration step mutates both tables
// and the cursor as one unit, so callers sharing a Dict across goroutines
// must serialize every call (see internal/storage/memory).
package dict
