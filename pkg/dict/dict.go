package dict

import "fmt"

// Defaults for a new Dict.
const (
	// DefaultInitialBuckets is the bucket count of a fresh primary table.
	DefaultInitialBuckets = 4

	// DefaultLoadFactor is the entries-per-bucket threshold above which the
	// primary table starts migrating into a table twice its size.
	DefaultLoadFactor = 2

	// DefaultMigrateBudget is the number of entries moved per public call
	// while a migration is in progress.
	DefaultMigrateBudget = 2
)

// migration is the "growing" state of a Dict: old is being drained into the
// primary table, starting at bucket cursor. A Dict that is not growing has a
// nil migration.
type migration struct {
	old    *HashTable
	cursor int
}

// Stats is a point-in-time view of a Dict.
type Stats struct {
	Size             int    `json:"size"`
	PrimaryBuckets   int    `json:"primary_buckets"`
	SecondaryBuckets int    `json:"secondary_buckets"`
	SecondaryItems   int    `json:"secondary_items"`
	Migrating        bool   `json:"migrating"`
	Cursor           int    `json:"cursor"`
	Migrations       uint64 `json:"migrations"`
	MigrationsDone   uint64 `json:"migrations_done"`
	EntriesMoved     uint64 `json:"entries_moved"`
}

// Dict is a hash dictionary that grows incrementally. Every public method
// first moves at most the migrate budget of entries from the old table (if
// any) into the primary table and then performs its operation.
type Dict struct {
	primary *HashTable
	mig     *migration

	loadFactor int
	budget     int
	initial    int
	hash       HashFunc

	migrations     uint64
	migrationsDone uint64
	moved          uint64
}

// Option configures a Dict.
type Option func(*Dict)

// WithLoadFactor sets the growth threshold in entries per bucket.
func WithLoadFactor(n int) Option {
	return func(d *Dict) {
		d.loadFactor = n
	}
}

// WithMigrateBudget sets how many entries each call may move.
func WithMigrateBudget(n int) Option {
	return func(d *Dict) {
		d.budget = n
	}
}

// WithInitialBuckets sets the bucket count of the first primary table.
// n must be a power of two.
func WithInitialBuckets(n int) Option {
	return func(d *Dict) {
		d.initial = n
	}
}

// WithHashFunc sets the hash function shared by both tables.
func WithHashFunc(h HashFunc) Option {
	return func(d *Dict) {
		d.hash = h
	}
}

// New creates a Dict with an allocated primary table.
func New(opts ...Option) *Dict {
	d := &Dict{
		loadFactor: DefaultLoadFactor,
		budget:     DefaultMigrateBudget,
		initial:    DefaultInitialBuckets,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.hash == nil {
		d.hash = DefaultHash()
	}
	if d.initial <= 0 {
		panic(fmt.Sprintf("dict: initial bucket count must be positive, got %d", d.initial))
	}
	if d.loadFactor < 1 {
		panic(fmt.Sprintf("dict: load factor must be at least 1, got %d", d.loadFactor))
	}
	if d.budget < 1 {
		panic(fmt.Sprintf("dict: migrate budget must be at least 1, got %d", d.budget))
	}
	d.primary = NewHashTable(d.initial, d.hash)
	return d
}

// Insert stores value under key and returns the previous value, if any.
// It may start a migration when the primary table's load factor exceeds
// the threshold.
func (d *Dict) Insert(key, value string) (old string, replaced bool) {
	d.step()

	if d.mig != nil {
		if e := d.mig.old.Get(key); e != nil {
			old, e.Value = e.Value, value
			return old, true
		}
	}

	old, replaced = d.primary.Insert(key, value)
	if d.mig == nil && d.primary.LoadFactor() > d.loadFactor {
		d.startMigration()
	}
	return old, replaced
}

// Get returns the value stored under key.
func (d *Dict) Get(key string) (string, bool) {
	e := d.Entry(key)
	if e == nil {
		return "", false
	}
	return e.Value, true
}

// Entry returns the entry for key, or nil. The entry's Value may be set
// through the returned pointer; it stays valid until the key is removed.
func (d *Dict) Entry(key string) *Entry {
	d.step()
	if e := d.primary.Get(key); e != nil {
		return e
	}
	if d.mig != nil {
		return d.mig.old.Get(key)
	}
	return nil
}

// Remove deletes key and returns the value it held.
func (d *Dict) Remove(key string) (string, bool) {
	d.step()
	e := d.primary.Remove(key)
	if e == nil && d.mig != nil {
		e = d.mig.old.Remove(key)
	}
	if e == nil {
		return "", false
	}
	return e.Value, true
}

// Size returns the number of keys across both tables.
func (d *Dict) Size() int {
	d.step()
	return d.len()
}

// Stats returns a snapshot of the dictionary without moving any entries.
func (d *Dict) Stats() Stats {
	st := Stats{
		Size:           d.len(),
		PrimaryBuckets: d.primary.BucketCount(),
		Migrations:     d.migrations,
		MigrationsDone: d.migrationsDone,
		EntriesMoved:   d.moved,
	}
	if d.mig != nil {
		st.Migrating = true
		st.Cursor = d.mig.cursor
		st.SecondaryBuckets = d.mig.old.BucketCount()
		st.SecondaryItems = d.mig.old.Len()
	}
	return st
}

func (d *Dict) len() int {
	n := d.primary.Len()
	if d.mig != nil {
		n += d.mig.old.Len()
	}
	return n
}

// startMigration demotes the primary table and allocates a new primary with
// twice the buckets.
func (d *Dict) startMigration() {
	if d.mig != nil {
		panic("dict: migration already in progress")
	}
	if d.primary.LoadFactor() <= d.loadFactor {
		panic(fmt.Sprintf("dict: migration started at load factor %d (threshold %d)",
			d.primary.LoadFactor(), d.loadFactor))
	}
	d.mig = &migration{
		old:    d.primary,
		cursor: 0,
	}
	d.primary = NewHashTable(d.primary.BucketCount()*2, d.hash)
	d.migrations++
}

// step moves up to budget entries from the old table into the primary.
// Empty buckets are skipped without consuming budget.
func (d *Dict) step() {
	m := d.mig
	if m == nil {
		return
	}
	if m.cursor < 0 || m.cursor > len(m.old.buckets) {
		panic(fmt.Sprintf("dict: migration cursor %d out of range [0, %d]", m.cursor, len(m.old.buckets)))
	}

	budget := d.budget
	for budget > 0 && m.cursor < len(m.old.buckets) {
		b := &m.old.buckets[m.cursor]
		for budget > 0 {
			e := b.popFront()
			if e == nil {
				break
			}
			m.old.items--
			d.primary.adopt(e)
			d.moved++
			budget--
		}
		if !b.empty() {
			// Budget ran out mid-bucket; resume here next call.
			break
		}
		m.cursor++
	}

	if m.old.items == 0 || m.cursor >= len(m.old.buckets) {
		d.mig = nil
		d.migrationsDone++
	}
}
