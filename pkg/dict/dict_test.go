package dict

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

// checkInvariants verifies the structural invariants of d without moving
// any entries.
func checkInvariants(t *testing.T, d *Dict) {
	t.Helper()

	checkTable(t, "primary", d.primary)
	if d.mig == nil {
		return
	}
	checkTable(t, "old", d.mig.old)

	if d.mig.old.BucketCount() >= d.primary.BucketCount() {
		t.Errorf("old buckets = %d, want fewer than primary (%d)",
			d.mig.old.BucketCount(), d.primary.BucketCount())
	}
	for i := 0; i < d.mig.cursor && i < len(d.mig.old.buckets); i++ {
		if !d.mig.old.buckets[i].empty() {
			t.Errorf("old bucket %d behind cursor %d is not empty", i, d.mig.cursor)
		}
	}
	for i := range d.mig.old.buckets {
		for e := d.mig.old.buckets[i].head; e != nil; e = e.next {
			if d.primary.Get(e.key) != nil {
				t.Errorf("key %q present in both tables", e.key)
			}
		}
	}
}

func checkTable(t *testing.T, name string, ht *HashTable) {
	t.Helper()
	n := 0
	for i := range ht.buckets {
		n += ht.buckets[i].len()
		for e := ht.buckets[i].head; e != nil; e = e.next {
			if want := ht.hash(e.key) & ht.mask; want != uint64(i) {
				t.Errorf("%s: key %q in bucket %d, want %d", name, e.key, i, want)
			}
		}
	}
	if n != ht.items {
		t.Errorf("%s: items = %d, chains hold %d", name, ht.items, n)
	}
}

// ============================================================
// Basic operations
// ============================================================

func TestDict_Insert(t *testing.T) {
	d := New()

	old, replaced := d.Insert("hi", "baby")
	if replaced || old != "" {
		t.Errorf("Insert() = (%q, %v), want (\"\", false)", old, replaced)
	}
	if d.Size() != 1 {
		t.Errorf("Size() = %d, want 1", d.Size())
	}

	old, replaced = d.Insert("hi", "something else")
	if !replaced || old != "baby" {
		t.Errorf("Insert() = (%q, %v), want (\"baby\", true)", old, replaced)
	}
	if d.Size() != 1 {
		t.Errorf("Size() after upsert = %d, want 1", d.Size())
	}

	d.Insert("hello", "yellow")
	if d.Size() != 2 {
		t.Errorf("Size() = %d, want 2", d.Size())
	}
}

func TestDict_GetAndRemove(t *testing.T) {
	d := New()
	d.Insert("a", "1")
	d.Insert("b", "2")

	if v, ok := d.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = (%q, %v), want (\"1\", true)", v, ok)
	}
	if _, ok := d.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}

	v, ok := d.Remove("a")
	if !ok || v != "1" {
		t.Errorf("Remove(a) = (%q, %v), want (\"1\", true)", v, ok)
	}
	if _, ok := d.Remove("a"); ok {
		t.Error("second Remove(a) should report false")
	}
	if d.Size() != 1 {
		t.Errorf("Size() = %d, want 1", d.Size())
	}
}

func TestDict_EntryIsMutable(t *testing.T) {
	d := New()
	d.Insert("k", "v1")

	e := d.Entry("k")
	if e == nil {
		t.Fatal("Entry(k) returned nil")
	}
	if e.Key() != "k" {
		t.Errorf("Key() = %q, want k", e.Key())
	}
	e.Value = "v2"

	if v, _ := d.Get("k"); v != "v2" {
		t.Errorf("Get(k) = %q, want v2", v)
	}
}

// ============================================================
// Migration
// ============================================================

func TestDict_EighteenKeysMigrateOnce(t *testing.T) {
	d := New()

	for i := 0; i < 18; i++ {
		k := fmt.Sprintf("%d", i)
		d.Insert(k, k)
		checkInvariants(t, d)
	}

	// Drive the migration to completion with reads.
	for i := 0; d.mig != nil && i < 100; i++ {
		d.Get("???")
		checkInvariants(t, d)
	}

	st := d.Stats()
	if st.Migrations != 1 {
		t.Errorf("Migrations = %d, want 1", st.Migrations)
	}
	if st.Migrating || st.SecondaryBuckets != 0 {
		t.Errorf("secondary still allocated: %+v", st)
	}
	if st.PrimaryBuckets != 2*DefaultInitialBuckets {
		t.Errorf("PrimaryBuckets = %d, want %d", st.PrimaryBuckets, 2*DefaultInitialBuckets)
	}
	for i := 0; i < 18; i++ {
		k := fmt.Sprintf("%d", i)
		if v, ok := d.Get(k); !ok || v != k {
			t.Errorf("Get(%s) = (%q, %v), want (%q, true)", k, v, ok, k)
		}
	}
	if d.Size() != 18 {
		t.Errorf("Size() = %d, want 18", d.Size())
	}
}

func TestDict_MigrationStartsAboveThreshold(t *testing.T) {
	d := New(WithInitialBuckets(4), WithLoadFactor(2))

	// Integer load factor: 11/4 == 2 is not above the threshold.
	for i := 0; i < 11; i++ {
		d.Insert(fmt.Sprintf("k%d", i), "v")
	}
	if d.mig != nil {
		t.Fatal("migration started at load factor 2")
	}

	d.Insert("k11", "v")
	if d.mig == nil {
		t.Fatal("migration not started at load factor 3")
	}
	st := d.Stats()
	if st.PrimaryBuckets != 8 || st.SecondaryBuckets != 4 {
		t.Errorf("buckets = (%d, %d), want (8, 4)", st.PrimaryBuckets, st.SecondaryBuckets)
	}
	if st.SecondaryItems != 12 || st.Cursor != 0 {
		t.Errorf("secondary = %d items at cursor %d, want 12 at 0", st.SecondaryItems, st.Cursor)
	}
}

func TestDict_StepRespectsBudget(t *testing.T) {
	d := New(WithMigrateBudget(3))
	for i := 0; i < 12; i++ {
		d.Insert(fmt.Sprintf("k%d", i), "v")
	}
	if d.mig == nil {
		t.Fatal("expected a migration")
	}

	before := d.Stats().EntriesMoved
	d.Get("k0")
	moved := d.Stats().EntriesMoved - before
	if moved != 3 {
		t.Errorf("entries moved in one call = %d, want 3", moved)
	}
	checkInvariants(t, d)
}

func TestDict_UpsertDuringMigration(t *testing.T) {
	d := New(WithMigrateBudget(1))
	for i := 0; i < 12; i++ {
		d.Insert(fmt.Sprintf("k%d", i), "old")
	}
	if d.mig == nil {
		t.Fatal("expected a migration")
	}

	for i := 0; i < 12; i++ {
		k := fmt.Sprintf("k%d", i)
		prev, replaced := d.Insert(k, "new")
		if !replaced || prev != "old" {
			t.Errorf("Insert(%s) = (%q, %v), want (\"old\", true)", k, prev, replaced)
		}
		checkInvariants(t, d)
	}
	if d.Size() != 12 {
		t.Errorf("Size() = %d, want 12", d.Size())
	}
	for i := 0; i < 12; i++ {
		if v, _ := d.Get(fmt.Sprintf("k%d", i)); v != "new" {
			t.Errorf("Get(k%d) = %q, want new", i, v)
		}
	}
}

func TestDict_RemoveDuringMigration(t *testing.T) {
	d := New(WithMigrateBudget(1))
	for i := 0; i < 12; i++ {
		d.Insert(fmt.Sprintf("k%d", i), "v")
	}

	for i := 0; i < 12; i++ {
		if _, ok := d.Remove(fmt.Sprintf("k%d", i)); !ok {
			t.Errorf("Remove(k%d) reported missing", i)
		}
		checkInvariants(t, d)
	}
	if d.Size() != 0 {
		t.Errorf("Size() = %d, want 0", d.Size())
	}
	if d.mig != nil {
		t.Error("migration should end once the old table is empty")
	}
}

func TestDict_StartMigrationPanics(t *testing.T) {
	t.Run("below threshold", func(t *testing.T) {
		d := New()
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		d.startMigration()
	})

	t.Run("already migrating", func(t *testing.T) {
		d := New()
		for i := 0; i < 12; i++ {
			d.Insert(fmt.Sprintf("k%d", i), "v")
		}
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		d.startMigration()
	})
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"non power of two", WithInitialBuckets(3)},
		{"zero buckets", WithInitialBuckets(0)},
		{"zero load factor", WithLoadFactor(0)},
		{"zero budget", WithMigrateBudget(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			New(tt.opt)
		})
	}
}

// ============================================================
// Model check
// ============================================================

func TestDict_RandomOpsMatchMap(t *testing.T) {
	hashes := map[string]HashFunc{
		"murmur3": Murmur3(7),
		"xxhash":  XXHash(7),
	}

	for name, h := range hashes {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			d := New(WithHashFunc(h))
			model := make(map[string]string)

			for i := 0; i < 5000; i++ {
				k := fmt.Sprintf("key-%d", rng.IntN(800))
				switch rng.IntN(3) {
				case 0, 1:
					v := fmt.Sprintf("v%d", i)
					prev, replaced := d.Insert(k, v)
					want, existed := model[k]
					if replaced != existed || prev != want {
						t.Fatalf("Insert(%s) = (%q, %v), want (%q, %v)", k, prev, replaced, want, existed)
					}
					model[k] = v
				case 2:
					got, ok := d.Remove(k)
					want, existed := model[k]
					if ok != existed || got != want {
						t.Fatalf("Remove(%s) = (%q, %v), want (%q, %v)", k, got, ok, want, existed)
					}
					delete(model, k)
				}

				if i%97 == 0 {
					checkInvariants(t, d)
				}
				if d.Size() != len(model) {
					t.Fatalf("step %d: Size() = %d, want %d", i, d.Size(), len(model))
				}
			}

			for k, want := range model {
				if got, ok := d.Get(k); !ok || got != want {
					t.Errorf("Get(%s) = (%q, %v), want (%q, true)", k, got, ok, want)
				}
			}
			if d.Stats().Migrations == 0 {
				t.Error("expected at least one migration")
			}
		})
	}
}
