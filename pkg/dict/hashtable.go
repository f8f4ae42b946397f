package dict

import "fmt"

// Entry is a key/value pair stored in a bucket chain.
// The key is fixed at creation; the value may be updated in place.
type Entry struct {
	key   string
	Value string
	next  *Entry
}

// Key returns the entry's key.
func (e *Entry) Key() string {
	return e.key
}

// chain is a singly linked list of entries sharing a bucket.
type chain struct {
	head *Entry
}

func (c *chain) pushFront(e *Entry) {
	e.next = c.head
	c.head = e
}

func (c *chain) popFront() *Entry {
	e := c.head
	if e == nil {
		return nil
	}
	c.head = e.next
	e.next = nil
	return e
}

func (c *chain) find(key string) *Entry {
	for e := c.head; e != nil; e = e.next {
		if e.key == key {
			return e
		}
	}
	return nil
}

func (c *chain) remove(key string) *Entry {
	link := &c.head
	for e := *link; e != nil; e = *link {
		if e.key == key {
			*link = e.next
			e.next = nil
			return e
		}
		link = &e.next
	}
	return nil
}

func (c *chain) empty() bool {
	return c.head == nil
}

func (c *chain) len() int {
	n := 0
	for e := c.head; e != nil; e = e.next {
		n++
	}
	return n
}

// HashTable is a fixed-size chained hash table. The bucket count is zero
// (unallocated) or a power of two, so the bucket index is hash & mask.
// A HashTable never resizes itself; growth is the job of Dict.
type HashTable struct {
	buckets []chain
	mask    uint64
	items   int
	hash    HashFunc
}

// NewHashTable allocates a table with n empty buckets. n must be zero or a
// power of two. A nil hash selects DefaultHash.
func NewHashTable(n int, hash HashFunc) *HashTable {
	if n < 0 || n&(n-1) != 0 {
		panic(fmt.Sprintf("dict: bucket count %d is not a power of two", n))
	}
	if hash == nil {
		hash = DefaultHash()
	}
	t := &HashTable{
		buckets: make([]chain, n),
		hash:    hash,
	}
	if n > 0 {
		t.mask = uint64(n - 1)
	}
	return t
}

// Len returns the number of entries in the table.
func (t *HashTable) Len() int {
	return t.items
}

// BucketCount returns the number of buckets.
func (t *HashTable) BucketCount() int {
	return len(t.buckets)
}

// LoadFactor returns items per bucket, rounded down. An unallocated table
// reports 0.
func (t *HashTable) LoadFactor() int {
	if len(t.buckets) == 0 {
		return 0
	}
	return t.items / len(t.buckets)
}

func (t *HashTable) bucket(key string) *chain {
	return &t.buckets[t.hash(key)&t.mask]
}

// Insert stores value under key. If the key already exists its value is
// replaced and the previous value is returned with replaced set to true.
// Inserting into an unallocated table panics.
func (t *HashTable) Insert(key, value string) (old string, replaced bool) {
	if len(t.buckets) == 0 {
		panic("dict: insert into unallocated hash table")
	}
	b := t.bucket(key)
	if e := b.find(key); e != nil {
		old, e.Value = e.Value, value
		return old, true
	}
	b.pushFront(&Entry{key: key, Value: value})
	t.items++
	return "", false
}

// adopt links an existing entry into the table without scanning for a
// duplicate. The caller guarantees the key is absent.
func (t *HashTable) adopt(e *Entry) {
	t.bucket(e.key).pushFront(e)
	t.items++
}

// Get returns the entry for key, or nil. The entry's Value may be modified
// through the returned pointer.
func (t *HashTable) Get(key string) *Entry {
	if len(t.buckets) == 0 {
		return nil
	}
	return t.bucket(key).find(key)
}

// Remove unlinks and returns the entry for key, or nil.
func (t *HashTable) Remove(key string) *Entry {
	if len(t.buckets) == 0 {
		return nil
	}
	e := t.bucket(key).remove(key)
	if e != nil {
		t.items--
	}
	return e
}
