package lock

// KeyedMutex serializes work per key while letting different keys proceed concurrently.
type KeyedMutex struct {
	guard   Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	mutex   Mutex
	holders int
}

// NewKeyedMutex constructs an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

// Lock blocks until the lock for key is held and returns the function that releases it.
func (keyed *KeyedMutex) Lock(key string) func() {
	keyed.guard.Lock()
	entry, exists := keyed.entries[key]
	if !exists {
		entry = &keyedEntry{}
		keyed.entries[key] = entry
	}
	entry.holders++
	keyed.guard.Unlock()

	entry.mutex.Lock()
	return func() {
		entry.mutex.Unlock()
		keyed.guard.Lock()
		entry.holders--
		if entry.holders == 0 {
			delete(keyed.entries, key)
		}
		keyed.guard.Unlock()
	}
}

// Len reports how many keys are currently held or awaited.
func (keyed *KeyedMutex) Len() int {
	keyed.guard.Lock()
	defer keyed.guard.Unlock()
	return len(keyed.entries)
}
