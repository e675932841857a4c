//  Copyright 2024 Google LLC
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package rflog

import (
	"io"
	"sync"

	"yunion.io/x/pkg/sortedmap"
)

// SinkFunc consumes a log entry. Sinks are invoked from the event consumer
// goroutine, one at a time, and must not retain the entry beyond the call
// unless they copy it.
type SinkFunc func(entry LogEntry)

// Backend is a sink with a named type. A Backend that also implements
// io.Closer owns resources and is closed when it's unregistered.
type Backend interface {
	// Log consumes a single log entry.
	Log(entry LogEntry)
}

// backendEntry is a registered sink with its threshold.
type backendEntry struct {
	level  Level
	sink   SinkFunc
	closer io.Closer
}

// registry maps sink keys to sinks. Keys are kept sorted so dispatch order
// is deterministic.
type registry struct {
	mu      sync.Mutex
	entries sortedmap.SSortedMap
}

func newRegistry() *registry {
	return &registry{entries: sortedmap.NewSortedMap()}
}

// add registers sink under key at level, replacing (and closing) any
// previous sink with the same key.
func (r *registry) add(key string, level Level, sink SinkFunc, closer io.Closer) {
	r.mu.Lock()
	prev := r.lookup(key)
	r.entries = sortedmap.Add(r.entries, key, &backendEntry{level: level, sink: sink, closer: closer})
	r.mu.Unlock()

	closeEntry(prev)
}

// setLevel updates the threshold of the sink registered under key. Unknown
// keys are ignored.
func (r *registry) setLevel(key string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry := r.lookup(key); entry != nil {
		entry.level = level
	}
}

// level returns the threshold of the sink registered under key.
func (r *registry) level(key string) (Level, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.lookup(key)
	if entry == nil {
		return OffLevel, false
	}
	return entry.level, true
}

// remove unregisters the sink under key, closing it if it owns resources.
func (r *registry) remove(key string) {
	r.mu.Lock()
	prev := r.lookup(key)
	r.entries, _ = sortedmap.Delete(r.entries, key)
	r.mu.Unlock()

	closeEntry(prev)
}

// keys returns the registered keys in sorted order.
func (r *registry) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Keys()
}

// matching returns, in key order, the sinks whose threshold is lower or equal
// to level. The returned slice is a snapshot, sinks registered or removed
// afterwards don't affect it.
func (r *registry) matching(level Level) []SinkFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []SinkFunc
	for iter := sortedmap.NewIterator(r.entries); iter.HasMore(); iter.Next() {
		_, val := iter.Get()
		if entry := val.(*backendEntry); entry.level <= level {
			res = append(res, entry.sink)
		}
	}
	return res
}

// clear unregisters every sink and closes the ones owning resources.
func (r *registry) clear() {
	r.mu.Lock()
	var closing []*backendEntry
	for iter := sortedmap.NewIterator(r.entries); iter.HasMore(); iter.Next() {
		_, val := iter.Get()
		closing = append(closing, val.(*backendEntry))
	}
	r.entries = sortedmap.NewSortedMap()
	r.mu.Unlock()

	for _, entry := range closing {
		closeEntry(entry)
	}
}

// lookup must be called with mu held.
func (r *registry) lookup(key string) *backendEntry {
	val, found := r.entries.Get(key)
	if !found {
		return nil
	}
	return val.(*backendEntry)
}

func closeEntry(entry *backendEntry) {
	if entry == nil || entry.closer == nil {
		return
	}
	entry.closer.Close()
}
