// Package dedup is the in-memory identity cache that keeps rediscovered
// contacts out of the lead store. It lives for one ingest run and is rebuilt
// from the store at the start of the next, so staleness cannot accumulate.
package dedup

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"peekr-automation/internal/lead"
)

// Cache is a set of content hashes over normalized identity fields. It has a
// single writer (the ingest pipeline) and is not safe for concurrent use.
type Cache struct {
	seen map[string]struct{}
}

func New() *Cache {
	return &Cache{seen: make(map[string]struct{})}
}

// Warm registers the identity hashes of every existing lead.
func (c *Cache) Warm(leads []lead.Lead) {
	for _, l := range leads {
		c.register(normalize(l.Title), normalize(l.Website), strings.TrimSpace(l.Phone))
	}
}

// Seen reports whether any identity field of the candidate was seen before.
// Matching any single field counts as a duplicate: partial-field collisions
// (same phone, different name casing) are common in scraped data, and
// over-matching is preferred to re-mailing the same business. On a miss the
// candidate is registered, so duplicates within one discovery batch are
// caught too.
func (c *Cache) Seen(name, website, phone string) bool {
	name = normalize(name)
	website = normalize(website)
	phone = strings.TrimSpace(phone)

	for _, key := range keys(name, website, phone) {
		if _, ok := c.seen[key]; ok {
			return true
		}
	}

	c.register(name, website, phone)
	return false
}

// Len returns the number of registered hashes.
func (c *Cache) Len() int {
	return len(c.seen)
}

func (c *Cache) register(name, website, phone string) {
	for _, key := range keys(name, website, phone) {
		c.seen[key] = struct{}{}
	}
}

// keys returns the individual field hashes plus one composite key. Empty
// fields contribute no hash so that two candidates missing the same field do
// not collide.
func keys(name, website, phone string) []string {
	composite := strings.ReplaceAll(name+"|"+website+"|"+phone, " ", "")
	out := []string{composite}
	for _, field := range []string{name, website, phone} {
		if field != "" {
			out = append(out, digest(field))
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
