package domain

// DefaultKeyPrefix namespaces every key this service writes.
const DefaultKeyPrefix = "estatedash:"

// Collection names a document collection.
type Collection string

// Collections of the document store.
const (
	CollectionUsers       Collection = "users"
	CollectionSubmissions Collection = "submissions"
	CollectionProperties  Collection = "properties"
	CollectionShortlist   Collection = "shortlist"
	CollectionExtraction  Collection = "extraction"
)

// Collections returns every known collection.
func Collections() []Collection {
	return []Collection{
		CollectionUsers,
		CollectionSubmissions,
		CollectionProperties,
		CollectionShortlist,
		CollectionExtraction,
	}
}

// IsValid checks if the collection is known.
func (c Collection) IsValid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

// KeyPrefix returns the key prefix of documents in c, e.g. "estatedash:users:".
func (c Collection) KeyPrefix(prefix string) string {
	return prefix + string(c) + ":"
}

// Key returns the storage key of document id in c.
func (c Collection) Key(prefix, id string) string {
	return c.KeyPrefix(prefix) + id
}

// IndexName returns the search index name over c, e.g. "estatedash:users:idx".
func (c Collection) IndexName(prefix string) string {
	return c.KeyPrefix(prefix) + "idx"
}
