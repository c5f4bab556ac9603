// internal/domain/catalog/item.go
package catalog

import "time"

// Collection is a named grouping of items on the catalog server
// (a Kavita library).
type Collection struct {
	ID   string
	Name string
}

// Item is a single entry in a collection, as reported by the catalog server.
// Downstream components treat it as read-only.
type Item struct {
	ID             string
	Name           string
	CollectionID   string
	CollectionName string
	CreatedAt      time.Time
}
