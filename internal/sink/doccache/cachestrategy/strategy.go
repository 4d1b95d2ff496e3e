// Package cachestrategy defines cache eviction strategy interfaces.
package cachestrategy

import "github.com/discochess/openingtree/internal/emit"

// Strategy defines the interface for cache eviction strategies.
type Strategy interface {
	Get(id string) (emit.Document, bool)
	Add(id string, doc emit.Document) bool
	Len() int
}
