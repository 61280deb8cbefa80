// Package store defines the persistence contracts the scheduling engine
// depends on: the item store, the stats aggregation queries, the DBTX
// abstraction over connections and transactions, and the shared store
// error taxonomy. Implementations live under internal/platform.
package store
