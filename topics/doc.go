// Package topics provides the static topic -> search-index routing table.
//
// Every search and ingestion call is scoped to a topic, and the registry is
// the single place that decides which index serves that topic. Resolution is
// pure and synchronous; an unresolvable topic is a configuration error, never
// silently defaulted.
package topics
