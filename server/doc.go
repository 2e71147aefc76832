// Package server exposes document search and ingestion as Model Context
// Protocol tools over stdio or HTTP. Tool handlers never fail the protocol
// call: operational failures come back as readable text so agent callers can
// relay them.
package server
