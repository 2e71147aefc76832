// Package badger implements the storage.ObjectStore interface on BadgerDB.
// Object payloads and their metadata live in separate keyspaces so listings
// never load payload bytes.
package badger
