// Package rest implements the index.Index interface as a client for a remote
// search service. Unlike the embedded backend it supports hybrid ranking and
// carries vectors and access labels through to the service.
package rest
