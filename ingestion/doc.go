// Package ingestion orchestrates the document ingestion pipeline: upload to
// durable storage, text extraction, chunking, embedding and index writes.
// Failures carry the stage they occurred in via StageError.
package ingestion
