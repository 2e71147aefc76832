// Package bleve provides an embedded full-text index backend. It needs no
// external search service, which makes it the default for local deployments;
// hybrid ranking is not supported and queries degrade to lexical matching.
package bleve
