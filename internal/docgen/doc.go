// Package docgen is the boundary to the external documentation-generation
// collaborator. A Generator maps a prompt plus an optional carried context
// string to free-form text; HTTP providers retry with exponential backoff
// and share an LRU response cache keyed by request hash.
package docgen
