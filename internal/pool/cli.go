package pool

import "fmt"

// Document is the exported form of the on-disk pool document, for tooling
// (cmd/poolctl) that needs to read and rewrite the pool file directly
// without spinning up a full Manager/supervisor.
type Document map[Family][]*Entry

// LoadPoolFile reads and decodes a pool document from disk. A missing file
// yields an empty document rather than an error.
func LoadPoolFile(path string) (Document, error) {
	data, err := loadDocumentFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("pool: decode %s: %w", path, err)
	}
	out := make(Document, len(doc))
	for name, entries := range doc {
		out[Family(name)] = entries
	}
	return out, nil
}

// SavePoolFile atomically writes a document back to disk.
func SavePoolFile(path string, doc Document) error {
	internalDoc := make(document, len(doc))
	for name, entries := range doc {
		internalDoc[string(name)] = entries
	}
	return writeDocumentAtomicFn(path, internalDoc)
}
