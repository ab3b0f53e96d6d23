package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DocumentVersion is the current on-disk document format version.
const DocumentVersion = 1

// fileEnvelope is the on-disk and over-the-wire document shape.
// Version 0 (absent field) is read as version 1.
type fileEnvelope struct {
	Version     int          `json:"version"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Read decodes a JSON document from r.
//
// The input must be a JSON object with "nodes" and "connections"
// arrays; see [Write] for the produced shape. Each node carries an
// "id", a "type" tag from the fixed type set, a "position", and an
// optional "data" payload decoded per type (missing payloads get the
// type's defaults).
//
// Read returns an error if:
//   - The JSON is malformed
//   - A node has an unknown type tag ([ErrUnknownType])
//   - The envelope's version is newer than [DocumentVersion]
//     ([ErrUnsupportedVersion])
//
// Read decodes structure only; use [Document.Validate] to check
// referential integrity (duplicate IDs, dangling connections, group
// membership, cycles). The returned document is independent of r and
// can be modified safely. Read does not close r.
func Read(r io.Reader) (Document, error) {
	var env fileEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if env.Version > DocumentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return Document{Nodes: env.Nodes, Connections: env.Connections}, nil
}

// Write encodes the document to w as indented JSON with a version
// field, ending with a newline. The output round-trips through
// [Read].
func Write(w io.Writer, doc Document) error {
	env := fileEnvelope{
		Version:     DocumentVersion,
		Nodes:       doc.Nodes,
		Connections: doc.Connections,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Import reads the document file at path. It opens the file, decodes
// it with [Read], and closes it, wrapping any failure with the path
// for context.
func Import(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Export writes the document to a file at path, creating or
// truncating it with 0644 permissions.
func Export(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, doc); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Marshal encodes the document to compact canonical JSON. Stores and
// content hashing use this single canonical form.
func Marshal(doc Document) ([]byte, error) {
	return json.Marshal(fileEnvelope{
		Version:     DocumentVersion,
		Nodes:       doc.Nodes,
		Connections: doc.Connections,
	})
}

// Unmarshal decodes a document from canonical JSON produced by
// [Marshal] (or any shape [Read] accepts).
func Unmarshal(data []byte) (Document, error) {
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	if env.Version > DocumentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return Document{Nodes: env.Nodes, Connections: env.Connections}, nil
}
