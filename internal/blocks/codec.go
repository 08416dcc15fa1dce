package blocks

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-blockbuilder/domain"
)

// blockDocument is the portable JSON form of a block definition. Storage
// identities never travel: snapshots and exports are rebindable by slug.
type blockDocument struct {
	Title     string            `json:"title"`
	Slug      string            `json:"slug"`
	Status    string            `json:"status"`
	Namespace string            `json:"namespace,omitempty"`
	Modified  int64             `json:"modified"`
	Data      *Data             `json:"data"`
	CSS       string            `json:"css"`
	Versions  []versionDocument `json:"versions,omitempty"`
}

type versionDocument struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	Modified int64  `json:"modified"`
	Data     *Data  `json:"data"`
	CSS      string `json:"css"`
}

func documentFromBlock(block *Block, versions []*Version) blockDocument {
	doc := blockDocument{
		Title:     block.Title,
		Slug:      block.Slug,
		Status:    string(block.Status),
		Namespace: block.Namespace,
		Modified:  block.Modified,
		Data:      block.Data,
		CSS:       block.CSS,
	}
	for _, version := range versions {
		doc.Versions = append(doc.Versions, versionDocument{
			Title:    version.Title,
			Status:   string(version.Status),
			Modified: version.Modified,
			Data:     version.Data,
			CSS:      version.CSS,
		})
	}
	return doc
}

func (doc blockDocument) toBlock() (*Block, error) {
	status := domain.Status(doc.Status)
	if doc.Status == "" {
		status = domain.StatusDraft
	}
	if !status.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("status %q", doc.Status)}
	}

	block := &Block{
		DefinitionFields: DefinitionFields{
			Title:     doc.Title,
			Status:    status,
			Namespace: doc.Namespace,
			Slug:      doc.Slug,
			Modified:  doc.Modified,
			Data:      doc.Data,
			CSS:       doc.CSS,
		},
	}
	for _, version := range doc.Versions {
		versionStatus := domain.Status(version.Status)
		if version.Status == "" {
			versionStatus = domain.StatusPublish
		}
		if !versionStatus.Valid() {
			return nil, &ValidationError{Reason: fmt.Sprintf("version status %q", version.Status)}
		}
		block.Versions = append(block.Versions, &Version{
			DefinitionFields: DefinitionFields{
				Title:    version.Title,
				Status:   versionStatus,
				Slug:     doc.Slug,
				Modified: version.Modified,
				Data:     version.Data,
				CSS:      version.CSS,
			},
		})
	}
	return block, nil
}

// MarshalSnapshot renders the block and its history as an indented snapshot
// document suitable for committing to version control.
func MarshalSnapshot(block *Block, versions []*Version) ([]byte, error) {
	if block == nil {
		return nil, ErrBlockRequired
	}
	raw, err := json.MarshalIndent(documentFromBlock(block, versions), "", "  ")
	if err != nil {
		return nil, &ValidationError{Reason: "snapshot encoding", Err: err}
	}
	return append(raw, '\n'), nil
}

// ParseSnapshot decodes a snapshot document back into a block carrying its
// versions. The block has no storage identity until sync assigns one.
func ParseSnapshot(raw []byte) (*Block, error) {
	var doc blockDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Reason: "snapshot decoding", Err: err}
	}
	return doc.toBlock()
}

// WriteExport renders an export document for the given blocks. A single
// block exports as a bare object, multiple blocks as an array, identities
// stripped in both shapes.
func WriteExport(w io.Writer, blocks []*Block) error {
	if len(blocks) == 0 {
		return &ValidationError{Reason: "export requires at least one block"}
	}

	docs := make([]blockDocument, 0, len(blocks))
	for _, block := range blocks {
		docs = append(docs, documentFromBlock(block, block.Versions))
	}

	var payload any = docs
	if len(docs) == 1 {
		payload = docs[0]
	}

	buffered := bufio.NewWriter(w)
	encoder := json.NewEncoder(buffered)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return &ValidationError{Reason: "export encoding", Err: err}
	}
	return buffered.Flush()
}

// UnmarshalImport validates and decodes an import document. Both the bare
// object and array shapes are accepted; any id carried by the document is
// discarded so imported blocks always receive fresh identities.
func UnmarshalImport(r io.Reader) ([]*Block, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read", Path: "import", Err: err}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ValidationError{Reason: "import decoding", Err: err}
	}
	if err := importSchema.Validate(decoded); err != nil {
		return nil, &ValidationError{Reason: "import schema", Err: err}
	}

	var docs []blockDocument
	if _, isList := decoded.([]any); isList {
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, &ValidationError{Reason: "import decoding", Err: err}
		}
	} else {
		var doc blockDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &ValidationError{Reason: "import decoding", Err: err}
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, ErrEmptyImport
	}

	blocks := make([]*Block, 0, len(docs))
	for _, doc := range docs {
		block, err := doc.toBlock()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

var importSchema = jsonschema.MustCompileString("blocks-import.schema.json", importSchemaJSON)

const importSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "oneOf": [
    {"$ref": "#/$defs/block"},
    {"type": "array", "items": {"$ref": "#/$defs/block"}, "minItems": 1}
  ],
  "$defs": {
    "block": {
      "type": "object",
      "required": ["title"],
      "additionalProperties": false,
      "properties": {
        "id": {},
        "title": {"type": "string"},
        "slug": {"type": "string"},
        "status": {"type": "string", "enum": ["draft", "publish", "trash"]},
        "namespace": {"type": "string"},
        "modified": {"type": "integer"},
        "css": {"type": "string"},
        "data": {"$ref": "#/$defs/data"},
        "versions": {"type": "array", "items": {"$ref": "#/$defs/version"}}
      }
    },
    "version": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "id": {},
        "parent": {},
        "title": {"type": "string"},
        "status": {"type": "string", "enum": ["draft", "publish", "trash"]},
        "modified": {"type": "integer"},
        "css": {"type": "string"},
        "data": {"$ref": "#/$defs/data"}
      }
    },
    "data": {
      "type": ["object", "null"],
      "additionalProperties": false,
      "properties": {
        "isDynamic": {"type": "boolean"},
        "icon": {"type": "string"},
        "description": {"type": "string"},
        "keywords": {"type": "string"},
        "category": {"type": "string"},
        "wbbApiVersion": {"type": "integer"},
        "apiVersion": {"type": "integer"},
        "parent": {"type": "array", "items": {"type": "string"}},
        "ancestor": {"type": "array", "items": {"type": "string"}},
        "attributes": {"type": "array", "items": {"$ref": "#/$defs/attribute"}},
        "edit": {"$ref": "#/$defs/tree"},
        "save": {"$ref": "#/$defs/tree"},
        "sidebar": {"$ref": "#/$defs/tree"},
        "supports": {"type": "object"}
      }
    },
    "attribute": {
      "type": "object",
      "required": ["name", "type"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string"},
        "type": {"type": "string"},
        "source": {"type": "string"},
        "selector": {"type": "string"},
        "default": {}
      }
    },
    "tree": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "nodes": {"type": "array", "items": {"type": "object"}}
      }
    }
  }
}`
