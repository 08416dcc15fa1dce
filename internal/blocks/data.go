package blocks

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Reserved attribute names injected into every generated schema. The editor
// uses them to track instance identity and collected image sources.
const (
	BlockIDAttribute = "_wbbBlockId"
	ImagesAttribute  = "_wbbImages"
)

// sourceBlock marks attribute values stored in the block comment delimiter
// rather than extracted from markup. Schemas omit the source key entirely for
// these attributes.
const sourceBlock = "block"

// Node is a single element in the editor's component tree. The structure is
// author-defined, so it stays schemaless.
type Node map[string]any

// NodeTree wraps an ordered list of nodes for one of the three editor views.
type NodeTree struct {
	Nodes []Node `json:"nodes"`
}

func (t NodeTree) clone() NodeTree {
	if t.Nodes == nil {
		return NodeTree{}
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return NodeTree{Nodes: append([]Node{}, t.Nodes...)}
	}
	copied := NodeTree{}
	if err := json.Unmarshal(raw, &copied); err != nil {
		return NodeTree{Nodes: append([]Node{}, t.Nodes...)}
	}
	return copied
}

// Attribute declares a named value a block instance can hold and where its
// value comes from.
type Attribute struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`
	Selector string `json:"selector,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// TypographySupports toggles the editor's typography controls.
type TypographySupports struct {
	FontSize   bool `json:"fontSize"`
	LineHeight bool `json:"lineHeight"`
}

// SpacingSupports toggles the editor's spacing controls.
type SpacingSupports struct {
	Margin  bool `json:"margin"`
	Padding bool `json:"padding"`
}

// Supports mirrors the editor feature switches a block definition can opt
// into.
type Supports struct {
	Align           []string           `json:"align"`
	Anchor          bool               `json:"anchor"`
	CustomClassName bool               `json:"customClassName"`
	Multiple        bool               `json:"multiple"`
	Inserter        bool               `json:"inserter"`
	Typography      TypographySupports `json:"typography"`
	Spacing         SpacingSupports    `json:"spacing"`
	Color           bool               `json:"color"`
}

// Data is the structured definition payload of a block: its attributes, the
// component trees for each editor view, and its presentation metadata.
type Data struct {
	IsDynamic         bool        `json:"isDynamic"`
	Icon              string      `json:"icon"`
	Description       string      `json:"description"`
	Keywords          string      `json:"keywords"`
	Category          string      `json:"category"`
	BuilderAPIVersion int         `json:"wbbApiVersion"`
	APIVersion        int         `json:"apiVersion"`
	Parent            []string    `json:"parent"`
	Ancestor          []string    `json:"ancestor"`
	Attributes        []Attribute `json:"attributes"`
	Edit              NodeTree    `json:"edit"`
	Save              NodeTree    `json:"save"`
	Sidebar           NodeTree    `json:"sidebar"`
	Supports          Supports    `json:"supports"`
}

// DefaultData returns the payload assigned to a block saved without one.
func DefaultData() *Data {
	return &Data{
		BuilderAPIVersion: 1,
		APIVersion:        2,
		Parent:            []string{},
		Ancestor:          []string{},
		Attributes:        []Attribute{},
		Edit:              NodeTree{Nodes: []Node{}},
		Save:              NodeTree{Nodes: []Node{}},
		Sidebar:           NodeTree{Nodes: []Node{}},
		Supports: Supports{
			Align:           []string{},
			CustomClassName: true,
			Multiple:        true,
			Inserter:        true,
		},
	}
}

// Clone returns a deep copy via a JSON round trip, matching how the payload
// is persisted. Nested node maps are never shared between copies.
func (d *Data) Clone() *Data {
	if d == nil {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		copied := *d
		return &copied
	}
	copied := &Data{}
	if err := json.Unmarshal(raw, copied); err != nil {
		fallback := *d
		return &fallback
	}
	return copied
}

// structuralState isolates the fields whose change warrants a new published
// version. Cosmetic metadata (icon, description, category, keywords,
// supports, sidebar) is excluded on purpose.
type structuralState struct {
	IsDynamic  bool        `json:"isDynamic"`
	Attributes []Attribute `json:"attributes"`
	Edit       []Node      `json:"edit"`
	Save       []Node      `json:"save"`
}

func (d *Data) structuralFingerprint() ([]byte, error) {
	if d == nil {
		d = DefaultData()
	}
	return json.Marshal(structuralState{
		IsDynamic:  d.IsDynamic,
		Attributes: d.Attributes,
		Edit:       d.Edit.Nodes,
		Save:       d.Save.Nodes,
	})
}

// StructurallyEqual reports whether two payloads share the same structural
// state. Map keys marshal in sorted order, so the comparison is stable
// regardless of insertion order.
func StructurallyEqual(a, b *Data) (bool, error) {
	left, err := a.structuralFingerprint()
	if err != nil {
		return false, err
	}
	right, err := b.structuralFingerprint()
	if err != nil {
		return false, err
	}
	return bytes.Equal(left, right), nil
}

// SchemaEntry is one attribute declaration in the registration schema handed
// to the editor.
type SchemaEntry struct {
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`
	Selector string `json:"selector,omitempty"`
	Default  any    `json:"default,omitempty"`
}

// AttributeSchema builds the registration attribute map for the payload,
// including the reserved identity and image-tracking attributes.
func (d *Data) AttributeSchema() map[string]SchemaEntry {
	schema := map[string]SchemaEntry{
		BlockIDAttribute: {Type: "string", Source: "attribute"},
		ImagesAttribute:  {Type: "array", Selector: "img"},
	}
	if d == nil {
		return schema
	}
	for _, attr := range d.Attributes {
		if attr.Name == "" {
			continue
		}
		entry := SchemaEntry{
			Type:     attr.Type,
			Selector: attr.Selector,
			Default:  attr.Default,
		}
		if attr.Source != sourceBlock {
			entry.Source = attr.Source
		}
		schema[attr.Name] = entry
	}
	return schema
}

// Manifest renders the block.json style registration document for a block.
func (b *Block) Manifest() map[string]any {
	data := b.Data
	if data == nil {
		data = DefaultData()
	}
	manifest := map[string]any{
		"$schema":      "https://schemas.wp.org/trunk/block.json",
		"apiVersion":   data.APIVersion,
		"name":         b.Name(),
		"title":        b.Title,
		"attributes":   data.AttributeSchema(),
		"supports":     data.Supports,
		"editorScript": "file:./index.js",
	}
	if b.CSS != "" {
		manifest["style"] = "file:./style.css"
	}
	if data.IsDynamic {
		manifest["render"] = "file:./render.php"
	}
	if data.Category != "" {
		manifest["category"] = data.Category
	}
	if data.Icon != "" {
		manifest["icon"] = data.Icon
	}
	if data.Description != "" {
		manifest["description"] = data.Description
	}
	if data.Keywords != "" {
		manifest["keywords"] = splitKeywords(data.Keywords)
	}
	if len(data.Parent) > 0 {
		manifest["parent"] = data.Parent
	}
	if len(data.Ancestor) > 0 {
		manifest["ancestor"] = data.Ancestor
	}
	return manifest
}

// splitKeywords turns the comma separated keyword string into the list form
// the registration document expects.
func splitKeywords(keywords string) []string {
	parts := strings.Split(keywords, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
