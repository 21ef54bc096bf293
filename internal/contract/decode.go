package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Parse decodes a contract bundle. The top level must be a JSON array of documents or a
// single document object. Nothing inside the array is rejected: an entry that is not an
// object comes back as a Document with Raw set, and node shapes that are not text,
// mention or block come back as *MalformedNode.
func Parse(data []byte) (Data, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		bundle := make(Data, 0, len(raws))
		for _, raw := range raws {
			doc, err := parseDocument(raw)
			if err != nil {
				doc = Document{Type: TypeBlock, Raw: cloneRaw(raw)}
			}
			bundle = append(bundle, doc)
		}
		return bundle, nil
	case '{':
		doc, err := parseDocument(trimmed)
		if err != nil {
			return nil, err
		}
		return Data{doc}, nil
	default:
		return nil, fmt.Errorf("%w: top level must be an array or object", ErrUnparseable)
	}
}

// Decode reads a whole bundle from r.
func Decode(r io.Reader) (Data, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read contract data: %w", err)
	}
	return Parse(data)
}

// ParseNode decodes a single node.
func ParseNode(raw json.RawMessage) Node {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &MalformedNode{Raw: cloneRaw(raw)}
	}

	nodeType, hasType := stringField(fields, "type")
	if nodeType == "" {
		hasType = false
	}
	text, hasText := stringField(fields, "text")

	switch {
	case !hasType && hasText:
		color, _ := stringField(fields, "color")
		return &TextNode{Text: text, Marks: marksFrom(fields), Color: color}
	case !hasType:
		return &MalformedNode{Raw: cloneRaw(raw)}
	case nodeType == TypeMention:
		id, _ := stringField(fields, "id")
		title, _ := stringField(fields, "title")
		value, _ := scalarField(fields, "value")
		color, _ := stringField(fields, "color")
		variableType, _ := stringField(fields, "variableType")
		return &MentionNode{
			ID:           id,
			Title:        title,
			DefaultValue: value,
			Color:        color,
			VariableType: variableType,
			Marks:        marksFrom(fields),
			Children:     childrenFrom(fields),
		}
	default:
		title, _ := stringField(fields, "title")
		color, _ := stringField(fields, "color")
		return &BlockNode{
			Type:     nodeType,
			Title:    title,
			Color:    color,
			Marks:    marksFrom(fields),
			Children: childrenFrom(fields),
			Text:     text,
			HasText:  hasText,
		}
	}
}

func parseDocument(raw json.RawMessage) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: document must be an object", ErrUnparseable)
	}
	title, _ := stringField(fields, "title")
	docType, ok := stringField(fields, "type")
	if !ok || docType == "" {
		docType = TypeBlock
	}
	return Document{
		Title:    title,
		Type:     docType,
		Children: childrenFrom(fields),
	}, nil
}

func childrenFrom(fields map[string]json.RawMessage) []Node {
	raw, ok := fields["children"]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	children := make([]Node, 0, len(items))
	for _, item := range items {
		children = append(children, ParseNode(item))
	}
	return children
}

func marksFrom(fields map[string]json.RawMessage) Marks {
	return Marks{
		Bold:      boolField(fields, "bold"),
		Italic:    boolField(fields, "italic"),
		Underline: boolField(fields, "underline"),
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// scalarField reads a string, number or boolean as text. Numbers keep the literal
// form they were written in.
func scalarField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func boolField(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false
	}
	return value
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
