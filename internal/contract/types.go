// Package contract defines the contract document model: a tagged tree of text runs,
// mention placeholders and structural blocks, as it arrives from JSON.
package contract

import (
	"encoding/json"
	"errors"
)

// Block discriminators used by contract documents.
const (
	TypeMention         = "mention"
	TypeBlock           = "block"
	TypeClause          = "clause"
	TypeParagraph       = "p"
	TypeHeading1        = "h1"
	TypeHeading2        = "h2"
	TypeHeading3        = "h3"
	TypeHeading4        = "h4"
	TypeHeading5        = "h5"
	TypeHeading6        = "h6"
	TypeUnorderedList   = "ul"
	TypeOrderedList     = "ol"
	TypeListItem        = "li"
	TypeListItemContent = "lic"
)

// ErrUnparseable is returned when the input is not JSON at all, or its top level is
// neither a bundle array nor a single document object.
var ErrUnparseable = errors.New("contract data unparseable")

// Marks are a node's own formatting flags. An absent flag is false.
type Marks struct {
	Bold      bool `json:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty"`
	Underline bool `json:"underline,omitempty"`
}

// Node is one of *TextNode, *MentionNode, *BlockNode or *MalformedNode.
type Node interface {
	contractNode()
}

// TextNode is a literal text run.
type TextNode struct {
	Text  string
	Marks Marks
	Color string
}

// MentionNode is a placeholder resolved against a mention value table.
type MentionNode struct {
	ID           string
	Title        string
	DefaultValue string
	Color        string
	VariableType string
	Marks        Marks
	Children     []Node
}

// BlockNode is any structural node: clause, paragraph, heading, list, list item,
// or a discriminator this package does not know about.
type BlockNode struct {
	Type     string
	Title    string
	Color    string
	Marks    Marks
	Children []Node
	// Text is set when a block also carried a raw "text" field, which happens with
	// paragraphs that are really inline text.
	Text    string
	HasText bool
}

// MalformedNode carries neither text nor a type discriminator.
type MalformedNode struct {
	Raw json.RawMessage
}

func (*TextNode) contractNode()      {}
func (*MentionNode) contractNode()   {}
func (*BlockNode) contractNode()     {}
func (*MalformedNode) contractNode() {}

// Document is one contract in a bundle. Its root is always a "block".
type Document struct {
	Title    string
	Type     string
	Children []Node
	// Raw holds a bundle entry that was not a JSON object. Such a document has no
	// content and is reported instead of rendered.
	Raw json.RawMessage
}

// Malformed reports whether the bundle entry could not be read as a document.
func (d Document) Malformed() bool {
	return d.Raw != nil
}

// Data is an ordered bundle of documents rendered in sequence.
type Data []Document

// IsHeading reports whether a discriminator is h1 through h6.
func IsHeading(blockType string) bool {
	return HeadingLevel(blockType) > 0
}

// HeadingLevel returns 1-6 for h1-h6 and 0 otherwise.
func HeadingLevel(blockType string) int {
	if len(blockType) != 2 || blockType[0] != 'h' {
		return 0
	}
	level := int(blockType[1] - '0')
	if level < 1 || level > 6 {
		return 0
	}
	return level
}

// Known reports whether a block discriminator is part of the contract vocabulary.
func Known(blockType string) bool {
	switch blockType {
	case TypeBlock, TypeClause, TypeParagraph,
		TypeUnorderedList, TypeOrderedList, TypeListItem, TypeListItemContent:
		return true
	}
	return IsHeading(blockType)
}
