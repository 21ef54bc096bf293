// Package render turns contract documents into presentation trees. It classifies each
// node, propagates formatting marks downward, numbers top-level clauses, letters
// definition sub-clauses, resolves mentions against a value table and repairs block
// content that appears where only inline content is legal.
//
// A Renderer holds configuration only. Every call creates its own session, so one
// Renderer may serve many goroutines.
package render

// Tag names the kind of a presentation element.
type Tag string

const (
	TagBundle      Tag = "bundle"
	TagDocument    Tag = "document"
	TagContainer   Tag = "container"
	TagParagraph   Tag = "paragraph"
	TagHeading     Tag = "heading"
	TagList        Tag = "list"
	TagOrderedList Tag = "ordered-list"
	TagListItem    Tag = "list-item"
	TagInline      Tag = "inline"
	TagText        Tag = "text"
	TagMention     Tag = "mention"
	TagClause      Tag = "clause"
)

// Layout selects how a clause is laid out.
type Layout string

const (
	LayoutInline  Layout = "inline"
	LayoutHeading Layout = "heading"
	LayoutSubItem Layout = "sub-item"
)

// Style is the effective formatting applied to an element.
type Style struct {
	Bold      bool `json:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty"`
	Underline bool `json:"underline,omitempty"`
}

// Element is a node of the presentation tree.
type Element struct {
	Tag Tag `json:"tag"`
	// Source is the input discriminator the element came from, when there was one.
	Source string `json:"source,omitempty"`
	Level  int    `json:"level,omitempty"`
	// Lines holds text split on newlines; consumers put a line break between entries.
	Lines        []string   `json:"lines,omitempty"`
	Style        Style      `json:"style"`
	Color        string     `json:"color,omitempty"`
	Title        string     `json:"title,omitempty"`
	MentionID    string     `json:"mentionId,omitempty"`
	VariableType string     `json:"variableType,omitempty"`
	Value        string     `json:"value,omitempty"`
	Number       int        `json:"number,omitempty"`
	Label        string     `json:"label,omitempty"`
	Layout       Layout     `json:"layout,omitempty"`
	Children     []*Element `json:"children,omitempty"`
}

// Walk visits e and its descendants depth first, stopping a branch when fn returns false.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range e.Children {
		child.Walk(fn)
	}
}
