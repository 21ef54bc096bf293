package render

import (
	"strconv"
	"strings"

	"contractview/internal/contract"
)

// DefaultDefinitionMarker is matched case-insensitively against a parent clause's
// title to decide whether its clause children are lettered sub-items.
const DefaultDefinitionMarker = "definition"

// Option configures a Renderer.
type Option func(*Renderer)

// WithDiagnostics sets the sink for malformed-node reports.
func WithDiagnostics(diag Diagnostics) Option {
	return func(r *Renderer) {
		if diag != nil {
			r.diag = diag
		}
	}
}

// WithContinuousNumbering makes clause numbers run across every document of a bundle
// instead of restarting at 1 for each document.
func WithContinuousNumbering(continuous bool) Option {
	return func(r *Renderer) {
		r.continuous = continuous
	}
}

// WithDefinitionMarker overrides DefaultDefinitionMarker.
func WithDefinitionMarker(marker string) Option {
	return func(r *Renderer) {
		if marker = strings.TrimSpace(marker); marker != "" {
			r.definitionMarker = strings.ToLower(marker)
		}
	}
}

// Renderer turns contract data into presentation trees.
type Renderer struct {
	diag             Diagnostics
	continuous       bool
	definitionMarker string
}

// New builds a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		diag:             NopDiagnostics{},
		definitionMarker: DefaultDefinitionMarker,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats summarizes one render pass.
type Stats struct {
	Documents    int `json:"documents"`
	Clauses      int `json:"clauses"`
	SubItems     int `json:"subItems"`
	Mentions     int `json:"mentions"`
	Flattened    int `json:"flattened"`
	Malformed    int `json:"malformed"`
	UnknownTypes int `json:"unknownTypes"`
}

// Render renders a bundle. values may be nil, in which case every mention shows
// its default.
func (r *Renderer) Render(data contract.Data, values Values) *Element {
	out, _ := r.RenderWithStats(data, values)
	return out
}

// RenderWithStats is Render plus counters for the pass.
func (r *Renderer) RenderWithStats(data contract.Data, values Values) (*Element, Stats) {
	s := r.newSession(values)
	bundle := &Element{Tag: TagBundle, Children: make([]*Element, 0, len(data))}
	for i, doc := range data {
		if doc.Malformed() {
			s.malformed(&contract.MalformedNode{Raw: doc.Raw}, strconv.Itoa(i))
			continue
		}
		if !r.continuous {
			s.counter.Reset()
		}
		bundle.Children = append(bundle.Children, s.document(doc, strconv.Itoa(i)))
		s.stats.Documents++
	}
	return bundle, s.stats
}

// RenderDocument renders a single document with fresh numbering.
func (r *Renderer) RenderDocument(doc contract.Document, values Values) *Element {
	s := r.newSession(values)
	s.stats.Documents = 1
	return s.document(doc, "0")
}

func (r *Renderer) newSession(values Values) *session {
	return &session{
		diag:             r.diag,
		definitionMarker: r.definitionMarker,
		values:           values,
	}
}

// session is the state of one render pass. It is never shared between passes.
type session struct {
	diag             Diagnostics
	definitionMarker string
	values           Values
	counter          ClauseCounter
	stats            Stats
}

// frame is what a node inherits from its ancestors.
type frame struct {
	marks  contract.Marks
	parent *contract.BlockNode
	nested bool
	path   string
}

const noSubItem = -1

func (s *session) document(doc contract.Document, path string) *Element {
	return &Element{
		Tag:      TagDocument,
		Source:   doc.Type,
		Title:    doc.Title,
		Children: s.children(doc.Children, frame{path: path}),
	}
}

func (s *session) children(nodes []contract.Node, f frame) []*Element {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Element, 0, len(nodes))
	for i, child := range nodes {
		childFrame := f
		childFrame.path = f.path + "/children/" + strconv.Itoa(i)
		if el := s.node(child, childFrame, noSubItem); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (s *session) node(node contract.Node, f frame, subItem int) *Element {
	switch Classify(node) {
	case KindText:
		return s.text(node.(*contract.TextNode), f)
	case KindMention:
		return s.mention(node.(*contract.MentionNode), f)
	case KindClause:
		return s.clause(node.(*contract.BlockNode), f, subItem)
	case KindBlock:
		return s.block(node.(*contract.BlockNode), f)
	default:
		s.malformed(node, f.path)
		return nil
	}
}

func (s *session) text(n *contract.TextNode, f frame) *Element {
	return &Element{
		Tag:   TagText,
		Lines: strings.Split(n.Text, "\n"),
		Style: styleOf(Merge(n.Marks, f.marks)),
		Color: n.Color,
	}
}

func (s *session) mention(n *contract.MentionNode, f frame) *Element {
	s.stats.Mentions++
	marks := Merge(n.Marks, f.marks)
	el := &Element{
		Tag:          TagMention,
		Style:        styleOf(marks),
		Color:        n.Color,
		Title:        n.Title,
		MentionID:    n.ID,
		VariableType: n.VariableType,
	}
	if len(n.Children) > 0 {
		el.Children = s.children(n.Children, frame{marks: marks, nested: f.nested, path: f.path})
		return el
	}
	el.Value = Resolve(n.ID, n.DefaultValue, s.values)
	return el
}

func (s *session) block(n *contract.BlockNode, f frame) *Element {
	marks := Merge(n.Marks, f.marks)
	el := &Element{
		Source: n.Type,
		Style:  styleOf(marks),
		Color:  n.Color,
		Title:  n.Title,
	}
	childFrame := frame{marks: marks, parent: n, nested: f.nested, path: f.path}

	switch n.Type {
	case contract.TypeParagraph:
		el.Tag = paragraphTag(n)
		el.Children = s.paragraphChildren(n, childFrame)
		return el
	case contract.TypeBlock:
		el.Tag = TagContainer
	case contract.TypeUnorderedList:
		el.Tag = TagList
	case contract.TypeOrderedList:
		el.Tag = TagOrderedList
	case contract.TypeListItem:
		el.Tag = TagListItem
	case contract.TypeListItemContent:
		el.Tag = TagInline
	default:
		if level := contract.HeadingLevel(n.Type); level > 0 {
			el.Tag = TagHeading
			el.Level = level
		} else {
			s.stats.UnknownTypes++
			el.Tag = TagContainer
		}
	}
	el.Children = s.withOwnText(n, marks, s.children(n.Children, childFrame))
	return el
}

// paragraphChildren flattens "p" children that carry raw text into inline text
// instead of nesting a paragraph inside a paragraph. Whatever children the flattened
// "p" also had follow its text inline.
func (s *session) paragraphChildren(n *contract.BlockNode, f frame) []*Element {
	out := make([]*Element, 0, len(n.Children))
	for i, child := range n.Children {
		path := f.path + "/children/" + strconv.Itoa(i)
		if IsDegenerateParagraph(child) {
			s.stats.Flattened++
			inner := child.(*contract.BlockNode)
			marks := Merge(inner.Marks, f.marks)
			out = append(out, &Element{
				Tag:    TagText,
				Source: inner.Type,
				Lines:  strings.Split(inner.Text, "\n"),
				Style:  styleOf(marks),
				Color:  inner.Color,
			})
			out = append(out, s.children(inner.Children, frame{marks: marks, parent: inner, nested: f.nested, path: path})...)
			continue
		}
		childFrame := f
		childFrame.path = path
		if el := s.node(child, childFrame, noSubItem); el != nil {
			out = append(out, el)
		}
	}
	return s.withOwnText(n, f.marks, out)
}

// withOwnText keeps the raw text of a block that carried one, ahead of its children.
func (s *session) withOwnText(n *contract.BlockNode, marks contract.Marks, children []*Element) []*Element {
	if !n.HasText {
		return children
	}
	text := &Element{
		Tag:   TagText,
		Lines: strings.Split(n.Text, "\n"),
		Style: styleOf(marks),
	}
	return append([]*Element{text}, children...)
}

func (s *session) malformed(node contract.Node, path string) {
	s.stats.Malformed++
	d := Diagnostic{Path: path}
	if m, ok := node.(*contract.MalformedNode); ok && m != nil {
		d.Raw = m.Raw
	}
	s.diag.MalformedNode(d)
}
