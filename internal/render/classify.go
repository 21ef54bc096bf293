package render

import "contractview/internal/contract"

// Kind is the outcome of classifying a node.
type Kind int

const (
	// KindUnknown is the sentinel for malformed nodes.
	KindUnknown Kind = iota
	KindText
	KindMention
	KindClause
	KindBlock
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMention:
		return "mention"
	case KindClause:
		return "clause"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Classify never fails; anything it cannot place is KindUnknown.
func Classify(node contract.Node) Kind {
	switch n := node.(type) {
	case *contract.TextNode:
		if n == nil {
			return KindUnknown
		}
		return KindText
	case *contract.MentionNode:
		if n == nil {
			return KindUnknown
		}
		return KindMention
	case *contract.BlockNode:
		if n == nil {
			return KindUnknown
		}
		if n.Type == contract.TypeClause {
			return KindClause
		}
		return KindBlock
	default:
		return KindUnknown
	}
}
