package render

import "contractview/internal/contract"

// HasBlockChildren reports whether a paragraph holds a child that would be illegal
// inside a true paragraph: another paragraph, a generic block, a heading, a list, a
// clause, or any discriminator outside the vocabulary (those render as containers).
// A "p" carrying raw text still counts even though its content is later flattened.
func HasBlockChildren(block *contract.BlockNode) bool {
	if block == nil {
		return false
	}
	for _, child := range block.Children {
		childBlock, ok := child.(*contract.BlockNode)
		if !ok || childBlock == nil {
			continue
		}
		if isBlockLike(childBlock.Type) {
			return true
		}
	}
	return false
}

func isBlockLike(blockType string) bool {
	switch blockType {
	case contract.TypeParagraph, contract.TypeBlock, contract.TypeClause,
		contract.TypeUnorderedList, contract.TypeOrderedList:
		return true
	case contract.TypeListItem, contract.TypeListItemContent:
		return false
	}
	if contract.IsHeading(blockType) {
		return true
	}
	return !contract.Known(blockType)
}

// IsDegenerateParagraph reports whether node is a "p" that carries raw text, which
// is inline text dressed up as a paragraph.
func IsDegenerateParagraph(node contract.Node) bool {
	block, ok := node.(*contract.BlockNode)
	return ok && block != nil && block.Type == contract.TypeParagraph && block.HasText
}

// paragraphTag picks the container for a paragraph.
func paragraphTag(block *contract.BlockNode) Tag {
	if HasBlockChildren(block) {
		return TagContainer
	}
	return TagParagraph
}
