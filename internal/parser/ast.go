package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock represents a parsed code block from markdown content.
type CodeBlock struct {
	// Hint is the raw markdown of the text block right before the code block.
	Hint string
	// Lang is the language identifier of the code block (e.g., "go", "diff").
	Lang string
	// Content is the raw text inside the code block.
	Content string
}

// ExtractCodeBlocks uses a markdown AST to find all fenced code blocks
// and the block-level node preceding each one, which is treated as a hint.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fencedCodeBlock, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		block := CodeBlock{Lang: string(fencedCodeBlock.Language(source))}
		block.Content = string(rawLines(fencedCodeBlock, source))

		switch prev := fencedCodeBlock.PreviousSibling().(type) {
		case *ast.Paragraph:
			block.Hint = strings.TrimSpace(string(rawLines(prev, source)))
		case *ast.Heading:
			block.Hint = strings.TrimSpace(string(rawLines(prev, source)))
		case *ast.TextBlock:
			// Tight list items hold their text in a TextBlock, not a Paragraph.
			block.Hint = strings.TrimSpace(string(rawLines(prev, source)))
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}

// rawLines returns the untouched source of a block node. Unlike Text, it
// keeps inline markup such as the backticks around a path.
func rawLines(node ast.Node, source []byte) []byte {
	var content bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content.Write(line.Value(source))
	}
	return content.Bytes()
}
