package cli

import (
	"encoding/json"
	"strings"
)

// docNode is the subset of the editor document shape the REPL produces: a
// "doc" of paragraphs, each holding at most one text node.
type docNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []docNode `json:"content,omitempty"`
}

// buildDocument turns typed lines into the structured document and its
// plain-text projection. An empty line becomes an empty paragraph.
func buildDocument(lines []string) (json.RawMessage, string) {
	doc := docNode{Type: "doc", Content: make([]docNode, 0, len(lines))}
	for _, line := range lines {
		p := docNode{Type: "paragraph"}
		if line != "" {
			p.Content = []docNode{{Type: "text", Text: line}}
		}
		doc.Content = append(doc.Content, p)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		// docNode only holds strings and slices of itself
		panic(err)
	}
	return raw, strings.Join(lines, "\n")
}
