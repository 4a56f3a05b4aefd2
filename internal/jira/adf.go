package jira

import (
	"encoding/json"
	"strings"
)

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

var adfBlocks = map[string]bool{
	"paragraph":  true,
	"heading":    true,
	"listItem":   true,
	"codeBlock":  true,
	"blockquote": true,
	"rule":       true,
	"tableRow":   true,
}

// DescriptionText flattens an issue description to plain text. Jira v3
// returns Atlassian Document Format; older payloads carry a plain string.
func DescriptionText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var root adfNode
	if err := json.Unmarshal(raw, &root); err != nil {
		return string(raw)
	}

	var b strings.Builder
	writeADF(&b, root)
	return strings.TrimSpace(b.String())
}

func writeADF(b *strings.Builder, n adfNode) {
	switch n.Type {
	case "text":
		b.WriteString(n.Text)
		return
	case "hardBreak":
		b.WriteString("\n")
		return
	case "listItem":
		b.WriteString("- ")
	}

	for _, child := range n.Content {
		writeADF(b, child)
	}

	if adfBlocks[n.Type] {
		b.WriteString("\n")
	}
}
