package differ

import (
	"strings"

	"golang.org/x/net/html"
)

const indentUnit = "  "

// voidElements never have a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// PrettyPrint renders the given nodes one tag or text run per line with
// two-space indentation per nesting level. Whitespace-only text is dropped
// and text is trimmed, so reflowed markup produces identical output.
func PrettyPrint(nodes ...*html.Node) string {
	var lines []string
	for _, n := range nodes {
		lines = appendNode(lines, n, 0)
	}
	return strings.Join(lines, "\n")
}

func appendNode(lines []string, n *html.Node, depth int) []string {
	indent := strings.Repeat(indentUnit, depth)

	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			lines = appendNode(lines, c, depth)
		}
	case html.DoctypeNode:
		lines = append(lines, indent+"<!DOCTYPE "+n.Data+">")
	case html.CommentNode:
		lines = append(lines, indent+"<!--"+n.Data+"-->")
	case html.TextNode:
		for _, line := range strings.Split(n.Data, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, indent+line)
			}
		}
	case html.ElementNode:
		lines = append(lines, indent+openTag(n))
		if voidElements[n.Data] {
			return lines
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			lines = appendNode(lines, c, depth+1)
		}
		lines = append(lines, indent+"</"+n.Data+">")
	}
	return lines
}

func openTag(n *html.Node) string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(n.Data)
	for _, attr := range n.Attr {
		sb.WriteByte(' ')
		if attr.Namespace != "" {
			sb.WriteString(attr.Namespace)
			sb.WriteByte(':')
		}
		sb.WriteString(attr.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(attr.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	return sb.String()
}
