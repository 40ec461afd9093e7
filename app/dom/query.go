package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FindAll returns every element under root (root included) matching pred,
// in document order.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	if root != nil {
		traverse(root)
	}
	return found
}

// Find returns the first element under root matching pred, or nil.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if root.Type == html.ElementNode && pred(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := Find(c, pred); n != nil {
			return n
		}
	}
	return nil
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

// ByTagAttr matches tag[attr="value"].
func ByTagAttr(tag, attr, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Data != tag {
			return false
		}
		v, ok := GetAttr(n, attr)
		return ok && v == value
	}
}

// ByID matches #id.
func ByID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := GetAttr(n, "id")
		return ok && v == id
	}
}

func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

func HasAttr(n *html.Node, key string) bool {
	_, ok := GetAttr(n, key)
	return ok
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	v, _ := GetAttr(n, "class")
	return strings.Fields(v)
}

func HasClass(n *html.Node, class string) bool {
	for _, c := range Classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func AddClass(n *html.Node, classes ...string) {
	current := Classes(n)
	for _, class := range classes {
		if class == "" || HasClass(n, class) {
			continue
		}
		current = append(current, class)
		SetAttr(n, "class", strings.Join(current, " "))
	}
}

func RemoveClass(n *html.Node, class string) {
	var kept []string
	for _, c := range Classes(n) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// ToggleClass flips class on n and reports whether it is now present.
func ToggleClass(n *html.Node, class string) bool {
	if HasClass(n, class) {
		RemoveClass(n, class)
		return false
	}
	AddClass(n, class)
	return true
}

// TextContent concatenates every text node under n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return b.String()
}

// SetText replaces n's children with a single text node.
func SetText(n *html.Node, text string) {
	RemoveChildren(n)
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// RemoveChildren detaches every child of n, last first, and returns n.
func RemoveChildren(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.LastChild; c != nil; c = n.LastChild {
		n.RemoveChild(c)
	}
	return n
}

// NewElement creates a detached element node.
func NewElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}
