// Package dom holds the in-memory document a viewer session renders into,
// the builders that turn API records into element trees, and the listener
// registry that stands in for browser event handlers.
package dom

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

//go:embed shell.html
var shellHTML []byte

// SelectMenuID is the id of the employee select element.
const SelectMenuID = "selectMenu"

var ErrMissingElement = errors.New("document is missing a required element")

// Document is a parsed page with handles to the elements the viewer drives.
type Document struct {
	Root       *html.Node
	Main       *html.Node
	SelectMenu *html.Node
}

// NewDocument parses the built-in page shell.
func NewDocument() (*Document, error) {
	return ParseDocument(bytes.NewReader(shellHTML))
}

// ParseDocument parses r and resolves the <main> and #selectMenu handles.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := &Document{
		Root:       root,
		Main:       Find(root, ByTag("main")),
		SelectMenu: Find(root, ByTagAttr("select", "id", SelectMenuID)),
	}
	if doc.Main == nil {
		return nil, fmt.Errorf("%w: <main>", ErrMissingElement)
	}
	if doc.SelectMenu == nil {
		return nil, fmt.Errorf("%w: select#%s", ErrMissingElement, SelectMenuID)
	}
	return doc, nil
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// String renders the document, returning the empty string on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Disabled reports whether the select menu carries the disabled attribute.
func (d *Document) Disabled() bool {
	return HasAttr(d.SelectMenu, "disabled")
}

// SetDisabled adds or removes the select menu's disabled attribute.
func (d *Document) SetDisabled(disabled bool) {
	if disabled {
		SetAttr(d.SelectMenu, "disabled", "")
		return
	}
	RemoveAttr(d.SelectMenu, "disabled")
}

// Articles returns the top-level post articles currently under <main>.
func (d *Document) Articles() []*html.Node {
	var articles []*html.Node
	for c := d.Main.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "article" {
			articles = append(articles, c)
		}
	}
	return articles
}

// ToggleButtons returns every button under <main> carrying a post id.
func (d *Document) ToggleButtons() []*html.Node {
	return FindAll(d.Main, func(n *html.Node) bool {
		return n.Data == "button" && HasAttr(n, AttrPostID)
	})
}
