package dom

import (
	"context"
	"sync"

	"golang.org/x/net/html"
)

// ToggleListeners tracks the click listener bound to each comment toggle
// button so it can later be removed by reference.
type ToggleListeners struct {
	registry *Registry

	mu    sync.Mutex
	bound map[*html.Node]*Listener
}

func NewToggleListeners(registry *Registry) *ToggleListeners {
	return &ToggleListeners{
		registry: registry,
		bound:    make(map[*html.Node]*Listener),
	}
}

// Attach binds onToggle to every button under <main> that carries a post
// id. Buttons that already have a listener are left alone, so each button
// holds at most one. It returns the buttons scanned.
func (t *ToggleListeners) Attach(doc *Document, onToggle func(ctx context.Context, postID string)) []*html.Node {
	buttons := doc.ToggleButtons()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, button := range buttons {
		if _, ok := t.bound[button]; ok {
			continue
		}
		postID, _ := GetAttr(button, AttrPostID)
		if postID == "" {
			continue
		}
		t.bound[button] = t.registry.Add(button, EventClick, func(ctx context.Context, ev Event) {
			onToggle(ctx, postID)
		})
	}
	return buttons
}

// Detach removes the listener stored for every button under <main> and
// forgets it. Calling it again removes nothing. It returns the buttons
// scanned.
func (t *ToggleListeners) Detach(doc *Document) []*html.Node {
	buttons := doc.ToggleButtons()

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, button := range buttons {
		if l, ok := t.bound[button]; ok {
			t.registry.Remove(button, l)
			delete(t.bound, button)
		}
	}
	return buttons
}

// Listener returns the listener currently bound to button, if any.
func (t *ToggleListeners) Listener(button *html.Node) *Listener {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound[button]
}

// Len returns the number of bound toggle buttons.
func (t *ToggleListeners) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bound)
}

// ToggleResult is what ToggleComments changed.
type ToggleResult struct {
	Section *html.Node
	Button  *html.Node
	Hidden  bool
	Label   string
}

// ToggleComments flips the hide class on the comment section for postID
// and swaps its button label. It returns nil without touching the document
// when postID is empty or either element is missing.
func ToggleComments(doc *Document, postID string) *ToggleResult {
	if postID == "" {
		return nil
	}
	section := Find(doc.Main, ByTagAttr("section", AttrPostID, postID))
	button := Find(doc.Main, ByTagAttr("button", AttrPostID, postID))
	if section == nil || button == nil {
		return nil
	}

	hidden := ToggleClass(section, ClassHide)
	label := LabelShowComments
	if TextContent(button) == LabelShowComments {
		label = LabelHideComments
	}
	SetText(button, label)

	return &ToggleResult{
		Section: section,
		Button:  button,
		Hidden:  hidden,
		Label:   label,
	}
}

// ButtonFor returns the toggle button for postID under <main>, or nil.
func ButtonFor(doc *Document, postID string) *html.Node {
	if postID == "" {
		return nil
	}
	return Find(doc.Main, ByTagAttr("button", AttrPostID, postID))
}
