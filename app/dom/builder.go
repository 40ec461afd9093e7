package dom

import (
	"fmt"
	"strconv"

	"postviewer/app/models"

	"golang.org/x/net/html"
)

const (
	// AttrPostID correlates a post's toggle button with its comment section.
	AttrPostID = "data-post-id"

	ClassHide     = "hide"
	ClassComments = "comments"
	ClassDefault  = "default-text"

	LabelShowComments = "Show Comments"
	LabelHideComments = "Hide Comments"

	PlaceholderText = "Select an Employee to display their posts."
)

// ElementWithText creates a tag element holding text, with an optional
// class. An empty tag defaults to a paragraph.
func ElementWithText(tag, text string, className ...string) *html.Node {
	if tag == "" {
		tag = "p"
	}
	el := NewElement(tag)
	SetText(el, text)
	if len(className) > 0 {
		AddClass(el, className...)
	}
	return el
}

// OptionsFromUsers maps each user to <option value="{id}">{name}</option>
// in input order. It returns nil for an empty or absent list.
func OptionsFromUsers(users []models.User) []*html.Node {
	if len(users) == 0 {
		return nil
	}
	options := make([]*html.Node, 0, len(users))
	for _, user := range users {
		option := ElementWithText("option", user.Name)
		SetAttr(option, "value", strconv.Itoa(user.ID))
		options = append(options, option)
	}
	return options
}

// NewFragment returns an empty detached container whose children move
// into the target on AppendFragment.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// IsFragment reports whether n was created by NewFragment.
func IsFragment(n *html.Node) bool {
	return n != nil && n.Type == html.DocumentNode && n.Parent == nil
}

// AppendFragment moves node into parent. A fragment contributes its
// children and is left empty. It returns parent.
func AppendFragment(parent, node *html.Node) *html.Node {
	if node == nil {
		return parent
	}
	if !IsFragment(node) {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
		parent.AppendChild(node)
		return parent
	}
	for c := node.FirstChild; c != nil; c = node.FirstChild {
		node.RemoveChild(c)
		parent.AppendChild(c)
	}
	return parent
}

// CommentsFragment maps each comment to an article with its name, body and
// "From: email" line. An absent (nil) list yields nil; an empty list
// yields an empty fragment.
func CommentsFragment(comments []models.Comment) *html.Node {
	if comments == nil {
		return nil
	}
	fragment := NewFragment()
	for i := range comments {
		comment := &comments[i]
		article := NewElement("article")
		article.AppendChild(ElementWithText("h3", comment.Name))
		article.AppendChild(ElementWithText("p", comment.Body))
		article.AppendChild(ElementWithText("p", comment.From()))
		fragment.AppendChild(article)
	}
	return fragment
}

// CommentsSection builds the hidden comment section for a post. A nil
// comment list leaves the section empty.
func CommentsSection(postID int, comments []models.Comment) *html.Node {
	section := NewElement("section")
	SetAttr(section, AttrPostID, strconv.Itoa(postID))
	AddClass(section, ClassComments, ClassHide)
	AppendFragment(section, CommentsFragment(comments))
	return section
}

// PostArticle composes a post with its author line, toggle button and the
// given comment section. A nil author renders as unknown; a nil section is
// skipped.
func PostArticle(post models.Post, author *models.User, section *html.Node) *html.Node {
	article := NewElement("article")
	article.AppendChild(ElementWithText("h2", post.Title))
	article.AppendChild(ElementWithText("p", post.Body))
	article.AppendChild(ElementWithText("p", fmt.Sprintf("Post ID: %d", post.ID)))
	article.AppendChild(ElementWithText("p", author.Byline()))
	catchPhrase := ""
	if author != nil {
		catchPhrase = author.Company.CatchPhrase
	}
	article.AppendChild(ElementWithText("p", catchPhrase))

	button := ElementWithText("button", LabelShowComments)
	SetAttr(button, AttrPostID, post.Key())
	// name/value let the surrounding form post the click back without script.
	SetAttr(button, "name", "postId")
	SetAttr(button, "value", post.Key())
	article.AppendChild(button)

	if section != nil {
		article.AppendChild(section)
	}
	return article
}

// Placeholder is rendered when there are no posts to show.
func Placeholder() *html.Node {
	return ElementWithText("p", PlaceholderText, ClassDefault)
}

// SelectOption marks the option whose value matches as selected and clears
// the flag on every other option of sel.
func SelectOption(sel *html.Node, value string) {
	for _, option := range FindAll(sel, ByTag("option")) {
		if v, _ := GetAttr(option, "value"); v == value {
			SetAttr(option, "selected", "")
		} else {
			RemoveAttr(option, "selected")
		}
	}
}
