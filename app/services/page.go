package services

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"postviewer/app/dom"
	"postviewer/app/models"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSelectionInFlight is returned when a change event arrives while
	// the select menu is disabled by an earlier refresh.
	ErrSelectionInFlight = errors.New("selection change already in progress")
	// ErrNoListener is returned when an event reaches an element nothing
	// listens on.
	ErrNoListener = errors.New("no listener bound to target")
)

// PageOptions tunes a Page.
type PageOptions struct {
	// FetchConcurrency bounds concurrent author/comment fetches while
	// building posts. 1 fetches strictly in sequence.
	FetchConcurrency int
	// FallbackUserID is used when a change event carries no usable value.
	FallbackUserID int
}

// Selection is the outcome of a handled user selection change.
type Selection struct {
	UserID  int
	Posts   []models.Post
	Refresh *RefreshResult
}

// RefreshResult reports what one refresh cycle touched.
type RefreshResult struct {
	Detached []*html.Node
	Rendered *html.Node
	Attached []*html.Node
}

// Summary is a snapshot of page state for JSON responses.
type Summary struct {
	SelectedUserID int  `json:"selectedUserId,omitempty"`
	Users          int  `json:"users"`
	Posts          int  `json:"posts"`
	Listeners      int  `json:"listeners"`
	Disabled       bool `json:"disabled"`
}

// Page owns one session's document and drives its render cycle.
type Page struct {
	doc      *dom.Document
	fetcher  *Fetcher
	registry *dom.Registry
	toggles  *dom.ToggleListeners
	logger   *zap.Logger
	opts     PageOptions

	mu             sync.Mutex
	selectListener *dom.Listener
	selectedUserID int
}

// NewPage creates a page on a fresh document and binds InitApp to the
// document's load event.
func NewPage(fetcher *Fetcher, logger *zap.Logger, opts PageOptions) (*Page, error) {
	doc, err := dom.NewDocument()
	if err != nil {
		return nil, err
	}
	return NewPageWithDocument(doc, fetcher, logger, opts), nil
}

// NewPageWithDocument is NewPage on a caller-supplied document.
func NewPageWithDocument(doc *dom.Document, fetcher *Fetcher, logger *zap.Logger, opts PageOptions) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FetchConcurrency < 1 {
		opts.FetchConcurrency = 1
	}
	if opts.FallbackUserID < 1 {
		opts.FallbackUserID = 1
	}

	registry := dom.NewRegistry()
	p := &Page{
		doc:      doc,
		fetcher:  fetcher,
		registry: registry,
		toggles:  dom.NewToggleListeners(registry),
		logger:   logger,
		opts:     opts,
	}
	registry.Add(doc.Root, dom.EventLoad, func(ctx context.Context, ev dom.Event) {
		p.InitApp(ctx)
	})
	return p
}

// Load dispatches the page-ready event.
func (p *Page) Load(ctx context.Context) {
	p.registry.Dispatch(ctx, p.doc.Root, dom.Event{Type: dom.EventLoad})
}

// InitApp populates the menu, shows the placeholder and binds
// OnUserSelectionChanged to the menu's change event.
func (p *Page) InitApp(ctx context.Context) []models.User {
	users := p.InitPage(ctx)

	p.mu.Lock()
	empty := p.doc.Main.FirstChild == nil
	p.mu.Unlock()
	if empty {
		if _, err := p.RenderPostsOrPlaceholder(ctx, nil); err != nil {
			p.logger.Warn("render placeholder", zap.Error(err))
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selectListener == nil {
		p.selectListener = p.registry.Add(p.doc.SelectMenu, dom.EventChange, p.handleChange)
	}
	return users
}

// InitPage fetches all users and builds the selection menu. A menu that
// already lists users is left alone, so only a page whose earlier fetch
// came back empty fetches again.
func (p *Page) InitPage(ctx context.Context) []models.User {
	p.mu.Lock()
	populated := len(p.userOptions()) > 0
	p.mu.Unlock()
	if populated {
		return nil
	}

	users := p.fetcher.FetchAllUsers(ctx)
	p.PopulateSelectMenu(users)
	p.logger.Debug("page initialised", zap.Int("users", len(users)))
	return users
}

// PopulateSelectMenu appends one option per user to the select menu and
// returns it, or nil when there are no users.
func (p *Page) PopulateSelectMenu(users []models.User) *html.Node {
	options := dom.OptionsFromUsers(users)
	if options == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, option := range options {
		p.doc.SelectMenu.AppendChild(option)
	}
	return p.doc.SelectMenu
}

// DisplayComments fetches a post's comments and builds its hidden comment
// section. It returns nil for a missing post id.
func (p *Page) DisplayComments(ctx context.Context, postID int) *html.Node {
	if postID <= 0 {
		return nil
	}
	return dom.CommentsSection(postID, p.fetcher.FetchCommentsByPost(ctx, postID))
}

// BuildPostsFragment builds one article per post, fetching each author and
// comment thread. Fetches for different posts run concurrently up to
// FetchConcurrency; articles keep the order of posts.
func (p *Page) BuildPostsFragment(ctx context.Context, posts []models.Post) (*html.Node, error) {
	if posts == nil {
		return nil, nil
	}

	articles := make([]*html.Node, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.FetchConcurrency)
	for i, post := range posts {
		g.Go(func() error {
			author := p.fetcher.FetchUserByID(gctx, post.UserID)
			section := p.DisplayComments(gctx, post.ID)
			articles[i] = dom.PostArticle(post, author, section)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fragment := dom.NewFragment()
	for _, article := range articles {
		fragment.AppendChild(article)
	}
	return fragment, nil
}

// preparePosts builds the posts fragment, or the placeholder when there
// are no posts. Nothing is attached to the document.
func (p *Page) preparePosts(ctx context.Context, posts []models.Post) (*html.Node, error) {
	if len(posts) == 0 {
		return dom.Placeholder(), nil
	}
	return p.BuildPostsFragment(ctx, posts)
}

// RenderPostsOrPlaceholder appends the posts fragment to <main>, or the
// placeholder when posts is empty, and returns the appended node.
func (p *Page) RenderPostsOrPlaceholder(ctx context.Context, posts []models.Post) (*html.Node, error) {
	node, err := p.preparePosts(ctx, posts)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	dom.AppendFragment(p.doc.Main, node)
	return node, nil
}

// RefreshPosts replaces the contents of <main>: detach listeners, clear,
// render, attach, in that order and under the page lock. The network-bound
// build runs first so the document never holds a partial render.
func (p *Page) RefreshPosts(ctx context.Context, posts []models.Post) (*RefreshResult, error) {
	node, err := p.preparePosts(ctx, posts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	result := &RefreshResult{}
	result.Detached = p.toggles.Detach(p.doc)
	dom.RemoveChildren(p.doc.Main)
	dom.AppendFragment(p.doc.Main, node)
	result.Rendered = node
	result.Attached = p.toggles.Attach(p.doc, p.onToggle)
	return result, nil
}

// OnUserSelectionChanged handles a change event from the select menu. The
// menu stays disabled while posts for the chosen user are fetched and
// rendered; a second change arriving meanwhile gets ErrSelectionInFlight.
func (p *Page) OnUserSelectionChanged(ctx context.Context, ev dom.Event) (*Selection, error) {
	if ev.Type != dom.EventChange {
		return nil, nil
	}

	p.mu.Lock()
	if p.doc.Disabled() {
		p.mu.Unlock()
		return nil, ErrSelectionInFlight
	}
	p.doc.SetDisabled(true)
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.doc.SetDisabled(false)
		p.mu.Unlock()
	}()

	userID := p.resolveUserID(ev.Value)
	posts := p.fetcher.FetchPostsByUser(ctx, userID)
	refresh, err := p.RefreshPosts(ctx, posts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.selectedUserID = userID
	dom.SelectOption(p.doc.SelectMenu, strconv.Itoa(userID))
	p.mu.Unlock()

	p.logger.Info("posts refreshed", zap.Int("user_id", userID), zap.Int("posts", len(posts)))
	return &Selection{UserID: userID, Posts: posts, Refresh: refresh}, nil
}

func (p *Page) resolveUserID(value string) int {
	id, err := strconv.Atoi(value)
	if err != nil || id < 1 {
		return p.opts.FallbackUserID
	}
	return id
}

// Select delivers a change event with value to the select menu.
func (p *Page) Select(ctx context.Context, value string) (*Selection, error) {
	out := &outcome{}
	n := p.registry.Dispatch(withOutcome(ctx, out), p.doc.SelectMenu, dom.Event{
		Type:  dom.EventChange,
		Value: value,
	})
	if n == 0 {
		return nil, ErrNoListener
	}
	return out.selection, out.err
}

// Click delivers a click event to the toggle button for postID.
func (p *Page) Click(ctx context.Context, postID string) (*dom.ToggleResult, error) {
	p.mu.Lock()
	button := dom.ButtonFor(p.doc, postID)
	p.mu.Unlock()
	if button == nil {
		return nil, ErrNoListener
	}

	out := &outcome{}
	if p.registry.Dispatch(withOutcome(ctx, out), button, dom.Event{Type: dom.EventClick}) == 0 {
		return nil, ErrNoListener
	}
	return out.toggle, nil
}

func (p *Page) handleChange(ctx context.Context, ev dom.Event) {
	selection, err := p.OnUserSelectionChanged(ctx, ev)
	if err != nil {
		p.logger.Warn("selection change failed", zap.String("value", ev.Value), zap.Error(err))
	}
	if out := outcomeFrom(ctx); out != nil {
		out.selection, out.err = selection, err
	}
}

func (p *Page) onToggle(ctx context.Context, postID string) {
	p.mu.Lock()
	result := dom.ToggleComments(p.doc, postID)
	p.mu.Unlock()
	if out := outcomeFrom(ctx); out != nil {
		out.toggle = result
	}
}

// Render writes the current document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Render(w)
}

// Summary snapshots the page state.
func (p *Page) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Summary{
		SelectedUserID: p.selectedUserID,
		Users:          len(p.userOptions()),
		Posts:          len(p.doc.Articles()),
		Listeners:      p.toggles.Len(),
		Disabled:       p.doc.Disabled(),
	}
}

// userOptions returns the menu options that name a user. Callers hold p.mu.
func (p *Page) userOptions() []*html.Node {
	return dom.FindAll(p.doc.SelectMenu, func(n *html.Node) bool {
		v, _ := dom.GetAttr(n, "value")
		return n.Data == "option" && v != ""
	})
}

// WithDocument runs fn with the page lock held.
func (p *Page) WithDocument(fn func(doc *dom.Document)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.doc)
}

type outcomeKey struct{}

// outcome carries handler results back to Select and Click, since
// registry handlers return nothing.
type outcome struct {
	selection *Selection
	toggle    *dom.ToggleResult
	err       error
}

func withOutcome(ctx context.Context, out *outcome) context.Context {
	return context.WithValue(ctx, outcomeKey{}, out)
}

func outcomeFrom(ctx context.Context) *outcome {
	out, _ := ctx.Value(outcomeKey{}).(*outcome)
	return out
}
