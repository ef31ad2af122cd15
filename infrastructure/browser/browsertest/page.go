// Package browsertest provides an in-memory browser page for tests.
package browsertest

import (
	"context"
	"fmt"
	"time"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

// Element is one fake DOM element
type Element struct {
	Text     string
	Value    string
	Attrs    map[string]string
	Hidden   bool
	Disabled bool
	Checked  bool
	IsForm   bool

	// FailClicks makes the next N clicks fail.
	FailClicks int

	Clicks    int
	Presses   []string
	Selected  []string
	Submitted int
}

// Page is a scripted interfaces.Page. Elements maps a selector to every element it matches.
type Page struct {
	CurrentURL string
	PageTitle  string
	HTML       string
	Tree       *entities.DOMNode
	Elements   map[string][]*Element

	// Delays makes the next N visibility waits for a selector time out.
	Delays map[string]int

	IdleErr error
	TreeErr error

	// OnClick runs after a successful click.
	OnClick func(p *Page, selector string, el *Element)

	GotoCalls []string
	WaitCalls []string
}

// NewPage - creates an empty page at url
func NewPage(url string) *Page {
	return &Page{
		CurrentURL: url,
		Elements:   make(map[string][]*Element),
		Delays:     make(map[string]int),
	}
}

// Add - registers elements matched by selector
func (p *Page) Add(selector string, els ...*Element) *Page {
	p.Elements[selector] = append(p.Elements[selector], els...)
	return p
}

func (p *Page) URL() string { return p.CurrentURL }

func (p *Page) Title(ctx context.Context) (string, error) { return p.PageTitle, nil }

func (p *Page) Content(ctx context.Context) (string, error) { return p.HTML, nil }

func (p *Page) Goto(ctx context.Context, url string, timeout time.Duration) error {
	p.GotoCalls = append(p.GotoCalls, url)
	p.CurrentURL = url
	return nil
}

func (p *Page) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	return p.IdleErr
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.WaitCalls = append(p.WaitCalls, selector)
	if p.Delays[selector] > 0 {
		p.Delays[selector]--
		return fmt.Errorf("timeout %s exceeded waiting for %q", timeout, selector)
	}
	for _, el := range p.Elements[selector] {
		if !el.Hidden {
			return nil
		}
	}
	return fmt.Errorf("timeout %s exceeded waiting for %q", timeout, selector)
}

func (p *Page) Locator(selector string) interfaces.Locator {
	return &Locator{page: p, selector: selector, index: -1}
}

func (p *Page) DOMTree(ctx context.Context) (*entities.DOMNode, error) {
	if p.TreeErr != nil {
		return nil, p.TreeErr
	}
	if p.Tree == nil {
		return &entities.DOMNode{Tag: "body"}, nil
	}
	return p.Tree, nil
}

// Locator is a fake interfaces.Locator
type Locator struct {
	page     *Page
	selector string
	index    int
}

func (l *Locator) all() []*Element { return l.page.Elements[l.selector] }

func (l *Locator) element() (*Element, error) {
	els := l.all()
	idx := l.index
	if idx < 0 {
		idx = 0
	}
	if idx >= len(els) {
		return nil, fmt.Errorf("no element for %q at index %d", l.selector, idx)
	}
	return els[idx], nil
}

// Index - returns the nth position this locator is pinned to, or -1
func (l *Locator) Index() int { return l.index }

func (l *Locator) Count() (int, error) {
	n := len(l.all())
	if l.index < 0 {
		return n, nil
	}
	if l.index < n {
		return 1, nil
	}
	return 0, nil
}

func (l *Locator) Nth(index int) interfaces.Locator {
	return &Locator{page: l.page, selector: l.selector, index: index}
}

func (l *Locator) IsInteractable() (bool, error) {
	el, err := l.element()
	if err != nil {
		return false, err
	}
	return !el.Disabled && !el.Hidden, nil
}

func (l *Locator) IsHidden() (bool, error) {
	el, err := l.element()
	if err != nil {
		return false, err
	}
	return el.Hidden, nil
}

func (l *Locator) Click(timeout time.Duration) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	if el.FailClicks > 0 {
		el.FailClicks--
		return fmt.Errorf("element is detached from the DOM")
	}
	el.Clicks++
	if l.page.OnClick != nil {
		l.page.OnClick(l.page, l.selector, el)
	}
	return nil
}

func (l *Locator) Fill(value string, timeout time.Duration) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	el.Value = value
	return nil
}

func (l *Locator) SelectOption(value string, timeout time.Duration) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	el.Selected = append(el.Selected, value)
	el.Value = value
	return nil
}

func (l *Locator) Press(key string, timeout time.Duration) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	el.Presses = append(el.Presses, key)
	return nil
}

func (l *Locator) SubmitForm(timeout time.Duration) error {
	el, err := l.element()
	if err != nil {
		return err
	}
	if !el.IsForm {
		return fmt.Errorf("form.submit is not a function")
	}
	el.Submitted++
	return nil
}

func (l *Locator) InnerText() (string, error) {
	el, err := l.element()
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (l *Locator) InputValue() (string, error) {
	el, err := l.element()
	if err != nil {
		return "", err
	}
	return el.Value, nil
}

func (l *Locator) GetAttribute(name string) (string, error) {
	el, err := l.element()
	if err != nil {
		return "", err
	}
	return el.Attrs[name], nil
}

func (l *Locator) IsEnabled() (bool, error) {
	el, err := l.element()
	if err != nil {
		return false, err
	}
	return !el.Disabled, nil
}

func (l *Locator) IsChecked() (bool, error) {
	el, err := l.element()
	if err != nil {
		return false, err
	}
	return el.Checked, nil
}

func (l *Locator) IsVisible() (bool, error) {
	el, err := l.element()
	if err != nil {
		return false, nil
	}
	return !el.Hidden, nil
}

// Launcher hands out sessions over a single fake page
type Launcher struct {
	Page     *Page
	Err      error
	Launches int
	Closed   int
}

func (l *Launcher) Launch(ctx context.Context) (interfaces.Session, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	l.Launches++
	return &session{launcher: l}, nil
}

type session struct {
	launcher *Launcher
}

func (s *session) Page() interfaces.Page { return s.launcher.Page }

func (s *session) Close() error {
	s.launcher.Closed++
	return nil
}

var (
	_ interfaces.Page            = (*Page)(nil)
	_ interfaces.Locator         = (*Locator)(nil)
	_ interfaces.BrowserLauncher = (*Launcher)(nil)
)
