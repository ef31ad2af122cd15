package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

// Settings configures the launched browser and its context
type Settings struct {
	Headless       bool
	SlowMo         time.Duration
	Locale         string
	Permissions    []string
	ViewportWidth  int
	ViewportHeight int
	Args           []string
}

type launcher struct {
	settings Settings
	logger   *logrus.Logger
}

// NewLauncher - creates new playwright-backed browser launcher
func NewLauncher(settings Settings, logger *logrus.Logger) interfaces.BrowserLauncher {
	return &launcher{
		settings: settings,
		logger:   logger,
	}
}

// Launch - starts playwright, a chromium browser and one page
func (l *launcher) Launch(ctx context.Context) (interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.settings.Headless),
		Args:     l.settings.Args,
	}
	if l.settings.SlowMo > 0 {
		launchOptions.SlowMo = playwright.Float(float64(l.settings.SlowMo.Milliseconds()))
	}

	browser, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Permissions: l.settings.Permissions,
	}
	if l.settings.Locale != "" {
		contextOptions.Locale = playwright.String(l.settings.Locale)
	}
	if l.settings.ViewportWidth > 0 && l.settings.ViewportHeight > 0 {
		contextOptions.Viewport = &playwright.Size{
			Width:  l.settings.ViewportWidth,
			Height: l.settings.ViewportHeight,
		}
	}

	browserContext, err := browser.NewContext(contextOptions)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &session{
		pw:      pw,
		browser: browser,
		context: browserContext,
		current: page,
		logger:  l.logger,
	}
	s.watch(page)

	// pages opened by the flow (target=_blank links) become the current page
	browserContext.OnPage(func(newPage playwright.Page) {
		s.mu.Lock()
		s.current = newPage
		s.mu.Unlock()
		s.watch(newPage)
		l.logger.WithField("url", newPage.URL()).Info("Switched to new tab")
	})

	return s, nil
}

type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext

	mu      sync.Mutex
	current playwright.Page
	logger  *logrus.Logger
}

func (s *session) watch(p playwright.Page) {
	p.OnDialog(func(dialog playwright.Dialog) {
		s.logger.WithField("message", dialog.Message()).Debug("Accepting dialog")
		_ = dialog.Accept()
	})
}

func (s *session) active() playwright.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Page - returns a page handle that always targets the active tab
func (s *session) Page() interfaces.Page {
	return &page{session: s}
}

// Close - closes the browser and stops playwright
func (s *session) Close() error {
	var closeErr error

	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		s.context = nil
	}

	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !isClosedErr(err) {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; failed to close browser: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		}
		s.browser = nil
	}

	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		s.pw = nil
	}

	return closeErr
}

type page struct {
	session *session
}

func (p *page) URL() string {
	return p.session.active().URL()
}

func (p *page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.session.active().Title()
}

func (p *page) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.session.active().Content()
}

// Goto - navigates and waits for DOMContentLoaded
func (p *page) Goto(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.session.active().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   millis(timeout),
	})
	return err
}

func (p *page) WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.session.active().WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: millis(timeout),
	})
}

func (p *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.session.active().Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
}

func (p *page) Locator(selector string) interfaces.Locator {
	return &locator{inner: p.session.active().Locator(selector)}
}

// DOMTree - walks the live document and decodes the node tree
func (p *page) DOMTree(ctx context.Context) (*entities.DOMNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := p.session.active().Evaluate(domWalkScript)
	if err != nil {
		return nil, fmt.Errorf("failed to walk DOM: %w", err)
	}
	if result == nil {
		return nil, nil
	}

	root, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected DOM walk result %T", result)
	}
	return decodeNode(root), nil
}

type locator struct {
	inner playwright.Locator
}

func (l *locator) Count() (int, error) { return l.inner.Count() }

func (l *locator) Nth(index int) interfaces.Locator {
	return &locator{inner: l.inner.Nth(index)}
}

func (l *locator) IsInteractable() (bool, error) {
	return l.evaluateBool(interactableScript)
}

func (l *locator) IsHidden() (bool, error) {
	return l.evaluateBool(hiddenScript)
}

func (l *locator) Click(timeout time.Duration) error {
	return l.inner.Click(playwright.LocatorClickOptions{Timeout: millis(timeout)})
}

func (l *locator) Fill(value string, timeout time.Duration) error {
	return l.inner.Fill(value, playwright.LocatorFillOptions{Timeout: millis(timeout)})
}

func (l *locator) SelectOption(value string, timeout time.Duration) error {
	_, err := l.inner.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.LocatorSelectOptionOptions{Timeout: millis(timeout)})
	return err
}

func (l *locator) Press(key string, timeout time.Duration) error {
	return l.inner.Press(key, playwright.LocatorPressOptions{Timeout: millis(timeout)})
}

func (l *locator) SubmitForm(timeout time.Duration) error {
	_, err := l.inner.Evaluate(submitFormScript, nil, playwright.LocatorEvaluateOptions{Timeout: millis(timeout)})
	return err
}

func (l *locator) InnerText() (string, error) { return l.inner.InnerText() }

func (l *locator) InputValue() (string, error) { return l.inner.InputValue() }

func (l *locator) GetAttribute(name string) (string, error) { return l.inner.GetAttribute(name) }

func (l *locator) IsEnabled() (bool, error) { return l.inner.IsEnabled() }

func (l *locator) IsChecked() (bool, error) { return l.inner.IsChecked() }

func (l *locator) IsVisible() (bool, error) { return l.inner.IsVisible() }

func (l *locator) evaluateBool(script string) (bool, error) {
	result, err := l.inner.Evaluate(script, nil)
	if err != nil {
		return false, err
	}
	b, _ := result.(bool)
	return b, nil
}

// decodeNode - converts the evaluated JS object into a DOMNode
func decodeNode(m map[string]interface{}) *entities.DOMNode {
	node := &entities.DOMNode{
		Tag:        getString(m, "tag"),
		Attrs:      make(map[string]string),
		DirectText: getString(m, "directText"),
		FullText:   getString(m, "fullText"),
		Clickable:  getBool(m, "clickable"),
		Err:        getString(m, "error"),
		Children:   []*entities.DOMNode{},
	}

	if attrs, ok := m["attrs"].(map[string]interface{}); ok {
		for k, v := range attrs {
			if str, ok := v.(string); ok {
				node.Attrs[k] = str
			}
		}
	}

	if children, ok := m["children"].([]interface{}); ok {
		for _, c := range children {
			if cm, ok := c.(map[string]interface{}); ok {
				node.Children = append(node.Children, decodeNode(cm))
			}
		}
	}
	return node
}

// getString - extracts string value from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getBool - extracts boolean value from map
func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func millis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func isClosedErr(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

var _ interfaces.Locator = (*locator)(nil)
