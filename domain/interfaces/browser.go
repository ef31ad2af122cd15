package interfaces

import (
	"context"
	"time"

	"flow_navigator/domain/entities"
)

// Page defines the browser page operations the engine relies on
type Page interface {
	// URL returns the current page URL
	URL() string

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// Content returns the serialized page HTML
	Content(ctx context.Context) (string, error)

	// Goto navigates to a URL and waits for DOMContentLoaded
	Goto(ctx context.Context, url string, timeout time.Duration) error

	// WaitForNetworkIdle waits until the page has no network activity
	WaitForNetworkIdle(ctx context.Context, timeout time.Duration) error

	// WaitForSelector waits until selector matches a visible element
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error

	// Locator returns a lazy handle over every element matching selector
	Locator(selector string) Locator

	// DOMTree walks the document body and returns the raw node tree
	DOMTree(ctx context.Context) (*entities.DOMNode, error)
}

// Locator defines operations on the elements matched by a selector
type Locator interface {
	Count() (int, error)
	Nth(index int) Locator

	// IsInteractable reports !disabled && offsetParent !== null
	IsInteractable() (bool, error)

	// IsHidden reports offsetParent === null
	IsHidden() (bool, error)

	Click(timeout time.Duration) error
	Fill(value string, timeout time.Duration) error
	SelectOption(value string, timeout time.Duration) error
	Press(key string, timeout time.Duration) error

	// SubmitForm calls submit() on the matched form element
	SubmitForm(timeout time.Duration) error

	InnerText() (string, error)
	InputValue() (string, error)
	GetAttribute(name string) (string, error)
	IsEnabled() (bool, error)
	IsChecked() (bool, error)
	IsVisible() (bool, error)
}

// Session owns one browser and the page it drives
type Session interface {
	Page() Page

	// Close closes the browser
	Close() error
}

// BrowserLauncher starts browser sessions
type BrowserLauncher interface {
	Launch(ctx context.Context) (Session, error)
}
