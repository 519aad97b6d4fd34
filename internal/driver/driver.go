// Package driver defines the document automation primitives consumed by the form engine.
package driver

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by FindOne when nothing matches the selector.
var ErrNotFound = errors.New("element not found")

// ErrTimeout is returned by WaitFor when the selector did not appear in time.
var ErrTimeout = errors.New("timed out waiting for element")

// Locator is an opaque handle to an element. Only the driver that produced it
// knows how to use it; callers must never inspect its shape.
type Locator interface {
	String() string
}

// Driver is one exclusive interactive document session.
// A nil scope means the whole document.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)

	FindOne(ctx context.Context, scope Locator, selector string) (Locator, error)
	FindAll(ctx context.Context, scope Locator, selector string) ([]Locator, error)

	Click(ctx context.Context, loc Locator) error
	Clear(ctx context.Context, loc Locator) error
	Type(ctx context.Context, loc Locator, text string) error
	Upload(ctx context.Context, loc Locator, path string) error

	ReadText(ctx context.Context, loc Locator) (string, error)
	// ReadAttribute reports ok=false when the attribute is absent.
	ReadAttribute(ctx context.Context, loc Locator, name string) (value string, ok bool, err error)

	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Locator, error)

	Close() error
}

// Exists reports whether the selector matches anything inside scope.
func Exists(ctx context.Context, d Driver, scope Locator, selector string) (bool, error) {
	_, err := d.FindOne(ctx, scope, selector)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Fill replaces the control value with text.
func Fill(ctx context.Context, d Driver, loc Locator, text string) error {
	if err := d.Clear(ctx, loc); err != nil {
		return err
	}
	return d.Type(ctx, loc, text)
}
