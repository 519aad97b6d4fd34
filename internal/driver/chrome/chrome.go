// Package chrome implements driver.Driver on top of a Chrome DevTools session.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/driver"
)

// Options configures the browser process.
type Options struct {
	ExecPath    string `mapstructure:"exec-path"`
	UserDataDir string `mapstructure:"user-data-dir"`
	Headless    bool   `mapstructure:"headless"`
	// ActionTimeout bounds every single primitive except WaitFor.
	ActionTimeout time.Duration `mapstructure:"action-timeout" validate:"gte=0"`
	// TypeDelay pauses between keystrokes; autocomplete widgets need it.
	TypeDelay time.Duration `mapstructure:"type-delay" validate:"gte=0"`
}

const defaultActionTimeout = 30 * time.Second

type nodeLocator struct {
	node *cdp.Node
}

func (l *nodeLocator) String() string {
	if l.node == nil {
		return "<nil>"
	}
	return l.node.FullXPath()
}

// Driver holds one browser tab.
type Driver struct {
	ctx           context.Context
	cancel        context.CancelFunc
	actionTimeout time.Duration
	typeDelay     time.Duration
	logger        *zap.Logger
}

// New launches the browser and opens its first tab. The session lives until
// Close or until parent is cancelled.
func New(parent context.Context, opts Options, logger *zap.Logger) (*Driver, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.NoSandbox,
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// start the browser now so launch errors surface here
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	timeout := opts.ActionTimeout
	if timeout <= 0 {
		timeout = defaultActionTimeout
	}

	return &Driver{
		ctx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		actionTimeout: timeout,
		typeDelay:     opts.TypeDelay,
		logger:        logger,
	}, nil
}

// run executes actions in the tab context, honouring cancellation of ctx.
func (d *Driver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("navigate", zap.String("url", url))
	return d.run(ctx, d.actionTimeout, chromedp.Navigate(url))
}

func (d *Driver) Location(ctx context.Context) (string, error) {
	var url string
	err := d.run(ctx, d.actionTimeout, chromedp.Location(&url))
	return url, err
}

func (d *Driver) FindOne(ctx context.Context, scope driver.Locator, selector string) (driver.Locator, error) {
	all, err := d.FindAll(ctx, scope, selector)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s: %w", selector, driver.ErrNotFound)
	}
	return all[0], nil
}

func (d *Driver) FindAll(ctx context.Context, scope driver.Locator, selector string) ([]driver.Locator, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if scope != nil {
		n, err := resolve(scope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chromedp.FromNode(n))
	}

	var nodes []*cdp.Node
	if err := d.run(ctx, d.actionTimeout, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}

	out := make([]driver.Locator, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &nodeLocator{node: n})
	}
	return out, nil
}

func (d *Driver) Click(ctx context.Context, loc driver.Locator) error {
	n, err := resolve(loc)
	if err != nil {
		return err
	}
	return d.run(ctx, d.actionTimeout, chromedp.MouseClickNode(n))
}

func (d *Driver) Clear(ctx context.Context, loc driver.Locator) error {
	n, err := resolve(loc)
	if err != nil {
		return err
	}
	return d.run(ctx, d.actionTimeout, chromedp.Clear([]cdp.NodeID{n.NodeID}, chromedp.ByNodeID))
}

func (d *Driver) Type(ctx context.Context, loc driver.Locator, text string) error {
	n, err := resolve(loc)
	if err != nil {
		return err
	}
	ids := []cdp.NodeID{n.NodeID}

	if d.typeDelay <= 0 {
		return d.run(ctx, d.actionTimeout, chromedp.SendKeys(ids, text, chromedp.ByNodeID))
	}

	actions := make([]chromedp.Action, 0, 2*len(text))
	for _, r := range text {
		actions = append(actions, chromedp.SendKeys(ids, string(r), chromedp.ByNodeID), chromedp.Sleep(d.typeDelay))
	}
	return d.run(ctx, d.actionTimeout+time.Duration(len(actions))*d.typeDelay, actions...)
}

func (d *Driver) Upload(ctx context.Context, loc driver.Locator, path string) error {
	n, err := resolve(loc)
	if err != nil {
		return err
	}
	return d.run(ctx, d.actionTimeout, chromedp.SetUploadFiles([]cdp.NodeID{n.NodeID}, []string{path}, chromedp.ByNodeID))
}

func (d *Driver) ReadText(ctx context.Context, loc driver.Locator) (string, error) {
	n, err := resolve(loc)
	if err != nil {
		return "", err
	}
	var text string
	err = d.run(ctx, d.actionTimeout, chromedp.Text([]cdp.NodeID{n.NodeID}, &text, chromedp.ByNodeID, chromedp.NodeReady))
	return text, err
}

func (d *Driver) ReadAttribute(ctx context.Context, loc driver.Locator, name string) (string, bool, error) {
	n, err := resolve(loc)
	if err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	err = d.run(ctx, d.actionTimeout, chromedp.AttributeValue([]cdp.NodeID{n.NodeID}, name, &value, &ok, chromedp.ByNodeID, chromedp.NodeReady))
	return value, ok, err
}

func (d *Driver) WaitFor(ctx context.Context, selector string, timeout time.Duration) (driver.Locator, error) {
	var nodes []*cdp.Node
	err := d.run(ctx, timeout, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s after %s: %w", selector, timeout, driver.ErrTimeout)
		}
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%s: %w", selector, driver.ErrNotFound)
	}
	return &nodeLocator{node: nodes[0]}, nil
}

// Close shuts the browser down. It is safe to call more than once.
func (d *Driver) Close() error {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	return nil
}

func resolve(loc driver.Locator) (*cdp.Node, error) {
	l, ok := loc.(*nodeLocator)
	if !ok || l == nil || l.node == nil {
		return nil, fmt.Errorf("locator %v was not produced by the chrome driver", loc)
	}
	return l.node, nil
}

var _ driver.Driver = (*Driver)(nil)
