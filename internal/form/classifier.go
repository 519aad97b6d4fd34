package form

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/driver"
)

// Classifier runs the rule chain over form units.
type Classifier struct {
	driver driver.Driver
	rules  []Rule
	unit   string
	logger *zap.Logger
}

func NewClassifier(d driver.Driver, sel Selectors, logger *zap.Logger) *Classifier {
	sel = sel.withDefaults()
	return &Classifier{
		driver: d,
		rules:  DefaultRules(sel),
		unit:   sel.Unit,
		logger: logger,
	}
}

// Classify returns the field produced by the first matching rule, or
// ErrUnclassifiable when none matches.
func (c *Classifier) Classify(ctx context.Context, unit driver.Locator) (*Field, error) {
	for _, rule := range c.rules {
		field, matched, err := rule.TryClassify(ctx, c.driver, unit)
		if err != nil {
			return nil, fmt.Errorf("%s rule: %w", rule.Name(), err)
		}
		if matched {
			return field, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", unit, ErrUnclassifiable)
}

// Units returns the form units of the current document state.
func (c *Classifier) Units(ctx context.Context) ([]driver.Locator, error) {
	return c.driver.FindAll(ctx, nil, c.unit)
}

// ClassifyAll classifies every form unit of the current document state,
// skipping the unclassifiable ones.
func (c *Classifier) ClassifyAll(ctx context.Context) ([]*Field, error) {
	units, err := c.Units(ctx)
	if err != nil {
		return nil, fmt.Errorf("find form units: %w", err)
	}

	fields := make([]*Field, 0, len(units))
	for _, unit := range units {
		field, err := c.Classify(ctx, unit)
		if errors.Is(err, ErrUnclassifiable) {
			c.logger.Debug("skipping form unit", zap.Stringer("unit", unit), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}
