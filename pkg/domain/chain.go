package domain

import (
	"context"
	"fmt"
)

// ActionFunc is the work of a chain item. node is the route the item belongs to.
type ActionFunc func(ctx context.Context, node Node) error

// ConditionFunc guards a single chain item. A false result skips the item's action.
type ConditionFunc func(ctx context.Context, node Node) (bool, error)

// Item is one unit of work returned by a hook.
// An Item with no Condition is a bare action.
type Item struct {
	Name      string
	Condition ConditionFunc
	Action    ActionFunc
}

// Do returns an unconditional item.
func Do(action ActionFunc) Item {
	return Item{Action: action}
}

// When returns an item whose action only runs if cond holds.
func When(cond ConditionFunc, action ActionFunc) Item {
	return Item{Condition: cond, Action: action}
}

// Named returns a copy of the item labelled for logs and events.
func (i Item) Named(name string) Item {
	i.Name = name
	return i
}

// Label returns the item's name, or its position when unnamed.
func (i Item) Label(index int) string {
	if i.Name != "" {
		return i.Name
	}
	return fmt.Sprintf("#%d", index)
}

// Chain is the ordered list of items a hook returns.
type Chain []Item

// Validate checks that every item carries an action.
func (c Chain) Validate() error {
	for i, item := range c {
		if item.Action == nil {
			return &ProtocolViolationError{
				Got:    "Item",
				Reason: fmt.Sprintf("chain item %d has no action", i),
			}
		}
	}
	return nil
}

// AsChain normalises the value returned by a dynamic hook into a Chain.
//
// Accepted shapes are Chain, []Item, []ActionFunc and []any whose elements are
// Item, *Item, ActionFunc or one of the plain function shapes
// func(context.Context, Node) error, func(context.Context) error and func() error.
// A nil value is not a chain.
func AsChain(v any) (Chain, error) {
	var chain Chain
	switch t := v.(type) {
	case Chain:
		chain = t
	case []Item:
		chain = Chain(t)
	case []ActionFunc:
		chain = make(Chain, 0, len(t))
		for _, fn := range t {
			chain = append(chain, Item{Action: fn})
		}
	case []any:
		chain = make(Chain, 0, len(t))
		for i, el := range t {
			item, ok := asItem(el)
			if !ok {
				return nil, &ProtocolViolationError{
					Got:    fmt.Sprintf("%T", el),
					Reason: fmt.Sprintf("element %d is not a chain item", i),
				}
			}
			chain = append(chain, item)
		}
	default:
		return nil, &ProtocolViolationError{Got: fmt.Sprintf("%T", v)}
	}
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	return chain, nil
}

func asItem(v any) (Item, bool) {
	switch fn := v.(type) {
	case Item:
		return fn, true
	case *Item:
		if fn == nil {
			return Item{}, false
		}
		return *fn, true
	case ActionFunc:
		return Item{Action: fn}, fn != nil
	case func(context.Context, Node) error:
		return Item{Action: fn}, fn != nil
	case func(context.Context) error:
		if fn == nil {
			return Item{}, false
		}
		return Item{Action: func(ctx context.Context, _ Node) error { return fn(ctx) }}, true
	case func() error:
		if fn == nil {
			return Item{}, false
		}
		return Item{Action: func(context.Context, Node) error { return fn() }}, true
	}
	return Item{}, false
}
