package unit

import (
	"fmt"
	"sync"
)

// ReservedName is claimed by the produced-value slot and can never be declared
// as a required or optional attribute.
const ReservedName = "result"

// Hook is a post-bind callback. Hooks run once per construction, in
// registration order with ancestor hooks first, after every attribute has been
// bound. They are how derived contracts initialize computed state without
// replacing construction itself.
type Hook func(w Worker)

// ContractOpt configures a contract declaration
type ContractOpt func(*Contract)

// Requires declares names that must be present in the input bag
func Requires(names ...string) ContractOpt {
	return func(c *Contract) { c.required = append(c.required, names...) }
}

// Optional declares names that are bound when present and absent otherwise
func Optional(names ...string) ContractOpt {
	return func(c *Contract) { c.optional = append(c.optional, names...) }
}

// Skips opts out of names declared by an ancestor contract. A skipped name is
// treated as already satisfied: it is never required and always reads as
// absent, for this contract and everything extending it.
func Skips(names ...string) ContractOpt {
	return func(c *Contract) { c.skipped = append(c.skipped, names...) }
}

// AfterBind registers a post-bind hook
func AfterBind(hook Hook) ContractOpt {
	return func(c *Contract) { c.hooks = append(c.hooks, hook) }
}

// Declare builds a root contract. Declaring the reserved name or an empty name
// is a programmer error and panics at declaration time.
func Declare(opts ...ContractOpt) *Contract {
	c := new(Contract)
	for _, opt := range opts {
		opt(c)
	}
	c.validate()
	return c
}

// Extend derives a contract that inherits every declaration of its ancestors
// additively. A derived contract only ever adds names and hooks, it never
// replaces what an ancestor declared, except through Skips.
func (c *Contract) Extend(opts ...ContractOpt) *Contract {
	child := &Contract{parent: c}
	for _, opt := range opts {
		opt(child)
	}
	child.validate()
	return child
}

// A Contract holds the attribute declarations governing construction of one
// worker type. Contracts are declared once, at package init time, and treated
// as immutable afterwards.
type Contract struct {
	parent   *Contract
	required []string
	optional []string
	skipped  []string
	hooks    []Hook

	once sync.Once
	res  *resolved
}

func (c *Contract) validate() {
	for _, names := range [][]string{c.required, c.optional} {
		for _, name := range names {
			if name == ReservedName {
				panic(fmt.Sprintf("unit: %q is reserved for the produced value and cannot be declared", name))
			}
			if name == "" {
				panic("unit: attribute names cannot be empty")
			}
		}
	}
	for _, name := range c.skipped {
		if name == "" {
			panic("unit: attribute names cannot be empty")
		}
	}
}

type resolved struct {
	required []string
	optional []string
	skipped  map[string]struct{}
	hooks    []Hook
}

// resolve flattens the contract chain into the effective declaration sets.
// The result is computed once and cached for every construction after that.
func (c *Contract) resolve() *resolved {
	c.once.Do(func() {
		var chain []*Contract
		for cur := c; cur != nil; cur = cur.parent {
			chain = append(chain, cur)
		}

		r := &resolved{skipped: make(map[string]struct{})}
		for _, lvl := range chain {
			for _, name := range lvl.skipped {
				r.skipped[name] = struct{}{}
			}
		}

		// skipped names count as already loaded so they are never bound
		loaded := make(map[string]struct{}, len(r.skipped))
		for name := range r.skipped {
			loaded[name] = struct{}{}
		}
		for _, lvl := range chain {
			for _, name := range lvl.required {
				if _, ok := loaded[name]; ok {
					continue
				}
				loaded[name] = struct{}{}
				r.required = append(r.required, name)
			}
		}
		for _, lvl := range chain {
			for _, name := range lvl.optional {
				if _, ok := loaded[name]; ok {
					continue
				}
				loaded[name] = struct{}{}
				r.optional = append(r.optional, name)
			}
		}

		// ancestor hooks run before the hooks of the contracts extending them
		for i := len(chain) - 1; i >= 0; i-- {
			r.hooks = append(r.hooks, chain[i].hooks...)
		}
		c.res = r
	})
	return c.res
}
