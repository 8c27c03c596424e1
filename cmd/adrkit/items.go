package main

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/adr"
	"github.com/rebuy-de/adrkit/pkg/app"
	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/negotiate"
	"github.com/rebuy-de/adrkit/pkg/router"
)

const (
	keyListItems  digutil.Key = "items.list"
	keyShowItem   digutil.Key = "items.show"
	keyCreateItem digutil.Key = "items.create"
)

type Item struct {
	ID   string `json:"id" yaml:"id" mapstructure:"id"`
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

type catalogConfig struct {
	Items []Item `mapstructure:"items"`
}

// Catalog is an in-memory item store.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]Item
}

func NewCatalog(items ...Item) *Catalog {
	c := &Catalog{items: map[string]Item{}}
	for _, item := range items {
		c.items[item.ID] = item
	}
	return c
}

func catalogFromConfig(a *app.Application) (*Catalog, error) {
	if a.Config("catalog", nil) == nil {
		return NewCatalog(), nil
	}

	var cfg catalogConfig
	err := a.DecodeConfig("catalog", &cfg)
	if err != nil {
		return nil, err
	}

	return NewCatalog(cfg.Items...), nil
}

func (c *Catalog) List() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}

func (c *Catalog) Get(id string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	return item, ok
}

// Add stores the item and returns false, if the ID is already taken.
func (c *Catalog) Add(item Item) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[item.ID]; ok {
		return false
	}
	c.items[item.ID] = item
	return true
}

func (c *Catalog) list(ctx context.Context, input any) (*adr.Payload, error) {
	return adr.NewPayload(adr.StatusOK, c.List()), nil
}

func (c *Catalog) show(ctx context.Context, input any) (*adr.Payload, error) {
	fields, _ := input.(map[string]any)
	id := fmt.Sprint(fields["id"])

	item, ok := c.Get(id)
	if !ok {
		return &adr.Payload{
			Status:   adr.StatusNotFound,
			Messages: []string{fmt.Sprintf("item %q does not exist", id)},
		}, nil
	}

	return adr.NewPayload(adr.StatusOK, item), nil
}

func (c *Catalog) create(ctx context.Context, input any) (*adr.Payload, error) {
	var item Item
	err := mapstructure.WeakDecode(input, &item)
	if err != nil {
		return nil, errors.Wrap(err, "decode item")
	}

	if item.ID == "" || item.Name == "" {
		return &adr.Payload{
			Status:   adr.StatusInvalid,
			Messages: []string{"id and name are required"},
		}, nil
	}

	if !c.Add(item) {
		return &adr.Payload{
			Status:   adr.StatusConflict,
			Messages: []string{fmt.Sprintf("item %q already exists", item.ID)},
		}, nil
	}

	return adr.NewPayload(adr.StatusCreated, item), nil
}

// registerItems provides the catalog and registers the item actions as
// strategies, so routes can refer to them by key.
func registerItems(r *digutil.Resolver, c *Catalog) error {
	err := digutil.ProvideValue(r, c)
	if err != nil {
		return err
	}

	triad := func(domain func(*Catalog) adr.DomainFunc) func(*Catalog, negotiate.Negotiator) adr.Action {
		return func(c *Catalog, n negotiate.Negotiator) adr.Action {
			return adr.Triad{
				Domain:    domain(c),
				Responder: adr.NewFormattedResponder(n),
			}
		}
	}

	domains := map[digutil.Key]func(*Catalog) adr.DomainFunc{
		keyListItems:  func(c *Catalog) adr.DomainFunc { return c.list },
		keyShowItem:   func(c *Catalog) adr.DomainFunc { return c.show },
		keyCreateItem: func(c *Catalog) adr.DomainFunc { return c.create },
	}

	for key, domain := range domains {
		err := r.Register(key, triad(domain))
		if err != nil {
			return errors.Wrapf(err, "register %s", key)
		}
	}

	return nil
}

func itemRoutes(r *router.Router) {
	r.Get("/items", keyListItems)
	r.Post("/items", keyCreateItem)
	r.Group("/items", func(r *router.Router) {
		r.Get("/{id}", keyShowItem)
	})
}
