package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pennypal/internal/cache"
	"pennypal/internal/core"
	"pennypal/internal/storage"
)

const (
	categoryCacheSize = 1000
	categoryCacheTTL  = 10 * time.Minute
)

// CategoryService manages global and custom categories. Lists are cached
// per user and kind; every write drops that user's entries.
type CategoryService struct {
	store  storage.CategoryStore
	cache  *cache.LRUCache[[]core.Category]
	events EventPublisher
}

func NewCategoryService(store storage.CategoryStore, events EventPublisher) *CategoryService {
	return &CategoryService{
		store:  store,
		cache:  cache.NewLRUCache[[]core.Category](categoryCacheSize, categoryCacheTTL),
		events: events,
	}
}

// Cache exposes the list cache so it can be registered for cleanup.
func (s *CategoryService) Cache() *cache.LRUCache[[]core.Category] { return s.cache }

func cacheKey(userID string, kind core.CategoryKind) string {
	return userID + "|" + string(kind)
}

func (s *CategoryService) invalidate(userID string) {
	s.cache.Delete(cacheKey(userID, core.ExpenseCategory))
	s.cache.Delete(cacheKey(userID, core.IncomeCategory))
}

// List returns the categories of kind visible to userID, ordered by name.
func (s *CategoryService) List(ctx context.Context, userID string, kind core.CategoryKind) ([]core.Category, error) {
	key := cacheKey(userID, kind)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	list, err := s.store.ListCategories(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if list == nil {
		list = []core.Category{}
	}
	s.cache.Set(key, list)
	return list, nil
}

// Names maps category id to name for every category visible to userID.
func (s *CategoryService) Names(ctx context.Context, userID string, kind core.CategoryKind) (map[int64]string, error) {
	list, err := s.List(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(list))
	for _, c := range list {
		names[c.ID] = c.Name
	}
	return names, nil
}

// Get returns a category visible to userID.
func (s *CategoryService) Get(ctx context.Context, userID string, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if !c.VisibleTo(userID) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

// Resolve checks that id names a category of kind that userID may reference.
func (s *CategoryService) Resolve(ctx context.Context, userID string, id int64, kind core.CategoryKind) (core.Category, error) {
	c, err := s.Get(ctx, userID, id)
	if errors.Is(err, core.ErrNotFound) || (err == nil && c.Kind != kind) {
		return core.Category{}, fmt.Errorf("%w: category %d", core.ErrInvalidReference, id)
	}
	return c, err
}

// Create adds a custom category owned by userID.
func (s *CategoryService) Create(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	c.ID = 0
	c.UserID = &userID
	c.IsCustom = true
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(userID)
	publish(ctx, s.events, userID, core.ActionCreated, core.EntityCategory, created.ID, 0)
	return created, nil
}

// owned loads a category userID may modify. Global defaults are read-only.
func (s *CategoryService) owned(ctx context.Context, userID string, id int64) (core.Category, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	if !c.OwnedBy(userID) {
		return core.Category{}, fmt.Errorf("category %d is a default category: %w", id, core.ErrForbidden)
	}
	return c, nil
}

// Rename changes the name of a custom category.
func (s *CategoryService) Rename(ctx context.Context, userID string, id int64, name string) (core.Category, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	c.Name = name
	c.Normalize()
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(userID)
	publish(ctx, s.events, userID, core.ActionUpdated, core.EntityCategory, id, 0)
	return updated, nil
}

// Delete removes a custom category that nothing references.
func (s *CategoryService) Delete(ctx context.Context, userID string, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(userID)
	publish(ctx, s.events, userID, core.ActionDeleted, core.EntityCategory, id, 0)
	return nil
}
