// Package catalog stores the course structure, learner progress and student
// id mappings the event handlers look up.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/sentinel"
)

type progressKey struct {
	user     string
	usageKey string
}

// InMemoryCatalog is a map-backed catalog for tests and local development.
type InMemoryCatalog struct {
	mu       sync.RWMutex
	parents  map[string]string
	types    map[string]string
	progress map[progressKey]models.SubsectionStatus
	students map[string]any
}

// NewInMemoryCatalog returns an empty catalog.
func NewInMemoryCatalog() *InMemoryCatalog {
	return &InMemoryCatalog{
		parents:  make(map[string]string),
		types:    make(map[string]string),
		progress: make(map[progressKey]models.SubsectionStatus),
		students: make(map[string]any),
	}
}

// SaveBlock records block under parent. An empty parent marks a root.
func (c *InMemoryCatalog) SaveBlock(_ context.Context, block models.Block, parent string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[block.UsageKey] = block.Type
	if parent != "" {
		c.parents[block.UsageKey] = parent
	}
	return nil
}

// Parent implements service.CourseStructure.
func (c *InMemoryCatalog) Parent(_ context.Context, usageKey string) (models.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	parent, ok := c.parents[usageKey]
	if !ok {
		return models.Block{}, fmt.Errorf("parent of %s: %w", usageKey, sentinel.ErrNotFound)
	}
	return models.Block{UsageKey: parent, Type: c.types[parent]}, nil
}

// SaveSubsection records a learner's progress through a subsection.
func (c *InMemoryCatalog) SaveSubsection(_ context.Context, userID any, usageKey string, status models.SubsectionStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress[progressKey{user: fmt.Sprint(userID), usageKey: usageKey}] = status
	return nil
}

// Subsection implements service.SubsectionProgress.
func (c *InMemoryCatalog) Subsection(_ context.Context, userID any, usageKey string) (models.SubsectionStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status, ok := c.progress[progressKey{user: fmt.Sprint(userID), usageKey: usageKey}]
	if !ok {
		return models.SubsectionStatus{}, fmt.Errorf("progress of %v in %s: %w", userID, usageKey, sentinel.ErrNotFound)
	}
	return status, nil
}

// SaveStudent maps an anonymous student id to a user id.
func (c *InMemoryCatalog) SaveStudent(_ context.Context, anonymousID string, userID any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.students[anonymousID] = userID
	return nil
}

// UserID implements service.StudentResolver.
func (c *InMemoryCatalog) UserID(_ context.Context, anonymousID string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.students[anonymousID]
	if !ok {
		return nil, fmt.Errorf("student %s: %w", anonymousID, sentinel.ErrNotFound)
	}
	return id, nil
}
