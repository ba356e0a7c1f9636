package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"opevent/internal/operationevent/models"
	"opevent/pkg/platform/sentinel"
)

const (
	defaultPrefix = "catalog"

	fieldParent   = "parent"
	fieldType     = "type"
	fieldComplete = "complete"
	fieldDue      = "due"
)

// RedisCatalog keeps the catalog in Redis hashes:
//
//	<prefix>:block:<usage key>              parent, type
//	<prefix>:progress:<user id>:<usage key> complete, due
//	<prefix>:student:<anonymous id>         string user id
type RedisCatalog struct {
	client redis.Cmdable
	prefix string
}

// RedisOption configures the RedisCatalog.
type RedisOption func(*RedisCatalog)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisCatalog) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// NewRedisCatalog returns a catalog over client.
func NewRedisCatalog(client redis.Cmdable, opts ...RedisOption) *RedisCatalog {
	c := &RedisCatalog{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCatalog) blockKey(usageKey string) string {
	return c.prefix + ":block:" + usageKey
}

func (c *RedisCatalog) progressKey(userID any, usageKey string) string {
	return fmt.Sprintf("%s:progress:%v:%s", c.prefix, userID, usageKey)
}

func (c *RedisCatalog) studentKey(anonymousID string) string {
	return c.prefix + ":student:" + anonymousID
}

// SaveBlock records block under parent. An empty parent marks a root.
func (c *RedisCatalog) SaveBlock(ctx context.Context, block models.Block, parent string) error {
	values := map[string]any{fieldType: block.Type}
	if parent != "" {
		values[fieldParent] = parent
	}
	if err := c.client.HSet(ctx, c.blockKey(block.UsageKey), values).Err(); err != nil {
		return fmt.Errorf("save block %s: %w", block.UsageKey, err)
	}
	return nil
}

// Parent implements service.CourseStructure.
func (c *RedisCatalog) Parent(ctx context.Context, usageKey string) (models.Block, error) {
	parent, err := c.client.HGet(ctx, c.blockKey(usageKey), fieldParent).Result()
	if errors.Is(err, redis.Nil) {
		return models.Block{}, fmt.Errorf("parent of %s: %w", usageKey, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Block{}, fmt.Errorf("read parent of %s: %w", usageKey, err)
	}

	blockType, err := c.client.HGet(ctx, c.blockKey(parent), fieldType).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.Block{}, fmt.Errorf("read type of %s: %w", parent, err)
	}
	return models.Block{UsageKey: parent, Type: blockType}, nil
}

// SaveSubsection records a learner's progress through a subsection.
func (c *RedisCatalog) SaveSubsection(ctx context.Context, userID any, usageKey string, status models.SubsectionStatus) error {
	err := c.client.HSet(ctx, c.progressKey(userID, usageKey),
		fieldComplete, strconv.FormatBool(status.Complete),
		fieldDue, status.Due,
	).Err()
	if err != nil {
		return fmt.Errorf("save progress of %v in %s: %w", userID, usageKey, err)
	}
	return nil
}

// Subsection implements service.SubsectionProgress.
func (c *RedisCatalog) Subsection(ctx context.Context, userID any, usageKey string) (models.SubsectionStatus, error) {
	values, err := c.client.HGetAll(ctx, c.progressKey(userID, usageKey)).Result()
	if err != nil {
		return models.SubsectionStatus{}, fmt.Errorf("read progress of %v in %s: %w", userID, usageKey, err)
	}
	if len(values) == 0 {
		return models.SubsectionStatus{}, fmt.Errorf("progress of %v in %s: %w", userID, usageKey, sentinel.ErrNotFound)
	}
	complete, _ := strconv.ParseBool(values[fieldComplete])
	return models.SubsectionStatus{Complete: complete, Due: values[fieldDue]}, nil
}

// SaveStudent maps an anonymous student id to a user id.
func (c *RedisCatalog) SaveStudent(ctx context.Context, anonymousID string, userID any) error {
	if err := c.client.Set(ctx, c.studentKey(anonymousID), fmt.Sprint(userID), 0).Err(); err != nil {
		return fmt.Errorf("save student %s: %w", anonymousID, err)
	}
	return nil
}

// UserID implements service.StudentResolver. Numeric ids come back as int64.
func (c *RedisCatalog) UserID(ctx context.Context, anonymousID string) (any, error) {
	raw, err := c.client.Get(ctx, c.studentKey(anonymousID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("student %s: %w", anonymousID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read student %s: %w", anonymousID, err)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	return raw, nil
}
