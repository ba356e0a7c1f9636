package gormrecord

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opevent/pkg/platform/flatten"
	"opevent/pkg/platform/record"
)

type Course struct {
	ID          string `gorm:"primaryKey"`
	DisplayName string
}

type User struct {
	ID       uint
	Username string
}

type Attempt struct {
	ID           uint
	EnrollmentID uint
	Status       string
}

type Enrollment struct {
	ID       uint
	UserID   uint
	User     *User
	CourseID string
	Course   Course
	IsActive bool
	Attempts []Attempt
}

func preloaded() *Enrollment {
	return &Enrollment{
		ID:       7,
		UserID:   42,
		User:     &User{ID: 42, Username: "ada"},
		CourseID: "course-v1:X+Y",
		Course:   Course{ID: "course-v1:X+Y", DisplayName: "Intro"},
		IsActive: true,
		Attempts: []Attempt{{ID: 1, EnrollmentID: 7, Status: "done"}},
	}
}

func TestRecord_Columns(t *testing.T) {
	r, err := New(context.Background(), nil, preloaded())
	require.NoError(t, err)

	v, ok := r.Attr("user_id")
	require.True(t, ok)
	assert.Equal(t, uint(42), v)

	v, ok = r.Attr("UserID")
	require.True(t, ok, "go field names resolve too")
	assert.Equal(t, uint(42), v)

	_, ok = r.Attr("missing")
	assert.False(t, ok)

	assert.Equal(t, uint(7), r.PrimaryKey())
}

func TestRecord_Relations(t *testing.T) {
	r, err := New(context.Background(), nil, preloaded())
	require.NoError(t, err)

	t.Run("belongs-to pointer", func(t *testing.T) {
		v, ok := r.Attr("user")
		require.True(t, ok)
		rel, ok := record.As(v)
		require.True(t, ok)
		assert.Equal(t, uint(42), rel.PrimaryKey())
	})

	t.Run("belongs-to value", func(t *testing.T) {
		v, _ := r.Attr("course")
		rel, ok := record.As(v)
		require.True(t, ok)
		name, _ := rel.Attr("display_name")
		assert.Equal(t, "Intro", name)
	})

	t.Run("has-many is a collection", func(t *testing.T) {
		v, _ := r.Attr("attempts")
		require.True(t, record.IsCollection(v))
		assert.Equal(t, 1, v.(record.Collection).Len())
	})

	t.Run("unloaded relation without a db is nil", func(t *testing.T) {
		bare, err := New(context.Background(), nil, &Enrollment{ID: 1, UserID: 2})
		require.NoError(t, err)

		v, ok := bare.Attr("user")
		require.True(t, ok)
		_, isRecord := record.As(v)
		assert.False(t, isRecord)

		v, _ = bare.Attr("course")
		_, isRecord = record.As(v)
		assert.False(t, isRecord)
	})
}

func TestRecord_Attrs(t *testing.T) {
	r := MustNew(context.Background(), nil, preloaded())
	assert.Equal(t,
		[]string{"id", "user_id", "course_id", "is_active", "user", "course", "attempts"},
		r.Attrs())
}

func TestRecord_Flatten(t *testing.T) {
	r := MustNew(context.Background(), nil, preloaded())

	out := flatten.Flatten(r, []string{"id", "user", "course__display_name", "attempts", "is_active"})

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"user_id":42,"course":{"display_name":"Intro"},"is_active":true}`, string(encoded))
}

func TestNew_RejectsNonPointers(t *testing.T) {
	_, err := New(context.Background(), nil, Enrollment{})
	assert.Error(t, err)

	var missing *Enrollment
	_, err = New(context.Background(), nil, missing)
	assert.Error(t, err)
}
