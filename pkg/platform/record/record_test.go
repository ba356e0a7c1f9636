package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

type course struct {
	ID          string `event:"id,pk"`
	DisplayName string
}

type enrollment struct {
	ID       int64
	UserID   int64
	Course   *course
	Mode     string `json:"enrollment_mode"`
	Secret   string `event:"-"`
	Created  time.Time
	Attempts []attempt
	internal string
}

type attempt struct {
	ID     int
	Status string
}

func TestMap(t *testing.T) {
	m := FromMap(map[string]any{
		"id":      7,
		"user":    map[string]any{"id": 42, "username": "ada"},
		"answers": []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
		"tags":    []any{"a", "b"},
	})

	t.Run("reads scalars and reports missing attributes", func(t *testing.T) {
		v, ok := m.Attr("id")
		require.True(t, ok)
		assert.Equal(t, 7, v)

		_, ok = m.Attr("missing")
		assert.False(t, ok)
	})

	t.Run("nested maps are related records", func(t *testing.T) {
		v, ok := m.Attr("user")
		require.True(t, ok)
		rel, ok := As(v)
		require.True(t, ok)
		assert.Equal(t, 42, rel.PrimaryKey())
	})

	t.Run("slices of maps are collections, scalar slices are values", func(t *testing.T) {
		answers, _ := m.Attr("answers")
		assert.True(t, IsCollection(answers))
		assert.Equal(t, 2, answers.(Collection).Len())

		tags, _ := m.Attr("tags")
		assert.False(t, IsCollection(tags))
		assert.Equal(t, []any{"a", "b"}, tags)
	})

	t.Run("custom primary key", func(t *testing.T) {
		r := Map{Values: map[string]any{"uuid": "abc"}, Key: "uuid"}
		assert.Equal(t, "abc", r.PrimaryKey())
	})

	t.Run("attrs are sorted", func(t *testing.T) {
		assert.Equal(t, []string{"answers", "id", "tags", "user"}, m.Attrs())
	})
}

func TestStruct(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := &enrollment{
		ID:       7,
		UserID:   42,
		Course:   &course{ID: "course-v1:X+Y", DisplayName: "Intro"},
		Mode:     "audit",
		Secret:   "hidden",
		Created:  created,
		Attempts: []attempt{{ID: 1, Status: "done"}},
		internal: "not exported",
	}
	r := FromStruct(e)

	t.Run("names follow event tag, json tag, then snake case", func(t *testing.T) {
		assert.Equal(t, []string{"id", "user_id", "course", "enrollment_mode", "created", "attempts"}, r.Attrs())
	})

	t.Run("primary key from ID field or pk tag", func(t *testing.T) {
		assert.Equal(t, int64(7), r.PrimaryKey())
		c, _ := r.Attr("course")
		rel, ok := As(c)
		require.True(t, ok)
		assert.Equal(t, "course-v1:X+Y", rel.PrimaryKey())
	})

	t.Run("time values stay scalars", func(t *testing.T) {
		v, ok := r.Attr("created")
		require.True(t, ok)
		assert.Equal(t, created, v)
	})

	t.Run("slices of relation structs are collections", func(t *testing.T) {
		v, _ := r.Attr("attempts")
		assert.True(t, IsCollection(v))
	})

	t.Run("skipped and unexported fields are absent", func(t *testing.T) {
		_, ok := r.Attr("secret")
		assert.False(t, ok)
		_, ok = r.Attr("internal")
		assert.False(t, ok)
	})

	t.Run("nil relation pointer resolves to nil", func(t *testing.T) {
		v, ok := FromStruct(&enrollment{}).Attr("course")
		require.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("nil struct pointer has no attributes", func(t *testing.T) {
		var missing *enrollment
		_, ok := FromStruct(missing).Attr("id")
		assert.False(t, ok)
	})
}

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"ID":          "id",
		"CourseID":    "course_id",
		"DisplayName": "display_name",
		"HTTPServer":  "http_server",
		"Year2Birth":  "year2_birth",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeCase(in), in)
	}
}

func TestJSON(t *testing.T) {
	var p fastjson.Parser
	v, err := p.Parse(`{"id": 7, "score": 0.5, "big": 3.0, "submission": {"id": "s1", "student_id": "abc"}, "items": [{"id": 1}], "tags": ["x"], "none": null}`)
	require.NoError(t, err)
	r := FromJSON(v)

	t.Run("numbers keep integer form when integral", func(t *testing.T) {
		id, _ := r.Attr("id")
		assert.Equal(t, int64(7), id)
		score, _ := r.Attr("score")
		assert.Equal(t, 0.5, score)
		big, _ := r.Attr("big")
		assert.Equal(t, int64(3), big)
	})

	t.Run("objects are related records", func(t *testing.T) {
		sub, _ := r.Attr("submission")
		rel, ok := As(sub)
		require.True(t, ok)
		assert.Equal(t, "s1", rel.PrimaryKey())
		sid, _ := rel.Attr("student_id")
		assert.Equal(t, "abc", sid)
	})

	t.Run("arrays of objects are collections", func(t *testing.T) {
		items, _ := r.Attr("items")
		assert.True(t, IsCollection(items))
		tags, _ := r.Attr("tags")
		assert.Equal(t, []any{"x"}, tags)
	})

	t.Run("null is present but nil", func(t *testing.T) {
		none, ok := r.Attr("none")
		assert.True(t, ok)
		assert.Nil(t, none)
	})

	t.Run("attrs keep document order", func(t *testing.T) {
		assert.Equal(t, []string{"id", "score", "big", "submission", "items", "tags", "none"}, r.Attrs())
	})

	t.Run("non-object values have no attributes", func(t *testing.T) {
		_, ok := FromJSON(fastjson.MustParse(`[1]`)).Attr("id")
		assert.False(t, ok)
	})
}

func TestPlainValue(t *testing.T) {
	t.Run("map without id is embedded", func(t *testing.T) {
		m := FromMap(map[string]any{"extra": map[string]any{"color": "red"}, "user": map[string]any{"id": 42}})

		extra, _ := m.Attr("extra")
		rel, ok := As(extra)
		require.True(t, ok, "embedded objects stay traversable")
		plain, ok := PlainValue(rel)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"color": "red"}, plain)

		user, _ := m.Attr("user")
		rel, _ = As(user)
		_, ok = PlainValue(rel)
		assert.False(t, ok)
	})

	t.Run("json without id is embedded", func(t *testing.T) {
		r := FromJSON(fastjson.MustParse(`{"extra":{"color":"red","n":2},"list":[{"x":1}]}`))

		extra, _ := r.Attr("extra")
		rel, ok := As(extra)
		require.True(t, ok)
		plain, ok := PlainValue(rel)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"color": "red", "n": int64(2)}, plain)

		list, _ := r.Attr("list")
		assert.False(t, IsCollection(list))
		assert.Equal(t, []any{map[string]any{"x": int64(1)}}, list)
	})

	t.Run("struct records are never embedded", func(t *testing.T) {
		_, ok := PlainValue(FromStruct(&course{ID: "c1"}))
		assert.False(t, ok)
	})
}

func TestIsNil(t *testing.T) {
	var typed *ptrRecord
	assert.True(t, IsNil(nil))
	assert.False(t, IsNil(FromMap(nil)))
	assert.True(t, IsNil(typed))

	_, ok := As(typed)
	assert.False(t, ok)
}

type ptrRecord struct{}

func (*ptrRecord) Attr(string) (any, bool) { return nil, false }
func (*ptrRecord) PrimaryKey() any         { return nil }
