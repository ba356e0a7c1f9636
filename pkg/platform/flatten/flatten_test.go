package flatten

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	"opevent/pkg/platform/record"
)

// countingRecord records how often each attribute is resolved.
type countingRecord struct {
	record.Map
	calls map[string]int
}

func newCounting(values map[string]any) *countingRecord {
	return &countingRecord{Map: record.FromMap(values), calls: make(map[string]int)}
}

func (c *countingRecord) Attr(name string) (any, bool) {
	c.calls[name]++
	return c.Map.Attr(name)
}

type opaque struct {
	Ch chan int
}

func (opaque) String() string { return "opaque-value" }

func TestFlatten_EnrollmentScenario(t *testing.T) {
	r := record.FromMap(map[string]any{
		"id":        7,
		"user_id":   42,
		"course_id": "course-v1:X+Y",
		"is_active": true,
		"mode":      "audit",
	})

	out := Flatten(r, []string{"id", "user_id", "course_id", "is_active"})

	assert.Equal(t, map[string]any{
		"id":        7,
		"user_id":   42,
		"course_id": "course-v1:X+Y",
		"is_active": true,
	}, out.ToMap())
	assert.Equal(t, []string{"id", "user_id", "course_id", "is_active"}, out.Keys())

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"id":7,"user_id":42,"course_id":"course-v1:X+Y","is_active":true}`, string(encoded))
}

func TestFlatten_PureFieldsAreIdempotent(t *testing.T) {
	values := map[string]any{"id": 1, "name": "ada", "tags": []any{"x"}}
	r := record.FromMap(values)
	paths := []string{"id", "name", "tags"}

	first := Flatten(r, paths)
	second := Flatten(r, paths)

	assert.Equal(t, first.ToMap(), second.ToMap())
	assert.Equal(t, map[string]any{"id": 1, "name": "ada", "tags": []any{"x"}}, values)
}

func TestFlatten_RelationCollapse(t *testing.T) {
	r := record.FromMap(map[string]any{
		"id":   3,
		"user": map[string]any{"id": 42, "username": "ada"},
	})

	out := Flatten(r, []string{"id", "user"})

	assert.Equal(t, map[string]any{"id": 3, "user_id": 42}, out.ToMap())
	_, hasNested := out.Get("user")
	assert.False(t, hasNested)
}

func TestFlatten_DottedPathsGroupAndResolveOnce(t *testing.T) {
	r := newCounting(map[string]any{
		"a": map[string]any{"id": 1, "x": "ex", "y": "why"},
	})

	out := Flatten(r, []string{"a__x", "a__y"})

	assert.Equal(t, map[string]any{"a": map[string]any{"x": "ex", "y": "why"}}, out.ToMap())
	assert.Equal(t, 1, r.calls["a"])
}

func TestFlatten_SubmissionRelationScenario(t *testing.T) {
	r := record.FromMap(map[string]any{
		"submission": map[string]any{"student_id": "abc"},
	})

	out := Flatten(r, []string{"submission__student_id"})

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"submission": {"student_id": "abc"}}`, string(encoded))
}

func TestFlatten_MissingValues(t *testing.T) {
	t.Run("missing attribute resolves to nil and is cached", func(t *testing.T) {
		r := newCounting(map[string]any{"id": 1})
		cache := NewCache()

		out := FlattenWith(r, []string{"nope", "nope"}, cache)

		v, ok := out.Get("nope")
		assert.True(t, ok)
		assert.Nil(t, v)
		assert.Equal(t, 1, r.calls["nope"])
	})

	t.Run("falsy values are cached too", func(t *testing.T) {
		r := newCounting(map[string]any{"active": false})

		Flatten(r, []string{"active", "active"})

		assert.Equal(t, 1, r.calls["active"])
	})

	t.Run("dotted path through a nil relation", func(t *testing.T) {
		r := record.FromMap(map[string]any{"exam": nil})

		out := Flatten(r, []string{"exam__course_id", "exam__is_active"})

		assert.Equal(t, map[string]any{"exam": map[string]any{"course_id": nil, "is_active": nil}}, out.ToMap())
	})

	t.Run("dotted path through a scalar", func(t *testing.T) {
		r := record.FromMap(map[string]any{"exam": 5})

		out := Flatten(r, []string{"exam__course_id"})

		assert.Equal(t, map[string]any{"exam": map[string]any{"course_id": nil}}, out.ToMap())
	})

	t.Run("nil record", func(t *testing.T) {
		out := Flatten(nil, []string{"id"})
		assert.Equal(t, map[string]any{"id": nil}, out.ToMap())
	})
}

func TestFlatten_CollectionsAreSkipped(t *testing.T) {
	r := record.FromMap(map[string]any{
		"id":       1,
		"comments": []any{map[string]any{"id": 10}},
	})

	out := Flatten(r, []string{"id", "comments"})

	assert.Equal(t, []string{"id"}, out.Keys())
}

func TestFlatten_NonEncodableValuesBecomeStrings(t *testing.T) {
	r := record.FromMap(map[string]any{
		"ch":      make(chan int),
		"complex": complex(1, 2),
		"nan":     math.NaN(),
		"inf":     math.Inf(1),
		"obj":     opaque{Ch: make(chan int)},
		"fn":      func() {},
	})

	var out *Map
	require.NotPanics(t, func() {
		out = Flatten(r, []string{"complex", "nan", "inf", "obj"})
	})

	assert.Equal(t, "(1+2i)", mustGet(t, out, "complex"))
	assert.Equal(t, "NaN", mustGet(t, out, "nan"))
	assert.Equal(t, "+Inf", mustGet(t, out, "inf"))
	assert.Equal(t, "opaque-value", mustGet(t, out, "obj"))

	_, err := json.Marshal(out)
	require.NoError(t, err)

	fn := Flatten(r, []string{"fn", "ch"})
	assert.IsType(t, "", mustGet(t, fn, "fn"))
	assert.IsType(t, "", mustGet(t, fn, "ch"))
}

func TestFlatten_BinaryValuesEncodeAsBase64(t *testing.T) {
	r := record.FromMap(map[string]any{"blob": []byte("hi"), "digest": []byte{0xff, 0x00}})

	encoded, err := json.Marshal(Flatten(r, []string{"blob", "digest"}))
	require.NoError(t, err)
	assert.Equal(t, `{"blob":"aGk=","digest":"/wA="}`, string(encoded))
}

func TestFlatten_EmbeddedObjectKeepsItsValue(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		r := record.FromMap(map[string]any{
			"id":    1,
			"extra": map[string]any{"color": "red"},
			"owner": map[string]any{"id": 5},
			"notes": []any{map[string]any{"text": "a"}},
		})

		out := Flatten(r, []string{"id", "extra", "owner", "notes", "extra__color"})

		assert.Equal(t, []string{"id", "extra", "owner_id", "notes"}, out.Keys())
		assert.Equal(t, map[string]any{"color": "red"}, mustGet(t, out, "extra"))
		assert.Equal(t, []any{map[string]any{"text": "a"}}, mustGet(t, out, "notes"))
	})

	t.Run("json", func(t *testing.T) {
		var p fastjson.Parser
		v, err := p.Parse(`{"id":1,"extra":{"color":"red"},"owner":{"id":5}}`)
		require.NoError(t, err)

		encoded, err := json.Marshal(Flatten(record.FromJSON(v), []string{"id", "extra", "owner"}))
		require.NoError(t, err)
		assert.Equal(t, `{"id":1,"extra":{"color":"red"},"owner_id":5}`, string(encoded))
	})
}

func TestFlatten_ScopedCacheDoesNotLeakBetweenLevels(t *testing.T) {
	r := record.FromMap(map[string]any{
		"id":         1,
		"submission": map[string]any{"id": 99, "uuid": "s-uuid"},
	})

	out := Flatten(r, []string{"id", "submission__id", "submission__uuid"})

	assert.Equal(t, map[string]any{
		"id":         1,
		"submission": map[string]any{"id": 99, "uuid": "s-uuid"},
	}, out.ToMap())
}

func TestFlatten_NestedRelationCollapsesInsideGroup(t *testing.T) {
	r := record.FromMap(map[string]any{
		"student_item": map[string]any{
			"id":     5,
			"course": map[string]any{"id": "c1"},
		},
	})

	out := Flatten(r, []string{"student_item__course", "student_item__course__id"})

	assert.Equal(t, map[string]any{
		"student_item": map[string]any{
			"course_id": "c1",
			"course":    map[string]any{"id": "c1"},
		},
	}, out.ToMap())
}

func TestFlatten_BareAndDottedSameKey(t *testing.T) {
	r := record.FromMap(map[string]any{
		"exam": map[string]any{"id": 3, "course_id": "c1"},
	})

	out := Flatten(r, []string{"exam", "exam__course_id"})

	assert.Equal(t, map[string]any{
		"exam_id": 3,
		"exam":    map[string]any{"course_id": "c1"},
	}, out.ToMap())
}

func TestFlatten_NilPathsSelectAllAttributes(t *testing.T) {
	r := record.FromMap(map[string]any{"b": 2, "a": 1, "rel": map[string]any{"id": 9}})

	out := Flatten(r, nil)

	assert.Equal(t, []string{"a", "b", "rel_id"}, out.Keys())
}

func TestFlatten_GroupOrderFollowsFirstAppearance(t *testing.T) {
	r := record.FromMap(map[string]any{
		"id": 1,
		"a":  map[string]any{"x": 1, "y": 2},
		"b":  map[string]any{"z": 3},
	})

	out := Flatten(r, []string{"a__y", "id", "b__z", "a__x"})

	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"y":2,"x":1},"id":1,"b":{"z":3}}`, string(encoded))
}

func TestMap_SetKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, m.Len())

	var nilMap *Map
	encoded, err := json.Marshal(nilMap)
	require.NoError(t, err)
	assert.Equal(t, "null", string(encoded))
}

func mustGet(t *testing.T, m *Map, key string) any {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}
