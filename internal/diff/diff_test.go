package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/slayermass/stateform/internal/value"
)

func TestDiffNestedLeafReportsAncestorsOnly(t *testing.T) {
	before := value.MustFromAny(map[string]any{
		"a":       map[string]any{"b": map[string]any{"c": 1, "d": 2}, "e": 3},
		"sibling": "x",
	})
	after := value.Clone(before)
	after.(value.Object)["a"].(value.Object)["b"].(value.Object)["c"] = value.Number(9)

	got := Diff(before, after)
	want := []string{"a", "a.b", "a.b.c"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", d)
	}
}

func TestDiffEqualTreesIsEmpty(t *testing.T) {
	tree := value.MustFromAny(map[string]any{"a": []any{1, map[string]any{"b": true}}})
	assert.Empty(t, Diff(tree, value.Clone(tree)))
}

func TestDiffArrayElementEmitsBothNotations(t *testing.T) {
	before := value.MustFromAny(map[string]any{"nested": []any{map[string]any{"label": "x"}}})
	after := value.MustFromAny(map[string]any{"nested": []any{map[string]any{"label": "y"}}})

	got := Diff(before, after)
	want := []string{"nested", "nested.0", "nested[0]", "nested.0.label", "nested[0].label"}
	assert.ElementsMatch(t, want, got)
}

func TestDiffAppendReportsNewElementSubtree(t *testing.T) {
	before := value.MustFromAny(map[string]any{"nested": []any{}})
	after := value.MustFromAny(map[string]any{"nested": []any{map[string]any{"id": 1, "label": "x"}}})

	got := Diff(before, after)
	assert.ElementsMatch(t, []string{
		"nested",
		"nested.0", "nested[0]",
		"nested.0.id", "nested[0].id",
		"nested.0.label", "nested[0].label",
	}, got)
}

func TestDiffRemovalReportsShiftedAndVanishedPaths(t *testing.T) {
	before := value.MustFromAny(map[string]any{"list": []any{"a", "b"}})
	after := value.MustFromAny(map[string]any{"list": []any{"b"}})

	got := Changes(before, after)
	var dots []string
	for _, p := range got {
		dots = append(dots, p.String())
	}
	assert.Equal(t, []string{"list", "list.0", "list.1"}, dots)
}

func TestDiffShapeChangeReportsDescendantsOfBothSides(t *testing.T) {
	before := value.MustFromAny(map[string]any{"a": map[string]any{"x": 1}})
	after := value.MustFromAny(map[string]any{"a": "flat"})

	assert.Equal(t, []string{"a", "a.x"}, Diff(before, after))
}

func TestDiffKeyOrderIrrelevant(t *testing.T) {
	before := value.Obj(value.O("a", value.Number(1)), value.O("b", value.Number(2)))
	after := value.Obj(value.O("b", value.Number(2)), value.O("a", value.Number(1)))
	assert.Empty(t, Diff(before, after))
}

func TestDiffAddedAndRemovedKeys(t *testing.T) {
	before := value.MustFromAny(map[string]any{"keep": 1, "gone": 2})
	after := value.MustFromAny(map[string]any{"keep": 1, "new": 3})

	assert.Equal(t, []string{"gone", "new"}, Diff(before, after))
}
