package journal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slayermass/stateform/internal/testutil"
	"github.com/slayermass/stateform/internal/value"
)

func openTest(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:", WithIDGenerator(testutil.NewSequenceGenerator("run")))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpen_FileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "iteration %d", i)

		version, err := j.schemaVersion()
		require.NoError(t, err)
		assert.Equal(t, currentSchemaVersion, version)
		require.NoError(t, j.Close())
	}
}

func TestOpen_DefaultRunIDsAreUUIDs(t *testing.T) {
	j, err := Open(":memory:")
	require.NoError(t, err)
	defer j.Close()

	id, err := j.StartRun(context.Background(), "s")
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestRun_Lifecycle(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)

	id, err := j.StartRun(ctx, "signup")
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	r, err := j.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Run{ID: "run-1", Scenario: "signup"}, r)

	require.NoError(t, j.Append(ctx, id,
		Event{Seq: 1, Kind: "step", Path: "name", Payload: []byte(`{"op":"change"}`)},
		Event{Seq: 2, Kind: "change", Path: "name", Payload: []byte(`"ab"`)},
	))
	require.NoError(t, j.FinishRun(ctx, id, false, []string{"value mismatch"}))

	r, err = j.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Run{
		ID:       "run-1",
		Scenario: "signup",
		Finished: true,
		Errors:   []string{"value mismatch"},
		Events:   2,
	}, r)
}

func TestRun_NotFound(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)

	_, err := j.Run(ctx, "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = j.Latest(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, j.FinishRun(ctx, "nope", true, nil), ErrRunNotFound)
}

func TestRuns_OrderAndFilter(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)

	for _, name := range []string{"a", "b", "a"} {
		_, err := j.StartRun(ctx, name)
		require.NoError(t, err)
	}

	all, err := j.Runs(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-1", all[0].ID)
	assert.Equal(t, "run-3", all[2].ID)

	onlyA, err := j.Runs(ctx, "a")
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "run-3", onlyA[1].ID)

	latest, err := j.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-3", latest.ID)
}

func TestEvents_OrderedBySeqAndFiltered(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)
	id, err := j.StartRun(ctx, "s")
	require.NoError(t, err)

	require.NoError(t, j.Append(ctx, id,
		Event{Seq: 3, Kind: "error", Path: "name", Payload: []byte(`[]`)},
		Event{Seq: 1, Kind: "step", Path: "name"},
		Event{Seq: 2, Kind: "change", Path: "name", Payload: []byte(`"ab"`)},
	))

	events, err := j.Events(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{events[0].Seq, events[1].Seq, events[2].Seq})
	assert.Equal(t, "null", string(events[0].Payload))

	changes, err := j.Events(ctx, id, "change")
	require.NoError(t, err)
	require.Len(t, changes, 1)

	v, err := changes[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, value.String("ab"), v)
}

func TestAppend_DuplicateSeqRollsBack(t *testing.T) {
	ctx := context.Background()
	j := openTest(t)
	id, err := j.StartRun(ctx, "s")
	require.NoError(t, err)

	err = j.Append(ctx, id,
		Event{Seq: 1, Kind: "step", Path: "a"},
		Event{Seq: 1, Kind: "step", Path: "b"},
	)
	require.Error(t, err)

	events, err := j.Events(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAppend_UnknownRunViolatesForeignKey(t *testing.T) {
	j := openTest(t)

	err := j.Append(context.Background(), "missing", Event{Seq: 1, Kind: "step"})
	assert.Error(t, err)
}

func TestEvent_DecodeKeepsLargeIntegers(t *testing.T) {
	ev := Event{Seq: 1, Payload: []byte(`{"ledger":9007199254740993}`)}

	v, err := ev.Decode()
	require.NoError(t, err)

	obj, ok := v.(value.Object)
	require.True(t, ok)
	assert.Equal(t, value.KindBigInt, value.KindOf(obj["ledger"]))
}
