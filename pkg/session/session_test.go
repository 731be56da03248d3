package session

import (
	"testing"

	"modelhub/pkg/catalog"
	"modelhub/pkg/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDescriptor = &catalog.Descriptor{ID: "chatgpt", Name: "ChatGPT", Category: catalog.CategoryText}
var otherDescriptor = &catalog.Descriptor{ID: "dalle", Name: "DALL·E 3", Category: catalog.CategoryImage}

func TestNewState_Defaults(t *testing.T) {
	st := NewState()
	snap := st.Snapshot()

	assert.Equal(t, catalog.CategoryFilterAll, snap.CategoryFilter)
	assert.Nil(t, snap.Selected)
	assert.False(t, snap.Loading)
}

func TestBeginSubmit_NoCapability(t *testing.T) {
	st := NewState()
	st.SetInput("hello")

	_, _, _, err := st.BeginSubmit()
	assert.ErrorIs(t, err, dispatch.ErrNoCapability)
}

func TestBeginSubmit_EmptyInput(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)

	for _, input := range []string{"", "   ", "\n\t "} {
		st.SetInput(input)
		_, _, _, err := st.BeginSubmit()
		assert.ErrorIs(t, err, dispatch.ErrEmptyInput)
	}
}

func TestBeginSubmit_Success(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)
	st.SetInput("hello")

	token, d, input, err := st.BeginSubmit()
	require.NoError(t, err)

	assert.Equal(t, testDescriptor, d)
	assert.Equal(t, "hello", input)
	assert.True(t, st.Snapshot().Loading)

	// The token matches the current selection.
	assert.True(t, st.Finish(token, dispatch.NewTextResult("ok"), ""))
}

func TestBeginSubmit_BusyIsRejected(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)
	st.SetInput("hello")

	_, _, _, err := st.BeginSubmit()
	require.NoError(t, err)

	// Second submission while the first is outstanding.
	_, _, _, err = st.BeginSubmit()
	assert.ErrorIs(t, err, dispatch.ErrBusy)
}

func TestSelect_ResetsState(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)
	st.SetInput("hello")

	token, _, _, err := st.BeginSubmit()
	require.NoError(t, err)
	require.True(t, st.Finish(token, dispatch.NewTextResult("answer"), ""))

	st.Select(otherDescriptor)
	snap := st.Snapshot()

	assert.Equal(t, otherDescriptor, snap.Selected)
	assert.Empty(t, snap.Input)
	assert.Nil(t, snap.LastResult)
	assert.Empty(t, snap.LastError)
}

func TestFinish_StaleTokenIsDiscarded(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)
	st.SetInput("hello")

	token, _, _, err := st.BeginSubmit()
	require.NoError(t, err)

	// Switching capability mid-flight invalidates the token.
	st.Select(otherDescriptor)

	applied := st.Finish(token, dispatch.NewTextResult("late answer"), "")
	assert.False(t, applied)

	snap := st.Snapshot()
	assert.Nil(t, snap.LastResult, "stale outcome must not leak into the new selection")
	assert.Empty(t, snap.LastError)

	// The loading flag is released regardless: the stale submission was
	// the only outstanding one.
	assert.False(t, snap.Loading)

	// A new submission is accepted immediately.
	st.SetInput("next")
	_, _, _, err = st.BeginSubmit()
	assert.NoError(t, err)
}

func TestFinish_AppliesErrorOutcome(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)
	st.SetInput("hello")

	token, _, _, err := st.BeginSubmit()
	require.NoError(t, err)

	applied := st.Finish(token, nil, "Failed to process request. Please try again.")
	assert.True(t, applied)

	snap := st.Snapshot()
	assert.Nil(t, snap.LastResult)
	assert.Equal(t, "Failed to process request. Please try again.", snap.LastError)
	assert.False(t, snap.Loading)
}

func TestBeginSubmit_ClearsPreviousError(t *testing.T) {
	st := NewState()
	st.Select(testDescriptor)
	st.SetInput("hello")

	token, _, _, err := st.BeginSubmit()
	require.NoError(t, err)
	st.Finish(token, nil, "some failure")

	_, _, _, err = st.BeginSubmit()
	require.NoError(t, err)
	assert.Empty(t, st.Snapshot().LastError)
}

func TestSetFilter(t *testing.T) {
	st := NewState()

	st.SetFilter("fox", string(catalog.CategoryImage))
	snap := st.Snapshot()
	assert.Equal(t, "fox", snap.SearchTerm)
	assert.Equal(t, string(catalog.CategoryImage), snap.CategoryFilter)

	// Empty category normalizes to the wildcard.
	st.SetFilter("", "")
	assert.Equal(t, catalog.CategoryFilterAll, st.Snapshot().CategoryFilter)
}

func TestManager_GetCreatesPerKey(t *testing.T) {
	m := NewManager()

	a := m.Get("telegram:1:1")
	b := m.Get("telegram:2:2")
	assert.NotSame(t, a, b)

	// Same key returns the same state.
	assert.Same(t, a, m.Get("telegram:1:1"))
}
