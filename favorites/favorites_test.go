package favorites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load() (Set, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Set), args.Error(1)
}

func (m *MockStore) Save(set Set) error {
	args := m.Called(set)
	return args.Error(0)
}

func TestNewSet(t *testing.T) {
	s := NewSet("b", "a", "b", "", "c")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "c"}, s.Names())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has(""))
}

func TestSetToggled(t *testing.T) {
	original := NewSet("a", "b")

	added := original.Toggled("c")
	removed := original.Toggled("a")

	assert.Equal(t, []string{"a", "b", "c"}, added.Names())
	assert.Equal(t, []string{"b"}, removed.Names())
	assert.Equal(t, []string{"a", "b"}, original.Names(), "toggling must not mutate the receiver")
}

func TestToggleTwiceRestoresSet(t *testing.T) {
	store := NewMemoryStore("x")
	current, err := store.Load()
	require.NoError(t, err)

	once, err := Toggle(store, current, "A")
	require.NoError(t, err)
	assert.True(t, once.Has("A"))

	twice, err := Toggle(store, once, "A")
	require.NoError(t, err)
	assert.Equal(t, current.Names(), twice.Names())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, persisted.Names())
}

func TestTogglePersistsFullSet(t *testing.T) {
	store := &MockStore{}
	store.On("Save", mock.MatchedBy(func(s Set) bool {
		return assert.ObjectsAreEqual([]string{"a", "b", "c"}, s.Names())
	})).Return(nil)

	next, err := Toggle(store, NewSet("a", "b"), "c")

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, next.Names())
	store.AssertExpectations(t)
}

func TestToggleSaveError(t *testing.T) {
	store := &MockStore{}
	store.On("Save", mock.Anything).Return(assert.AnError)
	current := NewSet("a")

	next, err := Toggle(store, current, "a")

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"a"}, next.Names())
	store.AssertExpectations(t)
}

func TestToggleEmptyName(t *testing.T) {
	store := &MockStore{}

	_, err := Toggle(store, NewSet(), "")

	assert.Error(t, err)
	store.AssertNotCalled(t, "Save", mock.Anything)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore("a")

	loaded, err := store.Load()
	require.NoError(t, err)
	loaded["b"] = true

	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Names())
}
