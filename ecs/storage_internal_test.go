package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec struct {
	X, Y float32
}

func TestEntityRegistry(t *testing.T) {
	t.Run("issues lowest free id", func(t *testing.T) {
		r := newEntityRegistry(8)
		for want := Entity(0); want < 5; want++ {
			e, ok := r.create()
			require.True(t, ok)
			assert.Equal(t, want, e)
		}

		require.True(t, r.destroy(3))
		require.True(t, r.destroy(1))

		e, ok := r.create()
		require.True(t, ok)
		assert.Equal(t, Entity(1), e)
		e, ok = r.create()
		require.True(t, ok)
		assert.Equal(t, Entity(3), e)
		e, ok = r.create()
		require.True(t, ok)
		assert.Equal(t, Entity(5), e)
	})

	t.Run("capacity", func(t *testing.T) {
		r := newEntityRegistry(3)
		for i := 0; i < 3; i++ {
			_, ok := r.create()
			require.True(t, ok)
		}
		_, ok := r.create()
		assert.False(t, ok)
		assert.Equal(t, 3, r.count())

		r.destroy(2)
		e, ok := r.create()
		require.True(t, ok)
		assert.Equal(t, Entity(2), e)
	})

	t.Run("destroy bumps generation once", func(t *testing.T) {
		r := newEntityRegistry(4)
		e, _ := r.create()
		assert.Equal(t, uint32(0), r.generation(e))
		assert.False(t, r.recycled(e))

		assert.True(t, r.destroy(e))
		assert.False(t, r.destroy(e))
		assert.Equal(t, uint32(1), r.generation(e))

		again, _ := r.create()
		assert.Equal(t, e, again)
		assert.True(t, r.recycled(again))
	})

	t.Run("out of range ids are dead", func(t *testing.T) {
		r := newEntityRegistry(4)
		assert.False(t, r.isAlive(100))
		assert.False(t, r.destroy(100))
		assert.Equal(t, uint32(0), r.generation(100))
	})

	t.Run("clear", func(t *testing.T) {
		r := newEntityRegistry(4)
		e, _ := r.create()
		r.destroy(e)
		r.create()
		r.clear()

		assert.Equal(t, 0, r.count())
		assert.Equal(t, uint32(0), r.generation(e))
		got, ok := r.create()
		require.True(t, ok)
		assert.Equal(t, Entity(0), got)
		assert.False(t, r.recycled(got))
	})
}

func TestDenseStorage(t *testing.T) {
	t.Run("slot states", func(t *testing.T) {
		s := newDenseStorage[vec](128)

		ptr, state := s.Get(5)
		assert.Nil(t, ptr)
		assert.Equal(t, slotEmpty, state)

		s.Set(5, vec{X: 1, Y: 2})
		ptr, state = s.Get(5)
		require.NotNil(t, ptr)
		assert.Equal(t, slotPresent, state)
		assert.Equal(t, vec{X: 1, Y: 2}, *ptr)
		assert.True(t, s.Has(5))

		s.Retire(5)
		assert.False(t, s.Has(5))
		ptr, state = s.Get(5)
		require.NotNil(t, ptr)
		assert.Equal(t, slotStale, state)
		assert.Equal(t, vec{X: 1, Y: 2}, *ptr)

		s.Set(5, vec{X: 3})
		_, state = s.Get(5)
		assert.Equal(t, slotPresent, state)

		assert.True(t, s.Remove(5))
		assert.False(t, s.Remove(5))
		ptr, state = s.Get(5)
		assert.Nil(t, ptr)
		assert.Equal(t, slotEmpty, state)
	})

	t.Run("remove clears stale value", func(t *testing.T) {
		s := newDenseStorage[vec](8)
		s.Set(1, vec{X: 9})
		s.Retire(1)
		assert.False(t, s.Remove(1))

		_, state := s.Get(1)
		assert.Equal(t, slotEmpty, state)
	})

	t.Run("retire on empty slot stays empty", func(t *testing.T) {
		s := newDenseStorage[vec](8)
		s.Retire(2)
		_, state := s.Get(2)
		assert.Equal(t, slotEmpty, state)
	})

	t.Run("pointers survive block allocation", func(t *testing.T) {
		s := newDenseStorage[vec](genericBlockSize * 4)
		s.Set(0, vec{X: 1})
		first, _ := s.Get(0)

		for i := 1; i < genericBlockSize*4; i++ {
			s.Set(Entity(i), vec{X: float32(i)})
		}

		again, _ := s.Get(0)
		assert.Same(t, first, again)
		first.Y = 7
		assert.Equal(t, float32(7), again.Y)
	})

	t.Run("out of range writes are ignored", func(t *testing.T) {
		s := newDenseStorage[vec](8)
		s.Set(8, vec{X: 1})
		assert.False(t, s.Has(8))
		assert.Equal(t, 0, s.Count())
	})

	t.Run("ascending entities", func(t *testing.T) {
		s := newDenseStorage[vec](256)
		for _, e := range []Entity{200, 3, 70, 64, 0} {
			s.Set(e, vec{})
		}
		s.Retire(70)

		assert.Equal(t, []Entity{0, 3, 64, 200}, s.AppendEntities(nil))
		assert.Equal(t, 4, s.Count())
	})

	t.Run("clear", func(t *testing.T) {
		s := newDenseStorage[vec](128)
		s.Set(1, vec{X: 1})
		s.Set(100, vec{X: 2})
		s.Retire(100)
		s.Clear()

		assert.Equal(t, 0, s.Count())
		_, state := s.Get(100)
		assert.Equal(t, slotEmpty, state)
		assert.Empty(t, s.AppendEntities(nil))
	})
}

func TestSparseStorage(t *testing.T) {
	t.Run("slot states", func(t *testing.T) {
		s := newSparseStorage[vec](4)

		_, state := s.Get(10)
		assert.Equal(t, slotEmpty, state)

		s.Set(10, vec{X: 1})
		ptr, state := s.Get(10)
		require.NotNil(t, ptr)
		assert.Equal(t, slotPresent, state)
		assert.Equal(t, 1, s.Count())

		s.Retire(10)
		s.Retire(10)
		assert.Equal(t, 0, s.Count())
		ptr, state = s.Get(10)
		require.NotNil(t, ptr)
		assert.Equal(t, slotStale, state)
		assert.Equal(t, float32(1), ptr.X)

		s.Set(10, vec{X: 2})
		assert.Equal(t, 1, s.Count())
		assert.True(t, s.Has(10))

		assert.True(t, s.Remove(10))
		assert.False(t, s.Remove(10))
		assert.Equal(t, 0, s.Count())
	})

	t.Run("pointers survive rehash", func(t *testing.T) {
		s := newSparseStorage[vec](2)
		s.Set(1, vec{X: 1})
		first, _ := s.Get(1)

		for i := 2; i < 500; i++ {
			s.Set(Entity(i), vec{})
		}

		again, _ := s.Get(1)
		assert.Same(t, first, again)
	})

	t.Run("ascending entities skip stale", func(t *testing.T) {
		s := newSparseStorage[vec](4)
		for _, e := range []Entity{900, 4, 77, 12} {
			s.Set(e, vec{})
		}
		s.Retire(77)

		dst := []Entity{1000}
		assert.Equal(t, []Entity{1000, 4, 12, 900}, s.AppendEntities(dst))
	})
}

func TestTagStorage(t *testing.T) {
	s := newTagStorage(16)
	s.Set(3)
	s.Set(1)
	assert.True(t, s.Has(3))
	assert.Equal(t, []Entity{1, 3}, s.AppendEntities(nil))

	s.Retire(3)
	assert.False(t, s.Has(3))
	assert.False(t, s.Remove(3))
	assert.True(t, s.Remove(1))
	assert.Equal(t, 0, s.Count())
}
