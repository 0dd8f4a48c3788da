package search

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbox_EmptyInitially(t *testing.T) {
	ib := NewInbox(0)
	assert.True(t, ib.Empty())
	assert.Nil(t, ib.Drain())
}

func TestInbox_SingleProducerDrainOrder(t *testing.T) {
	ib := NewInbox(0)
	for i := 0; i < 5; i++ {
		ib.Push(nil, i, 0, int64(i))
	}
	require.False(t, ib.Empty())

	msgs := ib.Drain()
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, i, m.x)
	}
	assert.True(t, ib.Empty())
}

func TestInbox_ConcurrentProducersDeliverAll(t *testing.T) {
	ib := NewInbox(256) // small chunks force repeated chunk rollover
	const producers = 8
	const perProducer = 2000

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				ib.Push(nil, p, i, int64(p*perProducer+i))
			}
		}(p)
	}
	wg.Wait()

	var got []int64
	for {
		msgs := ib.Drain()
		if len(msgs) == 0 {
			break
		}
		for _, m := range msgs {
			got = append(got, m.g)
			ib.Release(m)
		}
	}

	require.Len(t, got, producers*perProducer)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	for i, v := range got {
		assert.Equal(t, int64(i), v)
	}
}

func TestMessagePool_ReusesReleased(t *testing.T) {
	ib := NewInbox(0)
	ib.Push(nil, 1, 1, 1)
	msgs := ib.Drain()
	require.Len(t, msgs, 1)
	first := msgs[0]
	ib.Release(first)

	ib.Push(nil, 2, 2, 2)
	msgs2 := ib.Drain()
	require.Len(t, msgs2, 1)
	assert.Same(t, first, msgs2[0])
	assert.Equal(t, 2, msgs2[0].x)
}
