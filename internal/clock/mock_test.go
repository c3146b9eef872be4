package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockFiresInOrder(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	var order []int

	m.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	m.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	m.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })

	m.Advance(25 * time.Millisecond)
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, m.Pending())

	m.Advance(5 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, time.Unix(0, 0).Add(30*time.Millisecond), m.Now())
}

func TestMockStop(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	m.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, m.Pending())
}

func TestMockChainedTimers(t *testing.T) {
	m := NewMock(time.Unix(0, 0))
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		m.AfterFunc(500*time.Millisecond, tick)
	}
	m.AfterFunc(500*time.Millisecond, tick)

	m.Advance(2 * time.Second)
	assert.Equal(t, 4, ticks)
	assert.Equal(t, 1, m.Pending())
}

func TestRealAfterFunc(t *testing.T) {
	done := make(chan struct{})
	New().AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
