package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiters(t *testing.T) {
	l := NewLimiters()

	a := l.Use("turn:u1", WithLimit(2), WithRange(time.Hour))
	allowed := 0
	for i := 0; i < 10; i++ {
		if a.Allow() {
			allowed++
		}
	}
	// burst is twice the limit
	assert.Equal(t, 4, allowed)

	assert.Same(t, a, l.Use("turn:u1"))
	assert.True(t, l.Use("turn:u2", WithLimit(2), WithRange(time.Hour)).Allow())
}
