package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusComplete, StatusFor(0, 10))
	assert.Equal(t, StatusComplete, StatusFor(0, 1))

	assert.Equal(t, StatusPartial, StatusFor(1, 10))
	assert.Equal(t, StatusPartial, StatusFor(4, 10))

	// Exactly half failed counts as FAILED
	assert.Equal(t, StatusFailed, StatusFor(5, 10))
	assert.Equal(t, StatusFailed, StatusFor(10, 10))
	assert.Equal(t, StatusFailed, StatusFor(1, 2))
}
