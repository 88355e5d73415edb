package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/fixedmem/internal/utils"
)

func TestOptionalRWMutexDisabled(t *testing.T) {
	var mutex utils.OptionalRWMutex
	require.False(t, mutex.Enabled())

	// A disabled mutex never blocks, even when locked twice
	mutex.Lock()
	mutex.Lock()
	mutex.Unlock()
	mutex.Unlock()
}

func TestOptionalRWMutexEnabled(t *testing.T) {
	mutex := utils.NewOptionalRWMutex(true)
	require.True(t, mutex.Enabled())

	mutex.RLock()
	mutex.RLock()
	mutex.RUnlock()
	mutex.RUnlock()

	mutex.Lock()
	mutex.Unlock()
}
