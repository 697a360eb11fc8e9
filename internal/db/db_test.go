package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := persistErr("upsert opportunities", cause)
	require.Error(t, err)

	var pErr *PersistenceError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, "upsert opportunities", pErr.Op)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "persistence failure")
}

func TestPersistErrNil(t *testing.T) {
	assert.NoError(t, persistErr("anything", nil))
}

func TestJSONArray(t *testing.T) {
	assert.Equal(t, `["Go","Python"]`, string(jsonArray([]string{"Go", "Python"})))
	assert.Equal(t, `[]`, string(jsonArray(nil)))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("x"))
	assert.Equal(t, "x", *nullIfEmpty("x"))
}
