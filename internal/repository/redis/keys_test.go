package redisrepo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIdemGame_ScopedByUser(t *testing.T) {
	assert.Equal(t, "cartodesk:v1:idem:games:u1:abc", KeyIdemGame("u1", "abc"))
	assert.NotEqual(t, KeyIdemGame("u1", "abc"), KeyIdemGame("u2", "abc"))
	assert.NotEqual(t, KeyIdemGame("a:b", "c"), KeyIdemGame("a", "b:c"))
}
