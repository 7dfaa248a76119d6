package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactQuery(t *testing.T) {
	assert.Equal(t, "", redactQuery(""))
	assert.Equal(t, "college=X", redactQuery("college=X"))
	assert.Equal(t, "college=X&token=REDACTED", redactQuery("token=secret&college=X"))
	assert.NotContains(t, redactQuery("token=a.b.c"), "a.b.c")
}
