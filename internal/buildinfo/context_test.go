package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextFallbacks(t *testing.T) {
	t.Parallel()

	var nilCtx *Context
	assert.Equal(t, "unknown", nilCtx.GetVersion())
	assert.Equal(t, "unknown", nilCtx.GetBuildDate())

	c := &Context{}
	assert.Equal(t, "unknown", c.GetVersion())
	assert.Equal(t, "rosweb@unknown", c.Release())

	c = &Context{Version: "v1.2.0", BuildDate: "2026-01-02"}
	assert.Equal(t, "v1.2.0", c.GetVersion())
	assert.Equal(t, "2026-01-02", c.GetBuildDate())
	assert.Equal(t, "rosweb@v1.2.0", c.Release())
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	c := Current()
	assert.NotNil(t, c)
	assert.NotEmpty(t, c.GetVersion())
}
