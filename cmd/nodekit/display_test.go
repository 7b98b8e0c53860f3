package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayWidth(t *testing.T) {
	assert.Equal(t, 5, displayWidth("nodes"))
	assert.Equal(t, 4, displayWidth("節點"))
	assert.Equal(t, 6, displayWidth("ab節點"))
}

func TestPrintStatPadsToColumn(t *testing.T) {
	var a, b bytes.Buffer
	printStat(&a, "Nodes", 7)
	printStat(&b, "節點", 7)
	assert.Equal(t, displayWidth(a.String()), displayWidth(b.String()))
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("NODEKIT_CONFIG", "")
	assert.Equal(t, "config/nodekit.toml", resolveConfigPath(""))
	t.Setenv("NODEKIT_CONFIG", "/etc/nodekit.toml")
	assert.Equal(t, "/etc/nodekit.toml", resolveConfigPath(""))
	assert.Equal(t, "x.toml", resolveConfigPath("x.toml"))
}
