package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutConfig_Widths(t *testing.T) {
	l := NewLayoutConfig(100, 30, 0.3)
	assert.False(t, l.IsCompact)
	assert.Equal(t, 30, l.InfoWidth())
	assert.Equal(t, 100-30-2*ArrowWidth, l.StageWidth())
	assert.Equal(t, 100-30-2, l.StripViewport())

	compact := NewLayoutConfig(60, 30, 0.3)
	assert.True(t, compact.IsCompact)
	assert.Equal(t, 0, compact.InfoWidth())
	assert.Equal(t, 60-2*ArrowWidth, compact.StageWidth())

	hidden := NewLayoutConfig(100, 30, 0)
	assert.Equal(t, 0, hidden.InfoWidth())
}

func TestLayoutConfig_StageHeight(t *testing.T) {
	l := NewLayoutConfig(100, 30, 0)
	assert.Equal(t, 30-HeaderHeight-CounterHeight, l.StageHeight())

	l.ShowStrip = true
	l.ShowHelp = true
	assert.Equal(t, 30-HeaderHeight-CounterHeight-StripHeight-HelpHeight, l.StageHeight())

	l.ShowStrip = false
	l.ShowDots = true
	assert.Equal(t, 30-HeaderHeight-CounterHeight-DotsHeight-HelpHeight, l.StageHeight())

	tiny := NewLayoutConfig(10, 3, 0)
	tiny.ShowStrip = true
	assert.Equal(t, MinStageHeight, tiny.StageHeight())
	assert.Equal(t, MinStageWidth, tiny.StageWidth())
}

func TestGridColumns(t *testing.T) {
	assert.Equal(t, 4, GridColumns(100, 0))
	assert.Equal(t, 1, GridColumns(10, 0))
	assert.Equal(t, 3, GridColumns(100, 3))
}
