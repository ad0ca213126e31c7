package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ChunkCount())
	assert.True(t, bar.LLMEnabled())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilDependencies(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Nil(t, bar.Init())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(_ *Bar) {},
			contains: []string{"Ready", "quit"},
		},
		{
			name: "asking",
			setup: func(b *Bar) {
				b.StartAsking()
			},
			contains: []string{"Thinking"},
		},
		{
			name: "error with message",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("embedding service unavailable")
			},
			contains: []string{"Error: embedding service unavailable"},
		},
		{
			name: "error without message",
			setup: func(b *Bar) {
				b.SetState(StateError)
			},
			contains: []string{"Error"},
		},
		{
			name: "help",
			setup: func(b *Bar) {
				b.SetState(StateHelp)
			},
			contains: []string{"Help"},
		},
		{
			name: "answered",
			setup: func(b *Bar) {
				b.SetState(StateAnswered)
				b.SetChunkCount(3)
			},
			contains: []string{"3 chunks", "new question"},
		},
		{
			name: "llm disabled",
			setup: func(b *Bar) {
				b.SetLLMEnabled(false)
			},
			contains: []string{"LLM off"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_StartAsking(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetMessage("old")

	cmd := bar.StartAsking()

	assert.NotNil(t, cmd)
	assert.Equal(t, StateAsking, bar.State())
	assert.Empty(t, bar.Message())
}

func TestBar_Update_SpinnerOnlyWhileAsking(t *testing.T) {
	bar := NewBar(nil, nil)
	tick := bar.spinner.Tick()

	_, cmd := bar.Update(tick)
	assert.Nil(t, cmd, "spinner should not tick while ready")

	bar.StartAsking()
	_, cmd = bar.Update(tick)
	assert.NotNil(t, cmd)

	_, cmd = bar.Update(struct{}{})
	assert.Nil(t, cmd)
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetChunkCount(5)
	bar.SetLLMEnabled(false)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.ChunkCount())
	assert.False(t, bar.LLMEnabled())
}
