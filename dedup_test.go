package viewerpdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Contains("blob:https://viewer/1"))
	assert.Equal(t, 0, tr.Len())

	tr.Add("blob:https://viewer/1")
	tr.Add("blob:https://viewer/1")
	tr.Add(`<canvas width="10"></canvas>`)

	assert.True(t, tr.Contains("blob:https://viewer/1"))
	assert.True(t, tr.Contains(`<canvas width="10"></canvas>`))
	assert.False(t, tr.Contains("blob:https://viewer/1 "), "matching is exact")
	assert.Equal(t, 2, tr.Len())
}

func TestTrackerSessionsAreIndependent(t *testing.T) {
	a, b := NewTracker(), NewTracker()
	a.Add("x")
	assert.False(t, b.Contains("x"))
}

func TestCandidateIdentifier(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want string
	}{
		{"canvas uses markup", Candidate{Kind: KindCanvas, Markup: "<canvas></canvas>", Src: "ignored"}, "<canvas></canvas>"},
		{"image uses source", Candidate{Kind: KindImage, Markup: "<img>", Src: "blob:abc"}, "blob:abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Identifier())
		})
	}
}
