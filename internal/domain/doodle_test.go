package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strokeWithPoints(n int) Stroke {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: float64(i), Y: float64(i)}
	}
	return Stroke{Type: StrokePen, Color: "#111111", Width: 6, Points: pts}
}

func TestPruneStrokes_KeepsNewestSuffix(t *testing.T) {
	// Oldest to newest: 100, 5000, 9000 points against a 12000 budget.
	// 9000+5000 already exceeds, so only the newest stroke survives.
	strokes := []Stroke{strokeWithPoints(100), strokeWithPoints(5000), strokeWithPoints(9000)}

	pruned := PruneStrokes(strokes, 12000)

	require.Len(t, pruned, 1)
	assert.Len(t, pruned[0].Points, 9000)
}

func TestPruneStrokes_ExactBudgetKept(t *testing.T) {
	strokes := []Stroke{strokeWithPoints(3000), strokeWithPoints(9000)}

	pruned := PruneStrokes(strokes, 12000)

	require.Len(t, pruned, 2, "a total exactly equal to the budget is kept, not dropped")
	assert.Len(t, pruned[0].Points, 3000)
}

func TestPruneStrokes_UnderBudgetUntouched(t *testing.T) {
	strokes := []Stroke{strokeWithPoints(10), strokeWithPoints(20)}
	pruned := PruneStrokes(strokes, 12000)
	assert.Equal(t, strokes, pruned)
}

func TestPruneStrokes_NoPartialTrim(t *testing.T) {
	strokes := []Stroke{strokeWithPoints(7000), strokeWithPoints(7000)}

	pruned := PruneStrokes(strokes, 12000)

	require.Len(t, pruned, 1)
	assert.Len(t, pruned[0].Points, 7000, "strokes are dropped whole, never trimmed")
}

func TestTruncateElements(t *testing.T) {
	els := make([]PlacedSticker, 70)
	for i := range els {
		els[i] = PlacedSticker{Type: ElementSticker, DataURL: "data:image/png;base64,x", X: float64(i)}
	}

	kept := TruncateElements(els, MaxDoodleElements)

	require.Len(t, kept, MaxDoodleElements)
	// Oldest dropped first: the survivors are the last 60.
	assert.Equal(t, float64(10), kept[0].X)
	assert.Equal(t, float64(69), kept[len(kept)-1].X)
}

func TestDoodle_MergeSession(t *testing.T) {
	d := NewDoodle()
	d.Strokes = []Stroke{strokeWithPoints(5)}
	d.Elements = []PlacedSticker{{Type: ElementSticker, DataURL: "a"}}

	d.MergeSession(
		[]Stroke{strokeWithPoints(3)},
		[]PlacedSticker{{Type: ElementSticker, DataURL: "b"}},
		42,
	)

	require.Len(t, d.Strokes, 2)
	assert.Len(t, d.Strokes[0].Points, 5, "persisted strokes stay before session strokes")
	assert.Len(t, d.Strokes[1].Points, 3)
	require.Len(t, d.Elements, 2)
	assert.Equal(t, "b", d.Elements[1].DataURL)
	assert.Equal(t, int64(42), d.UpdatedAtMs)
}

func TestDoodle_Clear(t *testing.T) {
	d := NewDoodle()
	d.Strokes = []Stroke{strokeWithPoints(5)}
	d.Elements = []PlacedSticker{{Type: ElementSticker, DataURL: "a"}}
	d.ThumbHash = "LEHV6nWB2yk8pyo0adR*.7kCMdnj"

	d.Clear(99)

	assert.True(t, d.Empty())
	assert.Empty(t, d.ThumbHash)
	assert.Equal(t, CanvasWidth, d.Width, "clear keeps canvas dimensions")
	assert.Equal(t, int64(99), d.UpdatedAtMs)
}

func TestDoodle_Normalize(t *testing.T) {
	d := Doodle{
		Width:  10, // wrong dimensions get forced back to the logical size
		Height: 10,
		Strokes: []Stroke{
			strokeWithPoints(2),
			{Type: StrokePen, Width: 6, Points: []Point{{X: 1, Y: 1}}}, // tap, dropped
			{Type: "scribble", Width: 4, Points: []Point{{}, {X: 2}}},  // unknown type coerced to pen
			{Type: StrokeErase, Width: 0, Points: []Point{{}, {X: 2}}}, // zero width dropped
		},
		Elements: []PlacedSticker{
			{DataURL: "data:image/png;base64,x", Size: -3},
			{DataURL: ""}, // no payload, dropped
		},
	}

	d.Normalize()

	assert.Equal(t, CanvasWidth, d.Width)
	assert.Equal(t, CanvasHeight, d.Height)
	require.Len(t, d.Strokes, 2)
	assert.Equal(t, StrokePen, d.Strokes[1].Type)
	require.Len(t, d.Elements, 1)
	assert.Equal(t, ElementSticker, d.Elements[0].Type)
	assert.Equal(t, float64(DefaultElementSize), d.Elements[0].Size)
}

func TestStroke_PaintWidth(t *testing.T) {
	pen := Stroke{Type: StrokePen, Width: 6}
	erase := Stroke{Type: StrokeErase, Width: 6}

	assert.Equal(t, 6.0, pen.PaintWidth())
	assert.Equal(t, 12.0, erase.PaintWidth(), "eraser paints at 2x the nominal width")
}
