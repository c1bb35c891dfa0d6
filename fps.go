package birch

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// fpsRefresh is how often the FPS widget rewrites its text.
const fpsRefresh = 500 * time.Millisecond

// NewFPSWidget creates a label node that displays the current FPS and TPS.
// The text is refreshed every half second by a node timer.
func NewFPSWidget() *Node {
	node := NewLabel("fps_widget", "FPS: 0.0\nTPS: 0.0")
	node.ZIndex = 1 << 20 // draw on top
	label := node.Drawable.(*Label)
	node.AddTimer("fps", fpsRefresh, 0, func(*Timer) {
		label.Text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	})
	return node
}
