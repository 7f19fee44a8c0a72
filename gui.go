// gui.go - ebiten-backed GUI frame consumer for the 8086/5150 core.
//
// Grounded on the teacher's video_backend_ebiten.go: the same
// ebiten.RunGame-in-a-goroutine-plus-vsyncChan startup handshake, the same
// Ctrl+Shift+V clipboard-paste path through golang.design/x/clipboard, and
// the same printable/special key split for keyboard input. Retargeted from a
// generic RGBA frame-buffer sink (UpdateFrame/UpdateRegion over a
// caller-rendered bitmap) to a CGA text-mode renderer: GUIFrontend owns the
// glyph rasterisation itself, drawing Snapshot.TextBuffer with
// golang.org/x/image/font instead of accepting pre-rendered pixels, and
// feeds keyboard edges into Machine.InjectKeyDown/InjectKeyUp instead of a
// caller-supplied byte callback. The old multi-backend VideoOutput/
// GUIFrontend abstraction (video_interface.go, gui_interface.go,
// video_backend_headless.go, gui_frontend_headless.go) existed to pick
// between FLTK/GTK4/Ebiten/headless frontends across six CPU architectures;
// this machine has exactly one GUI backend, so that indirection is gone and
// GUIFrontend talks to Machine directly.
package main

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// fixedPoint converts integer pixel coordinates into the fixed-point form
// font.Drawer.Dot expects.
func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
}

const (
	charWidth  = 8
	charHeight = 14
)

// cgaPalette is the standard 16-color IBM CGA RGB palette, in attribute
// index order (bit 3 of each nibble selects the intense variant).
var cgaPalette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF}, {0x00, 0x00, 0xAA, 0xFF},
	{0x00, 0xAA, 0x00, 0xFF}, {0x00, 0xAA, 0xAA, 0xFF},
	{0xAA, 0x00, 0x00, 0xFF}, {0xAA, 0x00, 0xAA, 0xFF},
	{0xAA, 0x55, 0x00, 0xFF}, {0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF}, {0x55, 0x55, 0xFF, 0xFF},
	{0x55, 0xFF, 0x55, 0xFF}, {0x55, 0xFF, 0xFF, 0xFF},
	{0xFF, 0x55, 0x55, 0xFF}, {0xFF, 0x55, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x55, 0xFF}, {0xFF, 0xFF, 0xFF, 0xFF},
}

// ebitenKeyHID maps the ebiten keys the emulator cares about onto the
// USB-HID usage IDs ppi.go's usbToPCScancode table expects.
var ebitenKeyHID = buildEbitenKeyHID()

func buildEbitenKeyHID() map[ebiten.Key]byte {
	m := map[ebiten.Key]byte{
		ebiten.KeyEnter: 40, ebiten.KeyNumpadEnter: 40,
		ebiten.KeyEscape:    41,
		ebiten.KeyBackspace: 42,
		ebiten.KeyTab:       43,
		ebiten.KeySpace:     44,
		ebiten.KeyMinus:     45, ebiten.KeyEqual: 46,
		ebiten.KeyLeftBracket: 47, ebiten.KeyRightBracket: 48,
		ebiten.KeyBackslash: 49,
		ebiten.KeySemicolon: 51, ebiten.KeyApostrophe: 52,
		ebiten.KeyGraveAccent: 53, ebiten.KeyComma: 54,
		ebiten.KeyPeriod: 55, ebiten.KeySlash: 56,
		ebiten.KeyArrowRight: 79, ebiten.KeyArrowLeft: 80,
		ebiten.KeyArrowDown: 81, ebiten.KeyArrowUp: 82,
	}
	for k := ebiten.KeyA; k <= ebiten.KeyZ; k++ {
		m[k] = byte(4 + (k - ebiten.KeyA))
	}
	for k := ebiten.Key1; k <= ebiten.Key9; k++ {
		m[k] = byte(30 + (k - ebiten.Key1))
	}
	m[ebiten.Key0] = 39
	return m
}

// GUIFrontend renders CGA text-mode snapshots into an ebiten window and
// forwards keyboard edges into a Machine. Implements both ebiten.Game and
// FrameConsumer.
type GUIFrontend struct {
	machine *Machine

	mu       sync.Mutex
	snap     Snapshot
	haveSnap bool

	face font.Face

	vsyncChan     chan struct{}
	started       bool
	clipboardOnce sync.Once
	clipboardOK   bool
}

// NewGUIFrontend returns an unstarted ebiten GUI frontend for machine.
func NewGUIFrontend(machine *Machine) *GUIFrontend {
	return &GUIFrontend{
		machine:   machine,
		face:      basicfont.Face7x13,
		vsyncChan: make(chan struct{}, 1),
	}
}

// Start opens the ebiten window in a background goroutine and blocks until
// the first Draw call, mirroring the teacher's EbitenOutput.Start handshake.
func (g *GUIFrontend) Start() error {
	if g.started {
		return nil
	}
	g.started = true

	ebiten.SetWindowSize(80*charWidth, 25*charHeight)
	ebiten.SetWindowTitle("dk86pc")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		if err := ebiten.RunGame(g); err != nil {
			fmt.Printf("gui: ebiten exited: %v\n", err)
		}
	}()

	<-g.vsyncChan
	return nil
}

// RenderFrame implements FrameConsumer: it stashes the snapshot for the next
// ebiten Draw call. Actual glyph rasterisation happens on ebiten's own
// goroutine in Draw, never here, since ebiten.Image mutation off that
// goroutine is unsafe.
func (g *GUIFrontend) RenderFrame(snap Snapshot) error {
	g.mu.Lock()
	g.snap = snap
	g.haveSnap = true
	g.mu.Unlock()
	return nil
}

// Update implements ebiten.Game: it polls keyboard and clipboard input once
// per ebiten tick and forwards edges into the machine.
func (g *GUIFrontend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.pasteClipboard()
	}

	for key, hid := range ebitenKeyHID {
		if inpututil.IsKeyJustPressed(key) {
			g.machine.InjectKeyDown(hid)
		}
		if inpututil.IsKeyJustReleased(key) {
			g.machine.InjectKeyUp(hid)
		}
	}
	return nil
}

// pasteClipboard reads host clipboard text and injects it as a sequence of
// keystrokes, matching the teacher's Ctrl+Shift+V paste path.
func (g *GUIFrontend) pasteClipboard() {
	g.clipboardOnce.Do(func() {
		g.clipboardOK = clipboard.Init() == nil
	})
	if !g.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	if len(data) > 4096 {
		data = data[:4096]
	}
	for _, b := range data {
		hid, ok := asciiToHIDUsage(b)
		if !ok {
			continue
		}
		g.machine.InjectKeyDown(hid)
		g.machine.InjectKeyUp(hid)
	}
}

// Draw implements ebiten.Game: it rasterises the most recent snapshot's text
// buffer, one cell at a time, using the CGA background color and the
// 16-color foreground palette.
func (g *GUIFrontend) Draw(screen *ebiten.Image) {
	g.mu.Lock()
	snap := g.snap
	have := g.haveSnap
	g.mu.Unlock()

	if !have {
		screen.Fill(color.Black)
		g.signalVsync()
		return
	}

	cols := snap.Columns
	if cols <= 0 {
		cols = 80
	}
	screen.Fill(cgaPalette[snap.BackgroundColor&0x0F])

	img := image.NewRGBA(screen.Bounds())
	drawer := &font.Drawer{Dst: img, Src: image.Black, Face: g.face}

	for row := 0; row < snap.Rows; row++ {
		for col := 0; col < cols; col++ {
			offset := (row*cols + col) * 2
			if offset+1 >= len(snap.TextBuffer) {
				continue
			}
			ch := snap.TextBuffer[offset]
			attr := snap.TextBuffer[offset+1]
			if ch == 0 || ch == ' ' {
				continue
			}
			fg := cgaPalette[attr&0x0F]
			x := col * charWidth
			y := row*charHeight + charHeight - 4
			drawer.Src = image.NewUniform(fg)
			drawer.Dot = fixedPoint(x, y)
			drawer.DrawString(string(rune(ch)))
		}
	}
	screen.DrawImage(ebiten.NewImageFromImage(img), nil)

	if snap.CursorRow >= 0 && snap.CursorColumn >= 0 {
		cx := snap.CursorColumn * charWidth
		cy := snap.CursorRow*charHeight + charHeight - 2
		cursor := ebiten.NewImage(charWidth, 2)
		cursor.Fill(cgaPalette[7])
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(cx), float64(cy))
		screen.DrawImage(cursor, op)
	}

	g.signalVsync()
}

func (g *GUIFrontend) signalVsync() {
	select {
	case g.vsyncChan <- struct{}{}:
	default:
	}
}

// Layout implements ebiten.Game: the logical screen is always one CGA text
// page, scaled by ebiten to fit the window.
func (g *GUIFrontend) Layout(_, _ int) (int, int) {
	return 80 * charWidth, 25 * charHeight
}
