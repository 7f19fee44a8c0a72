package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestBuildEbitenKeyHID_Letters(t *testing.T) {
	m := buildEbitenKeyHID()
	if m[ebiten.KeyA] != 4 {
		t.Fatalf("expected KeyA->4, got %d", m[ebiten.KeyA])
	}
	if m[ebiten.KeyZ] != 29 {
		t.Fatalf("expected KeyZ->29, got %d", m[ebiten.KeyZ])
	}
}

func TestBuildEbitenKeyHID_Digits(t *testing.T) {
	m := buildEbitenKeyHID()
	if m[ebiten.Key1] != 30 {
		t.Fatalf("expected Key1->30, got %d", m[ebiten.Key1])
	}
	if m[ebiten.Key0] != 39 {
		t.Fatalf("expected Key0->39, got %d", m[ebiten.Key0])
	}
}

func TestBuildEbitenKeyHID_Controls(t *testing.T) {
	m := buildEbitenKeyHID()
	if m[ebiten.KeyEnter] != 40 {
		t.Fatalf("expected KeyEnter->40, got %d", m[ebiten.KeyEnter])
	}
	if m[ebiten.KeyBackspace] != 42 {
		t.Fatalf("expected KeyBackspace->42, got %d", m[ebiten.KeyBackspace])
	}
}

func TestFixedPoint(t *testing.T) {
	p := fixedPoint(3, 5)
	if p.X.Round() != 3 || p.Y.Round() != 5 {
		t.Fatalf("expected (3,5), got (%d,%d)", p.X.Round(), p.Y.Round())
	}
}

func TestGUIFrontend_RenderFrameStashesSnapshot(t *testing.T) {
	m := NewMachine()
	g := NewGUIFrontend(m)
	snap := m.FrameSnapshot()
	if err := g.RenderFrame(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.haveSnap {
		t.Fatal("expected haveSnap to be set after RenderFrame")
	}
}
