package token

import "testing"

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(3, 7)
	line, col := p.LineCol()
	if line != 3 || col != 7 {
		t.Fatalf("want (3,7), got (%d,%d)", line, col)
	}
	if p.Unknown() {
		t.Fatalf("want known position")
	}
}

func TestPosUnknown(t *testing.T) {
	var p Pos
	if !p.Unknown() {
		t.Fatalf("zero Pos should be unknown")
	}
}
