package board

import "testing"

func TestPlaceAndOccupied(t *testing.T) {
	b := New()
	if b.Occupied(7, 7) {
		t.Fatalf("expected empty board to be unoccupied at (7,7)")
	}
	b.Place(7, 7, White)
	if !b.Occupied(7, 7) {
		t.Fatalf("expected (7,7) to be occupied after Place")
	}
	if got := b.At(7, 7); got != White {
		t.Fatalf("At(7,7) = %v, want White", got)
	}
	if b.Occupied(0, 0) {
		t.Fatalf("Place must not affect other cells")
	}
}

func TestWinsHorizontal(t *testing.T) {
	b := New()
	for col := 4; col <= 8; col++ {
		b.Place(7, col, White)
	}
	if !b.Wins(7, 8, White) {
		t.Fatalf("expected horizontal five-in-a-row to win")
	}
}

func TestWinsVertical(t *testing.T) {
	b := New()
	for row := 0; row < 5; row++ {
		b.Place(row, 3, Black)
	}
	if !b.Wins(4, 3, Black) {
		t.Fatalf("expected vertical five-in-a-row to win")
	}
}

func TestWinsDiagonal(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Place(i, i, White)
	}
	if !b.Wins(2, 2, White) {
		t.Fatalf("expected \\ diagonal five-in-a-row to win from the middle stone")
	}
}

func TestWinsAntiDiagonal(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Place(i, 4-i, Black)
	}
	if !b.Wins(0, 4, Black) {
		t.Fatalf("expected / diagonal five-in-a-row to win")
	}
}

func TestWinsOverline(t *testing.T) {
	// spec.md §9: an overline (6+ in a row) must still count as a win,
	// even though the original C++ checked count == 5 exactly.
	b := New()
	for col := 4; col <= 9; col++ {
		b.Place(7, col, White)
	}
	if !b.Wins(7, 9, White) {
		t.Fatalf("expected overline (6 in a row) to win")
	}
}

func TestNoWinBelowFive(t *testing.T) {
	b := New()
	for col := 4; col <= 7; col++ {
		b.Place(7, col, White)
	}
	if b.Wins(7, 7, White) {
		t.Fatalf("four in a row must not win")
	}
}

func TestWinsIgnoresOtherColor(t *testing.T) {
	b := New()
	b.Place(7, 4, White)
	b.Place(7, 5, Black)
	b.Place(7, 6, White)
	b.Place(7, 7, White)
	b.Place(7, 8, White)
	if b.Wins(7, 8, White) {
		t.Fatalf("an interrupting stone of the other color must break the run")
	}
}
