package layout

import "testing"

func TestRectSize(t *testing.T) {
	tests := []struct {
		name   string
		rect   Rect
		width  float64
		height float64
		cx, cy float64
	}{
		{name: "unit", rect: Rect{Left: 0, Top: 0, Right: 1, Bottom: 1}, width: 1, height: 1, cx: 0.5, cy: 0.5},
		{name: "offset", rect: Rect{Left: 10, Top: 20, Right: 50, Bottom: 80}, width: 40, height: 60, cx: 30, cy: 50},
		{name: "from xywh", rect: RectXYWH(5, 5, 10, 4), width: 10, height: 4, cx: 10, cy: 7},
		{name: "degenerate", rect: Rect{Left: 3, Top: 3, Right: 3, Bottom: 3}, cx: 3, cy: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rect.Width(); got != tt.width {
				t.Errorf("Width() = %v, want %v", got, tt.width)
			}
			if got := tt.rect.Height(); got != tt.height {
				t.Errorf("Height() = %v, want %v", got, tt.height)
			}
			if got := tt.rect.CenterX(); got != tt.cx {
				t.Errorf("CenterX() = %v, want %v", got, tt.cx)
			}
			if got := tt.rect.CenterY(); got != tt.cy {
				t.Errorf("CenterY() = %v, want %v", got, tt.cy)
			}
		})
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	b := Rect{Left: 5, Top: -5, Right: 20, Bottom: 5}
	want := Rect{Left: 0, Top: -5, Right: 20, Bottom: 10}
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %+v, want %+v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("zero Union() = %+v, want %+v", got, b)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}
	tests := []struct {
		x, y float64
		want bool
	}{
		{5, 5, true},
		{0, 0, true},
		{10, 10, true},
		{-1, 5, false},
		{5, 11, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFitRow(t *testing.T) {
	m := DefaultMetrics()
	sizes := []measureSize{{
		LeftSolid:  10,
		RightSolid: 10,
		Columns:    []columnSize{{Left: 5, Right: 5}, {Left: 5, Right: 5}},
	}}
	tests := []struct {
		name  string
		width float64
		want  float64
	}{
		{name: "stretched", width: 100, want: 4},
		{name: "exact", width: 40, want: 1},
		{name: "clamped to minimum", width: 30, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitRow(sizes, m, tt.width); got != tt.want {
				t.Errorf("fitRow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaceRow(t *testing.T) {
	m := DefaultMetrics()
	sizes := []measureSize{{
		LeftSolid:  10,
		RightSolid: 10,
		Columns:    []columnSize{{Left: 5, Right: 5}, {Left: 5, Right: 5}},
	}}
	got := placeRow(sizes, m, 4, 0)
	if len(got) != 1 || len(got[0].Columns) != 2 {
		t.Fatalf("placeRow() = %+v", got)
	}
	ml := got[0]
	checks := []struct {
		name      string
		got, want float64
	}{
		{"left", ml.Box.Left, 0},
		{"content left", ml.ContentLeft, 10},
		{"column 0", ml.Columns[0].X, 30},
		{"column 1", ml.Columns[1].X, 70},
		{"content right", ml.ContentRight, 90},
		{"right", ml.Box.Right, 100},
		{"scaled half width", ml.Columns[0].Left, 20},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}
