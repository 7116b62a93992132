package navgraph

import (
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/playback"
	"github.com/matzehuels/staffline/pkg/score"
)

// EdgeKind classifies a transition between two measures.
type EdgeKind int

const (
	// Next moves on to the following measure.
	Next EdgeKind = iota
	// Repeat jumps back from an end repeat.
	Repeat
	// Jump is any other relocation: D.C., D.S., To Coda, or skipping an
	// ending.
	Jump
)

func (k EdgeKind) String() string {
	switch k {
	case Repeat:
		return "repeat"
	case Jump:
		return "jump"
	}
	return "next"
}

// Node is one measure.
type Node struct {
	Measure score.MeasureID
	Number  int // 1-based
	Marks   []string
	Visits  int
}

// ID is the DOT node id.
func (n Node) ID() string { return "m" + strconv.Itoa(n.Number) }

// Edge is a transition taken at least once.
type Edge struct {
	From, To score.MeasureID
	Kind     EdgeKind
	// Order lists when the transition is taken, counting transitions from 1.
	Order []int
}

// Graph is the playback route of a document.
type Graph struct {
	Title string
	Nodes []Node
	Edges []Edge
}

// Build sequences d and collects the measure transitions.
func Build(d *score.Document) (*Graph, error) {
	steps, err := playback.Sequence(d)
	if err != nil {
		return nil, err
	}

	g := &Graph{Title: d.Title}
	index := make(map[score.MeasureID]int)
	for _, m := range d.Measures() {
		index[m.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{Measure: m.ID, Number: m.Index + 1, Marks: marks(m)})
	}

	edges := make(map[[2]score.MeasureID]int)
	last, pass, order := score.MeasureID(score.NoID), 0, 0
	for _, st := range steps {
		if st.Measure == last && st.Pass == pass {
			continue
		}
		g.Nodes[index[st.Measure]].Visits++
		if last != score.NoID {
			order++
			key := [2]score.MeasureID{last, st.Measure}
			i, ok := edges[key]
			if !ok {
				i = len(g.Edges)
				edges[key] = i
				g.Edges = append(g.Edges, Edge{From: last, To: st.Measure, Kind: kindOf(d, last, st.Measure)})
			}
			g.Edges[i].Order = append(g.Edges[i].Order, order)
		}
		last, pass = st.Measure, st.Pass
	}
	return g, nil
}

func kindOf(d *score.Document, from, to score.MeasureID) EdgeKind {
	f, t := d.Measure(from), d.Measure(to)
	switch {
	case f.Next == to:
		return Next
	case t.Index <= f.Index && f.Nav.EndRepeat > 0:
		return Repeat
	}
	return Jump
}

func marks(m *score.Measure) []string {
	nav := m.Nav
	var out []string
	if nav.StartRepeat {
		out = append(out, "|:")
	}
	if len(nav.Ending) > 0 {
		parts := make([]string, len(nav.Ending))
		for i, p := range nav.Ending {
			parts[i] = strconv.Itoa(p)
		}
		out = append(out, "ending "+strings.Join(parts, ","))
	}
	if nav.Segno {
		out = append(out, "segno")
	}
	if nav.Coda {
		out = append(out, "coda")
	}
	if nav.ToCoda {
		out = append(out, "to coda")
	}
	if nav.Fine {
		out = append(out, "fine")
	}
	if nav.EndRepeat > 0 {
		out = append(out, ":| x"+strconv.Itoa(nav.EndRepeat))
	}
	if nav.Jump != score.NoJump {
		out = append(out, nav.Jump.String())
	}
	if m.EndsSong {
		out = append(out, "end")
	}
	return out
}
