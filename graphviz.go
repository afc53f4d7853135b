package lua

import (
	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

// ToDOT renders the family of s in the DOT language: the main thread, every
// live thread derived from it and the extra containers their slots refer to.
// Slots are drawn as dashed edges since they never own the container.
// Rendering inspects reference counts without promoting any reference.
func (s *State) ToDOT() g.String {
	b := g.NewBuilder()

	b.WriteString("digraph lua {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(
		"  node [shape=box, style=\"rounded,filled\", fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	main := s.Main()
	contexts := g.SliceOf(main)
	contexts.Push(main.Threads()...)

	extras := g.NewMap[uint64, int64]()

	var edges g.Slice[g.String]

	for ctx := range contexts.Iter() {
		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\\n{}\"", ctx.Name(), ctx.Status()))

		switch {
		case ctx == s:
			attrs.Push("fillcolor=\"#90ee90\"", "penwidth=2")
		case ctx.Status() == StatusDead || ctx.Status() == StatusClosed:
			attrs.Push("fillcolor=\"#d3d3d3\"")
		}

		b.WriteString(g.Format("  \"t{}\" [{}];\n", ctx.ID(), attrs.Join(", ")))

		if !ctx.IsMainThread() {
			edges.Push(g.Format("  \"t{}\" -> \"t{}\" [label=\" thread \"];\n", main.ID(), ctx.ID()))
		}

		if c := ctx.GetExtra().container(); c.IsSome() {
			extras[c.Some().id] = max(c.Some().strong.Load(), 0)
			edges.Push(g.Format(
				"  \"t{}\" -> \"x{}\" [label=\" extra \", style=dashed, arrowhead=odiamond];\n",
				ctx.ID(),
				c.Some().id,
			))
		}
	}

	ids := extras.Keys()
	ids.SortBy(cmp.Cmp)

	for id := range ids.Iter() {
		strong := extras[id]

		label := g.Format("extra #{}\\nstrong={}", id, strong)
		fill := "#fff3b0"

		if strong == 0 {
			label = g.Format("extra #{}\\nexpired", id)
			fill = "#f4cccc"
		}

		b.WriteString(g.Format("  \"x{}\" [shape=ellipse, label=\"{}\", fillcolor=\"{}\"];\n", id, label, fill))
	}

	b.WriteByte('\n')

	for edge := range edges.Iter() {
		b.WriteString(edge)
	}

	b.WriteString("}\n")

	return b.String()
}
