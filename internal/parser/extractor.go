package parser

import (
	"strings"

	"github.com/dshills/nixdoc/pkg/types"
)

// Extract recognizes lambda bindings in a scanned event stream. A binding is an
// identifier, an '=' and one or more lambda introducers with nothing in
// between. Its position is the first introducer. The documentation comment,
// if any, must directly precede the identifier with no blank line.
func Extract(events []Event, src []byte, file string) []types.Binding {
	var bindings []types.Binding

	for i := 0; i+2 < len(events); i++ {
		ident := events[i]
		if ident.Kind != EventIdentifier || events[i+1].Kind != EventAssign {
			continue
		}

		last := i + 2
		for last < len(events) && events[last].Kind == EventLambdaIntro {
			last++
		}
		if last == i+2 {
			continue
		}
		first := events[i+2]

		bindings = append(bindings, types.Binding{
			Name:      ident.Text,
			Signature: signature(src[ident.Offset:events[last-1].End]),
			Position: types.Position{
				File:   file,
				Line:   first.Pos.Line,
				Column: first.Pos.Column,
			},
			Doc: docComment(events, i, file),
		})

		i = last - 1
	}

	return bindings
}

// docComment collects the comment attached to the identifier at events[i]
func docComment(events []Event, i int, file string) *types.Comment {
	if i == 0 {
		return nil
	}

	ident := events[i]
	nearest := events[i-1]
	if nearest.Kind != EventComment || !nearest.OwnLine {
		return nil
	}
	if nearest.EndLine != ident.Pos.Line && nearest.EndLine != ident.Pos.Line-1 {
		return nil
	}

	if nearest.Style == types.CommentBlock {
		return &types.Comment{
			Style:   types.CommentBlock,
			Start:   withFile(nearest.Pos, file),
			EndLine: nearest.EndLine,
			Lines:   strings.Split(nearest.Text, "\n"),
		}
	}

	// Merge line comments backwards while they sit on consecutive lines
	start := i - 1
	for start > 0 {
		prev := events[start-1]
		if prev.Kind != EventComment || prev.Style != types.CommentLine || !prev.OwnLine {
			break
		}
		if prev.EndLine != events[start].Pos.Line-1 {
			break
		}
		start--
	}

	lines := make([]string, 0, i-start)
	for _, ev := range events[start:i] {
		lines = append(lines, ev.Text)
	}

	return &types.Comment{
		Style:   types.CommentLine,
		Start:   withFile(events[start].Pos, file),
		EndLine: nearest.EndLine,
		Lines:   lines,
	}
}

// signature collapses whitespace runs in the binding head and marks the
// elided body
func signature(head []byte) string {
	return strings.Join(strings.Fields(string(head)), " ") + " ..."
}

func withFile(p types.Position, file string) types.Position {
	p.File = file
	return p
}
