package parset

import (
	"fmt"
	"io"
	"strings"
)

// String renders a short-format diagnostic table of the parameters:
// key, current value, default, declared kinds, and callable flag.
// Nested sets are summarized as "see below" and appended as their own
// tables. Diagnostic only; never fails on a valid instance.
func (p *ParSet) String() string {
	return p.tableString(p.section)
}

func (p *ParSet) tableString(header string) string {
	rows := make([][]string, 0, len(p.keys)+1)
	rows = append(rows, []string{"Parameter", "Value", "Default", "Type", "Callable"})

	var nested []string
	for _, k := range p.keys {
		v := p.data[k]
		valStr, defStr := "None", "None"
		if sub, ok := v.(*ParSet); ok {
			subHeader := k
			if header != "" {
				subHeader = header + ":" + k
			}
			nested = append(nested, sub.tableString(subHeader))
			valStr, defStr = "see below", "see below"
		} else {
			if v != nil {
				valStr = v.configValue()
			}
			if d := p.def[k]; d != nil {
				defStr = d.configValue()
			}
		}
		rows = append(rows, []string{
			k, valStr, defStr, kindNames(p.kinds[k]), fmt.Sprintf("%t", p.canCall[k]),
		})
	}

	out := tableLines(rows)
	if header != "" {
		out = header + "\n" + out
	}
	if len(nested) > 0 {
		out += "\n" + strings.Join(nested, "\n")
	}

	return out
}

// tableLines formats rows with equally-spaced, left-justified columns,
// a header row, and a dashed delimiter.
func tableLines(rows [][]string) string {
	ncol := len(rows[0])
	width := make([]int, ncol)
	for _, r := range rows {
		for j, cell := range r {
			if len(cell) > width[j] {
				width[j] = len(cell)
			}
		}
	}

	format := func(r []string) string {
		parts := make([]string, ncol)
		for j, cell := range r {
			parts[j] = cell + strings.Repeat(" ", width[j]-len(cell))
		}

		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, format(rows[0]))
	lines = append(lines, strings.Repeat("-", len(lines[0])))
	for _, r := range rows[1:] {
		lines = append(lines, format(r))
	}

	return strings.Join(lines, "\n") + "\n"
}

// infoWidth is the wrap width for the long-format Info rendering.
const infoWidth = 80

// Info writes a long-format description of every parameter to w,
// including options, kinds, and the full description text. Nested sets
// are written recursively with colon-joined headers.
func (p *ParSet) Info(w io.Writer) {
	p.info(w, "")
}

func (p *ParSet) info(w io.Writer, base string) {
	for _, k := range p.keys {
		if sub, ok := p.data[k].(*ParSet); ok {
			next := k
			if base != "" {
				next = base + ":" + k
			}
			sub.info(w, next)
			continue
		}

		header := k
		if base != "" {
			header = base + ":" + k
		}
		fmt.Fprintln(w, header)

		valStr := "None"
		if v := p.data[k]; v != nil {
			valStr = v.configValue()
		}
		defStr := "None"
		if d := p.def[k]; d != nil {
			defStr = d.configValue()
		}
		optStr := "None"
		if opts := p.opts[k]; len(opts) > 0 {
			parts := make([]string, len(opts))
			for i, o := range opts {
				parts[i] = o.configValue()
			}
			optStr = strings.Join(parts, ", ")
		}
		typStr := "None"
		if kinds := p.kinds[k]; len(kinds) > 0 {
			typStr = kindNames(kinds)
		}

		wrapPrint(w, "        Value: ", valStr)
		wrapPrint(w, "      Default: ", defStr)
		wrapPrint(w, "      Options: ", optStr)
		wrapPrint(w, "  Valid Types: ", typStr)
		wrapPrint(w, "     Callable: ", fmt.Sprintf("%t", p.canCall[k]))
		wrapPrint(w, "  Description: ", p.descr[k])
		fmt.Fprintln(w)
	}
}

// wrapPrint writes head followed by text wrapped to the info width,
// with continuation lines indented under the head.
func wrapPrint(w io.Writer, head, text string) {
	lines := wrapText(text, infoWidth-len(head))
	if len(lines) == 0 {
		fmt.Fprintln(w, head+"None")

		return
	}
	tail := strings.Repeat(" ", len(head))
	fmt.Fprintln(w, head+lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintln(w, tail+l)
	}
}
