package parset

import (
	"fmt"
	"io"
	"strings"
)

// configWidth is the full display width allowed for comment lines in
// rendered configuration output.
const configWidth = 72

// indentStep is the per-level indentation of configuration sections.
const indentStep = "    "

// ConfigOptions controls configuration rendering.
//
// Fields:
//   - SectionName    — name for the top-level section; falls back to the
//     set's own section name when empty.
//   - SectionComment — comment above the top-level section; falls back
//     to the set's own section comment when empty.
//   - Level          — nesting level; sets the indentation and the
//     number of square brackets around section names.
//   - ExcludeDefaults — omit parameters equal to their defaults.
//   - IncludeDescr    — emit parameter descriptions as '#' comments.
type ConfigOptions struct {
	SectionName     string
	SectionComment  string
	Level           int
	ExcludeDefaults bool
	IncludeDescr    bool
}

// ConfigLines renders the set as the lines of a bracketed configuration
// section. Nested sets become nested sections (bracket depth = nesting
// level), and lists of sets become indexed sub-sections with a
// zero-padded numeric suffix. The output is deterministic: parameters
// appear in key insertion order. An empty slice is returned when the
// section would carry no content.
func (p *ParSet) ConfigLines(o ConfigOptions) []string {
	name := o.SectionName
	if name == "" {
		name = p.section
	}
	comment := o.SectionComment
	if comment == "" {
		comment = p.comment
	}

	sectionIndent := strings.Repeat(indentStep, o.Level)
	componentIndent := sectionIndent + indentStep

	var lines []string
	if comment != "" {
		lines = append(lines, commentLines(comment, sectionIndent)...)
	}
	lines = append(lines, sectionIndent+
		strings.Repeat("[", o.Level+1)+name+strings.Repeat("]", o.Level+1))
	minLines := len(lines)

	// Plain parameters and indexed sub-section lists first, in key order.
	for _, k := range p.keys {
		v := p.data[k]
		if _, isSet := v.(*ParSet); isSet {
			continue
		}

		if lst, isList := v.(List); isList && len(lst) > 0 {
			ndig := digits(len(lst))
			for i, sub := range lst {
				idx := fmt.Sprintf("%0*d", ndig, i+1)
				subComment := ""
				if o.IncludeDescr && p.descr[k] != "" {
					subComment = p.descr[k] + ": " + idx
				}
				lines = append(lines, sub.ConfigLines(ConfigOptions{
					SectionName:     k + idx,
					SectionComment:  subComment,
					Level:           o.Level + 1,
					ExcludeDefaults: o.ExcludeDefaults,
					IncludeDescr:    o.IncludeDescr,
				})...)
			}
			continue
		}

		if o.IncludeDescr && p.descr[k] != "" {
			lines = append(lines, commentLines(p.descr[k], componentIndent)...)
		}
		if o.ExcludeDefaults && valuesEqual(v, p.def[k]) {
			continue
		}
		val := "None"
		if v != nil {
			val = v.configValue()
		}
		lines = append(lines, componentIndent+k+" = "+val)
	}

	// Nested sets as subsections afterwards.
	for _, k := range p.keys {
		sub, isSet := p.data[k].(*ParSet)
		if !isSet {
			continue
		}
		subComment := ""
		if o.IncludeDescr {
			subComment = p.descr[k]
		}
		lines = append(lines, sub.ConfigLines(ConfigOptions{
			SectionName:     k,
			SectionComment:  subComment,
			Level:           o.Level + 1,
			ExcludeDefaults: o.ExcludeDefaults,
			IncludeDescr:    o.IncludeDescr,
		})...)
	}

	if len(lines) <= minLines {
		return nil
	}

	return lines
}

// WriteConfig writes the configuration rendering of the set to w.
//
// If every member of the set is itself a nested ParSet (or unset), each
// member is written as its own top-level section. Otherwise a top-level
// section name is required, either via o.SectionName or the set's own
// section name; ErrNoSection is returned when neither is available.
func (p *ParSet) WriteConfig(w io.Writer, o ConfigOptions) error {
	allSets := true
	for _, k := range p.keys {
		if p.data[k] == nil {
			continue
		}
		if _, ok := p.data[k].(*ParSet); !ok {
			allSets = false
			break
		}
	}

	var lines []string
	if allSets {
		for _, k := range p.keys {
			sub, ok := p.data[k].(*ParSet)
			if !ok {
				continue
			}
			subComment := ""
			if o.IncludeDescr {
				subComment = p.descr[k]
			}
			lines = append(lines, sub.ConfigLines(ConfigOptions{
				SectionName:     k,
				SectionComment:  subComment,
				Level:           o.Level,
				ExcludeDefaults: o.ExcludeDefaults,
				IncludeDescr:    o.IncludeDescr,
			})...)
		}
	} else {
		if o.SectionName == "" && p.section == "" {
			return ErrNoSection
		}
		lines = p.ConfigLines(o)
	}

	if len(lines) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")

	return err
}

// commentLines wraps comment into '# '-prefixed lines fitting the fixed
// configuration width under the given indent.
func commentLines(comment, indent string) []string {
	head := indent + "# "
	body := wrapText(comment, configWidth-len(head))
	out := make([]string, len(body))
	for i, l := range body {
		out[i] = head + l
	}

	return out
}

// wrapText greedily wraps text into lines of at most width characters,
// breaking on spaces. Words longer than width occupy their own line.
func wrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) <= width {
			cur += " " + w
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	lines = append(lines, cur)

	return lines
}

// digits returns the number of decimal digits needed to render n items,
// i.e. floor(log10(n)) + 1. This keeps zero-padded indexed sub-section
// names in the same order lexicographically and numerically.
func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}

	return d
}
