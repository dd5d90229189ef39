package parset

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigNode is one parsed section of a bracketed configuration file:
// an ordered list of key/value assignments plus nested subsections.
// The root node returned by ParseConfig has an empty name and holds the
// top-level sections in Subs.
type ConfigNode struct {
	Name string
	Vals []ConfigVal
	Subs []*ConfigNode
}

// ConfigVal is a single "key = value" assignment with the value kept as
// raw text; coercion to a typed Value happens against a schema.
type ConfigVal struct {
	Key string
	Raw string
}

// Sub returns the child section with the given name, or nil.
func (n *ConfigNode) Sub(name string) *ConfigNode {
	for _, s := range n.Subs {
		if s.Name == name {
			return s
		}
	}

	return nil
}

// Val returns the raw text of the assignment to key and whether one
// exists in this section.
func (n *ConfigNode) Val(key string) (string, bool) {
	for _, v := range n.Vals {
		if v.Key == key {
			return v.Raw, true
		}
	}

	return "", false
}

// ParseConfig parses the lines of a bracketed configuration file into a
// section tree. Section depth is given by the bracket count of the
// header ("[name]", "[[name]]", ...); '#' lines and blank lines are
// ignored. Returns ErrConfigSyntax for malformed headers, assignments
// outside any section, or section depth jumps.
func ParseConfig(lines []string) (*ConfigNode, error) {
	root := &ConfigNode{}
	// stack[d] is the open section at depth d+1.
	stack := []*ConfigNode{}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			depth := 0
			for depth < len(line) && line[depth] == '[' {
				depth++
			}
			if !strings.HasSuffix(line, strings.Repeat("]", depth)) ||
				len(line) <= 2*depth {
				return nil, fmt.Errorf("%w: line %d: %q", ErrConfigSyntax, i+1, line)
			}
			name := line[depth : len(line)-depth]
			if depth > len(stack)+1 {
				return nil, fmt.Errorf("%w: line %d: section depth jump", ErrConfigSyntax, i+1)
			}
			node := &ConfigNode{Name: name}
			stack = stack[:depth-1]
			parent := root
			if depth > 1 {
				parent = stack[depth-2]
			}
			parent.Subs = append(parent.Subs, node)
			stack = append(stack, node)
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: line %d: %q", ErrConfigSyntax, i+1, line)
		}
		if len(stack) == 0 {
			return nil, fmt.Errorf("%w: line %d: assignment outside a section", ErrConfigSyntax, i+1)
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: empty key", ErrConfigSyntax, i+1)
		}
		cur := stack[len(stack)-1]
		cur.Vals = append(cur.Vals, ConfigVal{Key: key, Raw: val})
	}

	return root, nil
}

// SetFromConfig applies the assignments of node to the set, coercing
// raw text per the declared kinds of each key, and recurses into
// subsections for nested sets and indexed set lists. Assignments to
// unknown keys or subsections without a schema counterpart return
// ErrUnknownKey; coercion failures return ErrWrongType.
func (p *ParSet) SetFromConfig(node *ConfigNode) error {
	for _, v := range node.Vals {
		if !p.Has(v.Key) {
			return fmt.Errorf("%w: %q in section %q", ErrUnknownKey, v.Key, node.Name)
		}
		if v.Raw == "None" {
			if err := p.Set(v.Key, nil); err != nil {
				return err
			}
			continue
		}
		val, err := coerce(v.Raw, p.kinds[v.Key])
		if err != nil {
			return fmt.Errorf("key %q: %w", v.Key, err)
		}
		if err := p.Set(v.Key, val); err != nil {
			return err
		}
	}

	for _, sub := range node.Subs {
		if p.Has(sub.Name) {
			nested, ok := p.data[sub.Name].(*ParSet)
			if !ok {
				return fmt.Errorf("%w: section %q is not a nested set", ErrWrongType, sub.Name)
			}
			if err := nested.SetFromConfig(sub); err != nil {
				return err
			}
			continue
		}

		// Indexed sub-section of a set list: name is key + zero-padded
		// 1-based index.
		key, idx, ok := splitIndexed(sub.Name)
		if ok && p.Has(key) {
			lst, isList := p.data[key].(List)
			if !isList || idx < 1 || idx > len(lst) {
				return fmt.Errorf("%w: section %q has no matching list entry", ErrUnknownKey, sub.Name)
			}
			if err := lst[idx-1].SetFromConfig(sub); err != nil {
				return err
			}
			continue
		}

		return fmt.Errorf("%w: section %q", ErrUnknownKey, sub.Name)
	}

	return nil
}

// splitIndexed splits a trailing decimal index off a section name.
func splitIndexed(name string) (key string, idx int, ok bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) || i == 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return "", 0, false
	}

	return name[:i], n, true
}

// coerce converts raw configuration text into a Value satisfying one of
// the declared kinds, trying kinds in declaration order. With no kind
// constraint the text is interpreted as int, float, bool, then string.
func coerce(raw string, kinds []Kind) (Value, error) {
	if len(kinds) == 0 {
		kinds = []Kind{KindInt, KindFloat, KindBool, KindString}
	}

	for _, k := range kinds {
		switch k {
		case KindBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				return Bool(b), nil
			}
		case KindInt:
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return Int(n), nil
			}
		case KindFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return Float(f), nil
			}
		case KindString:
			return String(raw), nil
		case KindInts:
			if vs, err := splitParse(raw, func(s string) (int64, error) {
				return strconv.ParseInt(s, 10, 64)
			}); err == nil {
				return Ints(vs), nil
			}
		case KindFloats:
			if vs, err := splitParse(raw, func(s string) (float64, error) {
				return strconv.ParseFloat(s, 64)
			}); err == nil {
				return Floats(vs), nil
			}
		case KindStrings:
			vs, _ := splitParse(raw, func(s string) (string, error) { return s, nil })

			return Strings(vs), nil
		case KindSet, KindList, KindFunc:
			// Not representable as a value line.
		}
	}

	return nil, fmt.Errorf("%w: cannot interpret %q as any of: %s",
		ErrWrongType, raw, kindNames(kinds))
}

// splitParse splits comma-separated text and parses every element.
func splitParse[T any](raw string, parse func(string) (T, error)) ([]T, error) {
	parts := strings.Split(raw, ",")
	out := make([]T, len(parts))
	for i, part := range parts {
		v, err := parse(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}
