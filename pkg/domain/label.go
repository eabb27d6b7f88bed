package domain

import (
	"fmt"
	"strings"
)

// EdgeLabel is the structured form of an edge label.
//
// The textual grammar accepted by ParseEdgeLabel is:
//
//	name
//	name param
//	name[guard]
//	name/action
//	name param [guard] /action
//
// Guard and action bodies are kept verbatim; they are interpreted by the extended machine.
type EdgeLabel struct {
	Raw       string `json:"raw" yaml:"raw"`
	Name      string `json:"name" yaml:"name"`
	Parameter string `json:"parameter,omitempty" yaml:"parameter,omitempty"`
	Guard     string `json:"guard,omitempty" yaml:"guard,omitempty"`
	Action    string `json:"action,omitempty" yaml:"action,omitempty"`
}

// ParseEdgeLabel splits a raw edge label into its parts.
func ParseEdgeLabel(raw string) (EdgeLabel, error) {
	label := EdgeLabel{Raw: raw}
	text := strings.TrimSpace(raw)
	if text == "" {
		return label, nil
	}

	head := text
	if idx := indexOutsideBrackets(text, '/'); idx >= 0 {
		label.Action = strings.TrimSpace(text[idx+1:])
		head = text[:idx]
	}

	if open := strings.IndexByte(head, '['); open >= 0 {
		end := strings.LastIndexByte(head, ']')
		if end < open {
			return label, fmt.Errorf("edge label %q: unterminated guard", raw)
		}
		if rest := strings.TrimSpace(head[end+1:]); rest != "" {
			return label, fmt.Errorf("edge label %q: unexpected text %q after guard", raw, rest)
		}
		label.Guard = strings.TrimSpace(head[open+1 : end])
		head = head[:open]
	} else if strings.IndexByte(head, ']') >= 0 {
		return label, fmt.Errorf("edge label %q: unbalanced ']'", raw)
	}

	head = strings.TrimSpace(head)
	if name, param, found := strings.Cut(head, " "); found {
		label.Name = name
		label.Parameter = strings.TrimSpace(param)
	} else {
		label.Name = head
	}
	return label, nil
}

// Navigate returns the label handed to executors: the name followed by its parameter, if any.
func (l EdgeLabel) Navigate() string {
	if l.Parameter == "" {
		return l.Name
	}
	return l.Name + " " + l.Parameter
}

// String renders the label back into its textual grammar.
func (l EdgeLabel) String() string {
	var sb strings.Builder
	sb.WriteString(l.Navigate())
	if l.Guard != "" {
		sb.WriteString("[" + l.Guard + "]")
	}
	if l.Action != "" {
		sb.WriteString("/" + l.Action)
	}
	return sb.String()
}

func indexOutsideBrackets(s string, target byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case target:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
