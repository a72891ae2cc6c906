// Package lattice implements the totally ordered security lattices used to
// classify values: a finite chain of named labels with join and flow checks.
package lattice

import (
	"fmt"
	"strings"
)

// Label is one classification of a lattice. The zero value is None, the
// absence of a label, which is distinct from the bottom element but ranks
// with it in every comparison.
type Label struct {
	name string
	rank int
}

// None is the unlabeled classification.
var None = Label{}

// IsNone reports whether l carries no classification.
func (l Label) IsNone() bool { return l.rank == 0 }

// Name returns the label's name ("" for None).
func (l Label) Name() string { return l.name }

// Rank returns the 1-based position of the label in its lattice, 0 for None.
func (l Label) Rank() int { return l.rank }

func (l Label) String() string {
	if l.rank == 0 {
		return "none"
	}
	return l.name
}

func (l Label) effective() int {
	if l.rank == 0 {
		return 1
	}
	return l.rank
}

// Join returns the least upper bound of a and b. Joining with None returns
// the other operand unchanged.
func Join(a, b Label) Label {
	if a.rank >= b.rank {
		return a
	}
	return b
}

// JoinAll folds Join over labels, starting from None.
func JoinAll(labels ...Label) Label {
	out := None
	for _, l := range labels {
		out = Join(out, l)
	}
	return out
}

// Leq reports whether information classified a may flow to a location
// classified b.
func Leq(a, b Label) bool { return a.effective() <= b.effective() }

// Less reports whether a is strictly below b.
func Less(a, b Label) bool { return a.effective() < b.effective() }

// Compare returns -1, 0 or 1 as a ranks below, with or above b.
func Compare(a, b Label) int {
	switch ea, eb := a.effective(), b.effective(); {
	case ea < eb:
		return -1
	case ea > eb:
		return 1
	default:
		return 0
	}
}

// Lattice is a chain of labels ordered from least to most secret.
type Lattice struct {
	labels []Label
	byName map[string]Label
}

// New builds a lattice whose labels are ordered as given, least secret first.
func New(names ...string) (*Lattice, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("lattice: at least one label is required")
	}
	l := &Lattice{
		labels: make([]Label, 0, len(names)),
		byName: make(map[string]Label, len(names)),
	}
	var errs ValidationError
	for i, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("labels[%d] must be a non-empty string", i))
			continue
		}
		if _, dup := l.byName[name]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("labels[%d] duplicates %q", i, name))
			continue
		}
		label := Label{name: name, rank: len(l.labels) + 1}
		l.labels = append(l.labels, label)
		l.byName[name] = label
	}
	if len(errs.Issues) > 0 {
		return nil, &errs
	}
	return l, nil
}

// MustNew is New for statically known label sets.
func MustNew(names ...string) *Lattice {
	l, err := New(names...)
	if err != nil {
		panic(err)
	}
	return l
}

// Default returns the two-point lattice L < H.
func Default() *Lattice {
	return MustNew("L", "H")
}

// Bottom returns the least secret label.
func (l *Lattice) Bottom() Label { return l.labels[0] }

// Top returns the most secret label.
func (l *Lattice) Top() Label { return l.labels[len(l.labels)-1] }

// Lookup finds a label by name.
func (l *Lattice) Lookup(name string) (Label, bool) {
	label, ok := l.byName[name]
	return label, ok
}

// Names returns the label names, least secret first.
func (l *Lattice) Names() []string {
	out := make([]string, len(l.labels))
	for i, label := range l.labels {
		out[i] = label.name
	}
	return out
}

// Len returns the number of labels.
func (l *Lattice) Len() int { return len(l.labels) }

// IsBottom reports whether k carries no more information than the bottom
// element.
func (l *Lattice) IsBottom(k Label) bool {
	return k.effective() == 1
}

// ValidationError aggregates lattice definition failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "lattice: invalid definition"
	}
	var b strings.Builder
	b.WriteString("lattice validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}
