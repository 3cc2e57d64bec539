// Package report builds the human-readable dimension summary printed after
// a build: derived sizes, lengths and hole positions as ordered labelled
// rows, with free-text notes and section headings. Reports render as plain
// text, as styled terminal output, or as a PDF build sheet.
package report

import (
	"fmt"
	"io"
	"strings"
)

// EntryKind classifies report rows.
type EntryKind int

const (
	EntryValue   EntryKind = iota // labelled numbers with a unit
	EntryText                     // labelled free text
	EntryNote                     // unlabelled note
	EntrySection                  // heading
)

// Entry is one report row.
type Entry struct {
	Kind      EntryKind
	Label     string
	Values    []float64
	Unit      string
	Precision int
	Text      string
}

// Formatted returns the row's value column.
func (e Entry) Formatted() string {
	switch e.Kind {
	case EntryValue:
		parts := make([]string, len(e.Values))
		for i, v := range e.Values {
			parts[i] = fmt.Sprintf("%.*f", e.Precision, v)
		}
		s := strings.Join(parts, " x ")
		if e.Unit != "" {
			s += " " + e.Unit
		}
		return s
	default:
		return e.Text
	}
}

// Report is an ordered dimension summary for one part family.
type Report struct {
	Title   string
	Entries []Entry
}

// New returns an empty report.
func New(title string) *Report {
	return &Report{Title: title}
}

// Add appends a labelled value shown to one decimal.
func (r *Report) Add(label string, v float64, unit string) *Report {
	return r.AddPrec(label, 1, unit, v)
}

// Dims appends a labelled "a x b x c" row shown to one decimal.
func (r *Report) Dims(label, unit string, vals ...float64) *Report {
	return r.AddPrec(label, 1, unit, vals...)
}

// AddPrec appends a labelled row with an explicit precision.
func (r *Report) AddPrec(label string, prec int, unit string, vals ...float64) *Report {
	vs := make([]float64, len(vals))
	copy(vs, vals)
	r.Entries = append(r.Entries, Entry{Kind: EntryValue, Label: label, Values: vs, Unit: unit, Precision: prec})
	return r
}

// Text appends a labelled free-text row.
func (r *Report) Text(label, format string, args ...any) *Report {
	r.Entries = append(r.Entries, Entry{Kind: EntryText, Label: label, Text: fmt.Sprintf(format, args...)})
	return r
}

// Note appends an unlabelled note.
func (r *Report) Note(format string, args ...any) *Report {
	r.Entries = append(r.Entries, Entry{Kind: EntryNote, Text: fmt.Sprintf(format, args...)})
	return r
}

// Section appends a heading.
func (r *Report) Section(title string) *Report {
	r.Entries = append(r.Entries, Entry{Kind: EntrySection, Text: title})
	return r
}

// Lookup returns the first row with label.
func (r *Report) Lookup(label string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Label == label && (e.Kind == EntryValue || e.Kind == EntryText) {
			return e, true
		}
	}
	return Entry{}, false
}

// Value returns the first number of the labelled row.
func (r *Report) Value(label string) (float64, bool) {
	e, ok := r.Lookup(label)
	if !ok || len(e.Values) == 0 {
		return 0, false
	}
	return e.Values[0], true
}

// Values returns all numbers of the labelled row.
func (r *Report) Values(label string) []float64 {
	e, _ := r.Lookup(label)
	return e.Values
}

func (r *Report) labelWidth() int {
	w := 0
	for _, e := range r.Entries {
		if n := len(e.Label); n > w && (e.Kind == EntryValue || e.Kind == EntryText) {
			w = n
		}
	}
	return w
}

const ruleWidth = 60

// Render writes the report as plain text.
func (r *Report) Render(w io.Writer) error {
	rule := strings.Repeat("=", ruleWidth)
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, r.Title)
	fmt.Fprintln(&b, rule)
	lw := r.labelWidth() + 1
	for _, e := range r.Entries {
		switch e.Kind {
		case EntrySection:
			fmt.Fprintln(&b, strings.Repeat("-", ruleWidth))
			fmt.Fprintln(&b, e.Text)
		case EntryNote:
			fmt.Fprintln(&b, e.Text)
		default:
			fmt.Fprintf(&b, "%-*s %s\n", lw, e.Label+":", e.Formatted())
		}
	}
	fmt.Fprintln(&b, rule)
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) String() string {
	var b strings.Builder
	_ = r.Render(&b)
	return b.String()
}
