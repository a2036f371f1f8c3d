package logcolor

// StyleSpec is a theme value: a shorthand string, a style record, or a
// callback. The zero value means "no style".
type StyleSpec struct {
	Shorthand string       // Pipe-joined segments, e.g. "red|bold" or "#ff0000|underline"
	Record    *StyleRecord // Structured alternative to Shorthand
	Func      StyleFunc    // Computes a spec from the token being rendered
	Unset     bool         // Marks an override that deletes the inherited entry
}

// Shorthand returns a spec from a pipe-joined shorthand string.
func Shorthand(s string) StyleSpec {
	return StyleSpec{Shorthand: s}
}

// Record returns a spec from a structured style record.
func Record(r StyleRecord) StyleSpec {
	return StyleSpec{Record: &r}
}

// Callback returns a spec computed per token.
func Callback(fn StyleFunc) StyleSpec {
	return StyleSpec{Func: fn}
}

// Unset returns the override marker that removes a key from a parent theme.
func Unset() StyleSpec {
	return StyleSpec{Unset: true}
}

// IsZero reports whether the spec carries no style.
func (s StyleSpec) IsZero() bool {
	return s.Shorthand == "" && s.Record == nil && s.Func == nil
}

// StyleRecord is the structured form of a style.
type StyleRecord struct {
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	Background string `json:"bgColor,omitempty" yaml:"bgColor,omitempty"`
	Bold       bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline  bool   `json:"underline,omitempty" yaml:"underline,omitempty"`
}

// TokenContext is what a StyleFunc sees.
type TokenContext struct {
	Value     string
	TokenType string
}

// StyleFunc computes a style for one token. Returned callbacks are ignored.
type StyleFunc func(ctx TokenContext) StyleSpec

// Palette is a named, registrable theme.
type Palette struct {
	Name        string
	Description string
	Styles      map[string]StyleSpec
}
