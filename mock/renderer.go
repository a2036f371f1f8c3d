package mock

import "github.com/fwojciec/logcolor"

// Compile-time interface verification.
var (
	_ logcolor.Renderer     = (*Renderer)(nil)
	_ logcolor.Preprocessor = (*Preprocessor)(nil)
)

// Renderer is a mock implementation of logcolor.Renderer.
type Renderer struct {
	RenderFn func(res logcolor.ParseResult, theme logcolor.Theme) string
}

func (r *Renderer) Render(res logcolor.ParseResult, theme logcolor.Theme) string {
	return r.RenderFn(res, theme)
}

// Preprocessor is a mock implementation of logcolor.Preprocessor.
type Preprocessor struct {
	ProcessFn func(input string) string
}

func (p *Preprocessor) Process(input string) string {
	return p.ProcessFn(input)
}
