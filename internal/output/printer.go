package output

import (
	"io"
	"os"
	"strings"
	"sync"
)

// Printer writes status lines and rendered blocks to the terminal. Writes are serialized, so
// the background prompt goroutine and the input loop can share one printer.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles StyleProvider
	silent bool
}

// NewPrinter creates a plain printer on stdout, adjusted by opts.
func NewPrinter(opts ...Option) *Printer {
	p := &Printer{w: os.Stdout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Println writes text unstyled.
func (p *Printer) Println(text string) { p.line(SemanticPlain, text) }

// Info writes an informational line.
func (p *Printer) Info(text string) { p.line(SemanticInfo, text) }

// Success writes a confirmation line.
func (p *Printer) Success(text string) { p.line(SemanticSuccess, text) }

// Warning writes a warning line.
func (p *Printer) Warning(text string) { p.line(SemanticWarning, text) }

// Error writes an error line.
func (p *Printer) Error(text string) { p.line(SemanticError, text) }

// Muted writes a de-emphasized line.
func (p *Printer) Muted(text string) { p.line(SemanticMuted, text) }

// Block writes text that is already rendered, such as a transcript or the conversation list.
func (p *Printer) Block(text string) {
	p.write(text)
}

// StyleProvider returns the theme in use, or PlainStyles when output is unstyled. Renderers
// use it so blocks match the status lines around them.
func (p *Printer) StyleProvider() StyleProvider {
	if p.styles == nil {
		return PlainStyles{}
	}
	return p.styles
}

// Styled reports whether a theme is applied.
func (p *Printer) Styled() bool {
	return p.styles != nil
}

func (p *Printer) line(semantic SemanticType, text string) {
	p.write(p.StyleProvider().GetStyle(string(semantic)).Render(text))
}

func (p *Printer) write(text string) {
	if p.silent {
		return
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.w, text)
}
