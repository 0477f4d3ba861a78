package output

import "io"

// Option configures a Printer.
type Option func(*Printer)

// WithWriter sends output to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(p *Printer) {
		if w != nil {
			p.w = w
		}
	}
}

// WithStyles styles output through a theme. Unavailable providers are ignored.
func WithStyles(styles StyleProvider) Option {
	return func(p *Printer) {
		if styles != nil && styles.IsAvailable() {
			p.styles = styles
		}
	}
}

// Plain disables styling. Status lines keep their symbol prefixes, which makes the output
// stable enough to assert on.
func Plain() Option {
	return func(p *Printer) {
		p.styles = nil
	}
}

// Silent discards everything.
func Silent() Option {
	return func(p *Printer) {
		p.silent = true
	}
}
