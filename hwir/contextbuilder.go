package hwir

// ContextBuilder configures a new Context before any module is minted,
// following the same value-receiver fluent pattern as the teacher's
// config.DeviceBuilder (WithEngine, WithFreq, WithWidth, ...): every
// With* method returns a modified copy and Build produces the final
// value, so a partially-configured builder can be reused or branched
// without aliasing.
type ContextBuilder struct {
	name         string
	defaultWidth int
}

// WithName attaches a human-readable name to the built Context, used
// only for diagnostics (cmd/hlsc logs it alongside each compiled
// module's name).
func (b ContextBuilder) WithName(name string) ContextBuilder {
	b.name = name
	return b
}

// WithDefaultWidth sets the bit width substituted for an ssair.Operation
// that omits an explicit width. Zero (the unset value) means "use
// Context's built-in default of 32".
func (b ContextBuilder) WithDefaultWidth(width int) ContextBuilder {
	b.defaultWidth = width
	return b
}

// Build constructs the Context.
func (b ContextBuilder) Build() *Context {
	ctx := NewContext()
	ctx.Name = b.name
	if b.defaultWidth > 0 {
		ctx.DefaultWidth = b.defaultWidth
	}
	return ctx
}
