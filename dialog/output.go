package dialog

// Option is one selectable choice in a menu output. Token is opaque to the
// transport; the engine and flow tables give it meaning.
type Option struct {
	Label string
	Token string
}

// Notice is a side-channel message addressed to the operator, produced by
// terminal actions (e.g. a new order was placed).
type Notice struct {
	Text string
}

// Output is what a turn produces for rendering. Zero or more of the optional
// parts may be set; Text is always meaningful.
type Output struct {
	Text    string
	Options []Option
	// PhotoID, when set, renders the output as a photo with Text as caption.
	PhotoID string
	// Notice is delivered to the operator out of band.
	Notice *Notice
	// Done marks successful flow completion, Cancelled an abort or
	// explicit cancellation. Both imply the conversation state is cleared.
	Done      bool
	Cancelled bool
}

// Prompt builds a plain text output.
func Prompt(text string) Output {
	return Output{Text: text}
}

// Menu builds a text output with selectable options.
func Menu(text string, options ...Option) Output {
	return Output{Text: text, Options: options}
}
