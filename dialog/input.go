package dialog

// InputKind discriminates the shapes of a single conversation turn.
type InputKind int

const (
	// KindText is a free-text message.
	KindText InputKind = iota
	// KindButton is a button press carrying an opaque token.
	KindButton
	// KindPhoto is a photo upload carrying a transport file reference.
	KindPhoto
	// KindSkip is the explicit skip marker for optional steps.
	KindSkip
)

// String returns the kind name used in logs.
func (k InputKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindButton:
		return "button"
	case KindPhoto:
		return "photo"
	case KindSkip:
		return "skip"
	}
	return "unknown"
}

// Input is one normalized inbound event for a user turn.
type Input struct {
	Kind    InputKind
	Text    string
	Token   string
	PhotoID string
}

// TextInput wraps a free-text message.
func TextInput(text string) Input {
	return Input{Kind: KindText, Text: text}
}

// ButtonInput wraps a button press token.
func ButtonInput(token string) Input {
	return Input{Kind: KindButton, Token: token}
}

// PhotoInput wraps a photo file reference.
func PhotoInput(photoID string) Input {
	return Input{Kind: KindPhoto, PhotoID: photoID}
}

// SkipInput is the skip marker.
func SkipInput() Input {
	return Input{Kind: KindSkip}
}

// TokenCancel aborts the active flow from any step.
const TokenCancel = "cancel"

// isCancel reports whether the event is the global cancel trigger.
func isCancel(in Input) bool {
	if in.Kind == KindButton && in.Token == TokenCancel {
		return true
	}
	return in.Kind == KindText && in.Text == "/cancel"
}
