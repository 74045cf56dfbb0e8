package domain

// Activity is one outbound unit emitted by the engine. Rendering (cards,
// speech strings, localization) is the channel's job; the engine only
// supplies a template identifier, structured data and a plain-text fallback.
type Activity struct {
	Type     ActivityType   `json:"type"`
	Template string         `json:"template,omitempty"`
	Text     string         `json:"text,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Message builds a plain outbound message with a template id.
func Message(template, text string) Activity {
	return Activity{Type: ActivityMessage, Template: template, Text: text}
}

// EndOfConversation builds the terminal signal for embedded skills.
func EndOfConversation() Activity {
	return Activity{Type: ActivityEndOfConversation}
}

// Well-known template identifiers emitted by the engine itself.
// Skills add their own.
const (
	TemplateCancelled     = "core.cancelled"
	TemplateHelp          = "core.help"
	TemplateSignedOut     = "core.signed_out"
	TemplateError         = "core.error"
	TemplateAccessDenied  = "core.access_denied"
	TemplateRetryExceeded = "core.retry_exceeded"
	TemplateFirstPage     = "core.already_first_page"
	TemplateLastPage      = "core.already_last_page"
)

// Prompt is a question posed to the user. Issuing a prompt suspends the
// active dialog until the next inbound turn.
type Prompt struct {
	// ID keys the retry counter for this prompt. Prompts that never retry
	// may leave it empty.
	ID       string         `json:"id,omitempty"`
	Template string         `json:"template,omitempty"`
	Text     string         `json:"text,omitempty"`
	Data     map[string]any `json:"data,omitempty"`

	// NonInterruptible opts this prompt out of cancel/help preemption,
	// so answers like "no" reach the dialog instead of the router.
	NonInterruptible bool `json:"non_interruptible,omitempty"`
}

// Activity converts the prompt into its outbound form.
func (p Prompt) Activity() Activity {
	return Activity{
		Type:     ActivityMessage,
		Template: p.Template,
		Text:     p.Text,
		Data:     p.Data,
	}
}
