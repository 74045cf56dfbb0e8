package domain

// ActivityType classifies inbound turns and outbound activities.
type ActivityType string

const (
	// ActivityMessage carries free-form user text (or a rendered bot reply).
	ActivityMessage ActivityType = "message"
	// ActivityEvent carries a structured payload from the transport
	// (programmatic actions that pre-fill slots).
	ActivityEvent ActivityType = "event"
	// ActivityEndOfConversation signals the hosting assistant that an
	// embedded skill has finished.
	ActivityEndOfConversation ActivityType = "endOfConversation"
)

// Turn is one inbound unit of conversation as delivered by the transport.
type Turn struct {
	Type   ActivityType   `json:"type"`
	Text   string         `json:"text,omitempty"`
	Value  map[string]any `json:"value,omitempty"`
	Locale string         `json:"locale,omitempty"`
}

// MessageTurn builds a plain text message turn.
func MessageTurn(text string) Turn {
	return Turn{Type: ActivityMessage, Text: text}
}

// EventTurn builds a structured event turn (slot pre-fill).
func EventTurn(value map[string]any) Turn {
	return Turn{Type: ActivityEvent, Value: value}
}

// Recognition is the NLU collaborator's verdict for one message turn.
// Entities are kept loosely typed; skills digest them into slots.
type Recognition struct {
	Intent   string         `json:"intent"`
	Score    float64        `json:"score"`
	Entities map[string]any `json:"entities,omitempty"`
}

// Canonical interruption intents. Recognizers that use different labels
// should map onto these before handing the result to the engine.
const (
	IntentCancel = "Cancel"
	IntentHelp   = "Help"
	IntentLogout = "Logout"
)
