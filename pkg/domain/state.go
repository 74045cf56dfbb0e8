package domain

// Candidate is one disambiguation option: a contact, a room, a point of
// interest, a route. The payload is domain-specific and opaque to the core.
type Candidate struct {
	Name    string         `json:"name"`
	Key     string         `json:"key,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Frame is one activation record on the dialog stack. Frames must survive
// turn boundaries, so they carry names and indices, never function values.
type Frame struct {
	// Dialog names the registered step list this frame executes.
	Dialog string `json:"dialog"`
	// Step is the zero-based index of the next step to run.
	Step int `json:"step"`
	// Options is the value passed at begin time, visible to every step.
	Options map[string]any `json:"options,omitempty"`
	// Waiting is true while the frame is suspended on a prompt.
	Waiting bool `json:"waiting,omitempty"`
	// Prompt is the most recently issued prompt, kept so Help can re-ask
	// and so the interruption router can honor its capability flag.
	Prompt *Prompt `json:"prompt,omitempty"`
}

// State is the per-conversation state object. It is created on the first
// turn, mutated by every step, and persisted between turns that may be
// separated by seconds or days.
type State struct {
	ConversationID string `json:"conversation_id"`

	// Slots holds the values collected so far, keyed per skill
	// (destination, time range, subject, ...).
	Slots map[string]any `json:"slots"`

	// Candidates is the ordered result of the most recent search.
	// It is always cleared together with PageIndex; a selection must
	// never outlive the list it points into.
	Candidates []Candidate `json:"candidates,omitempty"`
	PageIndex  int         `json:"page_index,omitempty"`

	// Retries counts failed validations per prompt id.
	Retries map[string]int `json:"retries,omitempty"`

	// Stack is the active dialog stack, top at the end.
	Stack []Frame `json:"stack,omitempty"`
}

// NewState creates a clean state for a conversation.
func NewState(conversationID string) *State {
	return &State{
		ConversationID: conversationID,
		Slots:          make(map[string]any),
		Retries:        make(map[string]int),
	}
}

// SetCandidates installs a fresh candidate list and rewinds pagination.
func (s *State) SetCandidates(list []Candidate) {
	s.Candidates = list
	s.PageIndex = 0
}

// ClearCandidates consumes the candidate list and its page index together.
func (s *State) ClearCandidates() {
	s.Candidates = nil
	s.PageIndex = 0
}

// Top returns the active frame, or nil if the stack is empty.
func (s *State) Top() *Frame {
	if len(s.Stack) == 0 {
		return nil
	}
	return &s.Stack[len(s.Stack)-1]
}

// Reset wipes everything collected during the conversation: slots,
// candidates, retry counters and the dialog stack. Used on completion,
// cancellation and unrecoverable errors so the next turn starts clean.
func (s *State) Reset() {
	s.Slots = make(map[string]any)
	s.ClearCandidates()
	s.Retries = make(map[string]int)
	s.Stack = nil
}

// Clone returns a copy safe for independent mutation. Nested slot values
// are shared; stores that need full isolation serialize instead.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Slots = make(map[string]any, len(s.Slots))
	for k, v := range s.Slots {
		next.Slots[k] = v
	}
	next.Retries = make(map[string]int, len(s.Retries))
	for k, v := range s.Retries {
		next.Retries[k] = v
	}
	next.Candidates = append([]Candidate(nil), s.Candidates...)
	next.Stack = append([]Frame(nil), s.Stack...)
	return &next
}
