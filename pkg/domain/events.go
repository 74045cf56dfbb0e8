package domain

import (
	"context"
	"time"
)

// InterruptKind is the per-turn interruption decision. It is computed once
// per message turn and never persisted.
type InterruptKind string

const (
	InterruptNone   InterruptKind = "none"
	InterruptCancel InterruptKind = "cancel"
	InterruptHelp   InterruptKind = "help"
	InterruptLogout InterruptKind = "logout"
)

// TurnEvent describes one processed turn.
type TurnEvent struct {
	ConversationID string
	Intent         string
	Duration       time.Duration
	Err            error
}

// DialogEvent describes a dialog frame beginning or ending.
type DialogEvent struct {
	ConversationID string
	Dialog         string
}

// InterruptionEvent describes a routed interruption.
type InterruptionEvent struct {
	ConversationID string
	Kind           InterruptKind
	Score          float64
}

// PromptEvent describes a retry-bounded prompt hitting its ceiling.
type PromptEvent struct {
	ConversationID string
	PromptID       string
	Attempts       int
}

// LifecycleHooks defines callbacks for engine observability. Any field may
// be nil.
type LifecycleHooks struct {
	OnTurnStart     func(context.Context, *TurnEvent)
	OnTurnEnd       func(context.Context, *TurnEvent)
	OnDialogBegin   func(context.Context, *DialogEvent)
	OnDialogEnd     func(context.Context, *DialogEvent)
	OnInterruption  func(context.Context, *InterruptionEvent)
	OnRetryExceeded func(context.Context, *PromptEvent)
}
