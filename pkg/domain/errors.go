package domain

import "errors"

// ErrConversationNotFound is returned when a conversation ID cannot be found in the store.
var ErrConversationNotFound = errors.New("conversation not found")

// ErrDialogNotFound is returned when a frame references a dialog name
// missing from the registry.
var ErrDialogNotFound = errors.New("dialog not found")

// ErrNoActiveDialog is returned when a turn tries to continue an empty stack.
var ErrNoActiveDialog = errors.New("no active dialog")
