/*
Package domain contains the core domain models for the Parley engine.

It defines the fundamental entities of the dialog orchestration core: the
per-conversation State with its dialog stack, the closed StepResult variant
returned by waterfall steps, inbound Turns, outbound Activities and Prompts.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - State: everything a conversation has collected so far (slots, candidate
    list, retry counters) plus the stack of active dialog Frames.
  - Frame: one activation record on the dialog stack (dialog name, step index,
    begin-time options, pending prompt).
  - StepResult: the outcome of one waterfall step — Next, Suspend, Replace,
    Begin, End or Failed.
  - Turn / Activity: the inbound and outbound units exchanged with the
    hosting transport.
*/
package domain
