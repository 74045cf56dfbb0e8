/*
Package ports defines the driven ports (interfaces) for the Parley engine.

These interfaces decouple the orchestration core from its external
collaborators, allowing the engine to work with various storage backends,
NLU services and outbound channels.

# Key Interfaces

  - StateStore: persists per-conversation State between turns.
  - Recognizer: the NLU collaborator (intent/entity extraction).
  - Channel: delivers outbound activities to the user.
  - Authorizer: revokes stored credentials on logout.
  - DistributedLocker: serializes turns per conversation across replicas.
*/
package ports
