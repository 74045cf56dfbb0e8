/*
Package session implements per-conversation access control and persistence
orchestration.

Turns for one conversation must be processed strictly in arrival order, with
no concurrent mutation of its state. The Manager enforces this in-process
with reference-counted mutexes and, optionally, across replicas with a
distributed lock.
*/
package session
