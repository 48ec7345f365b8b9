// Package blackboard provides the coordination core of the MARA research
// pipeline: a thread-safe shared store with change notification, the status
// vocabulary that sequences the workers, and the data types the workers
// exchange (tasks, raw extraction results, the knowledge graph).
//
// The blackboard is the only shared mutable state in the system. Workers
// never call each other directly; they subscribe to slot changes (most
// importantly the reserved status slot) and react to writes produced by
// other workers. Notification delivery is synchronous on the writer's
// goroutine, so a single write can cascade through the whole pipeline
// before the write call returns.
package blackboard
