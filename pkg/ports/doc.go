/*
Package ports defines the driven ports (interfaces) for the progressforms navigator.

These interfaces decouple the core logic from external implementations, allowing
the navigator to work with any UI toolkit, definition source and storage backend.

# Key Interfaces

  - FieldInspector: Answers visibility, value and checked-state queries about host fields.
  - Validator: A custom per-panel check run by the validation gate.
  - Navigator: The operations a host drives (advance, retreat, jump, click).
  - FormLoader: Responsible for loading Form definitions (e.g., from Loam, files or memory).
  - StateStore: Responsible for persisting and loading navigator snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
