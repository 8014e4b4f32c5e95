// Package repository defines the storage contracts of the login subsystem,
// independent of the engine behind them.
//
//	┌──────────────────────────────────────────────┐
//	│   auth/strategy, http/controllers, cmd       │
//	└──────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌──────────────────────────────────────────────┐
//	│   store.Guarded (timeout + singleflight)     │
//	└──────────────────────────────────────────────┘
//	                      │
//	         ┌────────────┴────────────┐
//	         ▼                         ▼
//	┌─────────────────┐       ┌─────────────────┐
//	│  adapters/pg    │       │ adapters/memory │
//	└─────────────────┘       └─────────────────┘
//
// Conventions:
//   - context is always the first parameter
//   - absence is ErrNotFound, never a nil record with a nil error
package repository
