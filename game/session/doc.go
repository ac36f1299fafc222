// Package session provides session management for the Magnets referee.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs taken from a UUID
//   - Optional persistence, to JSON files or to SQLite
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager keeps live sessions in memory and writes through to a
// SessionPersistence when one is configured. FilePersistence stores one
// JSON document per session; SQLitePersistence stores one row per session
// in a single database file. Both store the puzzle identifier rather than
// the puzzle, and rebuild the engine from the catalogue on load.
//
// Usage:
//
//	persistence, err := session.NewSQLitePersistence("sessions.db", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	defer manager.Close()
//
//	sess, err := manager.Create("", "classic", puzzle)
//	sess, err = manager.Get(sess.ID)
//
// Lookups are case-insensitive. A session missing from memory is loaded
// from persistence on first access.
package session
