// Package websocket streams Magnets game updates to browser clients.
//
// A central Hub owns every connection. Clients attach to a session id with
// ?session=<id> and receive JSON messages:
//
//	{"sessionId": "1a2b3c4d", "event": "place_result", "outcome": {...}, "gameState": {...}}
//
// Events:
//   - state_update: the full game state
//   - place_result: the outcome of a placement plus the new state
//
// Publishing never blocks the caller. Messages queue for the Run loop and
// are dropped with a warning when the queue is full.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
