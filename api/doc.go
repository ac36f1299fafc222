// Package api exposes the Magnets game service over HTTP.
//
// Endpoints (all under /api unless noted):
//
// Sessions:
//   - POST   /sessions                {"config_id": "classic"}
//   - GET    /sessions                ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /sessions/unified        ?sessionIds=a,b or ?configName=classic
//   - GET    /sessions/{id}
//   - DELETE /sessions/{id}
//
// Play:
//   - GET  /sessions/{id}/state
//   - GET  /sessions/{id}/input       lines a player program reads next; ?format=text
//   - POST /sessions/{id}/place       {"x": 0, "y": 0, "symbol": "+"} or {"line": "0 0 +"}
//   - GET  /sessions/{id}/history     ?page=1&limit=20&order=desc
//
// Puzzles:
//   - GET  /configs
//   - POST /configs                   puzzle JSON plus an optional "id"
//   - GET  /configs/{name}
//
// Other:
//   - GET /ws?session={id}            place_result stream (see transport/websocket)
//   - GET /health
//
// A placement that loses the game is still a 200; the loss is in the
// outcome. Errors are JSON {"error": "...", "code": N}: unknown sessions and
// puzzles are 404, invalid requests and puzzles are 400, and placing after
// the game is decided is 409.
package api
