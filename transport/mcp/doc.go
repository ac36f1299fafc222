// Package mcp exposes the Magnets game to language-model agents through the
// Model Context Protocol.
//
// Client is a thin proxy: every tool calls the REST API (package api) and
// renders the JSON answer as text an agent can read.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: the board framed by its markers, plus the domino plan
//   - player_input: the exact lines a referee player program would read
//   - place: one placement; the partner cell is filled by the engine
//   - move_history, list_configs, game_instructions
//
// A placement that loses the game is a normal tool result; only transport
// and request errors (unknown session, game already over) are tool errors.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", logger)
//
//	// stdio
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, one JSON-RPC message per POST
//	mux.Handle("/mcp", client)
package mcp
