// Package service provides the business logic layer for the Magnets referee.
//
// The service package implements:
//   - Multi-session game management
//   - Placement processing, either structured or as a raw player line
//   - Player input rendering for the next turn
//   - Paginated move history
//   - Puzzle catalogue access
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST and MCP
// transports. SessionManager stores sessions and ConfigManager loads puzzles;
// both are implemented in sibling packages.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.PlaceLine(ctx, info.ID, "0 0 +")
//
// Every call on a session goes through one service mutex, so a session's
// engine is never touched by two requests at once.
package service
