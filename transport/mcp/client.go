package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/service"
)

// Version is reported to MCP clients during initialization
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	log        logrus.FieldLogger
}

// NewClient creates a new MCP client that calls the REST API at baseURL.
// A nil logger discards output.
func NewClient(baseURL string, log logrus.FieldLogger) *Client {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.WithField("component", "mcp"),
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Magnets Referee",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Magnets - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Fill every domino of the grid with a magnet (+ and -) or a neutral plate (x)
so that every row and column marker holds and no two equal poles touch.

AVAILABLE TOOLS:
- create_session: Create new game session
- list_sessions: List all active sessions
- get_session: Get session details including the puzzle
- game_state: Get the board with its markers
- player_input: Get the exact lines a player program would read this turn
- place: Place one domino half (the partner cell is filled automatically)
- move_history: View past placements
- list_configs: List available puzzles
- game_instructions: Get the full rules

NOTE: Any invalid placement ends the game. The 'intent' parameter on place
serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional puzzle selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle id from list_configs (optional, defaults to the server default)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board with row and column markers",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_input",
		Description: "Get the lines a player program reads on the next turn: the full puzzle on turn 1, the board snapshot afterwards",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlayerInput)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place",
		Description: "Place a symbol on an empty cell. The other half of its domino receives the opposite pole, or x for a neutral plate.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
				"symbol": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"+", "-", "x"},
					"description": "Symbol to place",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this placement (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "x", "y", "symbol"},
		},
	}, c.handlePlace)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get placement history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeHTTP answers single JSON-RPC messages posted to the /mcp endpoint
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	if response == nil {
		// notifications have no reply
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		c.log.WithError(err).Warn("Failed to write MCP response")
	}
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) toolError(tool string, err error) *mcp.CallToolResult {
	c.log.WithError(err).WithField("tool", tool).Debug("Tool call failed")
	return mcp.NewToolResultError(err.Error())
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg accepts JSON numbers and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return c.toolError("create_session", err), nil
	}

	result := fmt.Sprintf("Created session: %s\nPuzzle: %s\n\n%s", session.ID, session.ConfigName, formatBoard(session.GameState, session.Puzzle))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return c.toolError("list_sessions", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := engine.AwaitingMove
		if s.GameState != nil {
			status = s.GameState.Status
		}
		fmt.Fprintf(&b, "- %s (Puzzle: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return c.toolError("get_session", err), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	// the session carries the puzzle, which holds the markers
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return c.toolError("game_state", err), nil
	}

	return mcp.NewToolResultText(formatGameState(session.GameState, session.Puzzle)), nil
}

func (c *Client) handlePlayerInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var input service.PlayerInput
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/input"), nil, &input); err != nil {
		return c.toolError("player_input", err), nil
	}

	kind := "snapshot"
	if input.Setup {
		kind = "setup"
	}
	result := fmt.Sprintf("Turn %d input (%s):\n%s\n", input.Turn, kind, strings.Join(input.Lines, "\n"))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePlace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	symbol := stringArg(args, "symbol")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY || symbol == "" {
		return mcp.NewToolResultError("x, y and symbol are required"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	c.log.WithFields(logrus.Fields{"session": sessionID, "intent": stringArg(args, "intent")}).Debug("Place requested")

	body := map[string]interface{}{
		"x":      x,
		"y":      y,
		"symbol": symbol,
	}

	var result service.PlaceResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return c.toolError("place", err), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return c.toolError("move_history", err), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return c.toolError("list_configs", err), nil
	}

	var b strings.Builder
	b.WriteString("Available Puzzles:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (id: %s)\n  %s\n  Grid: %dx%d, Dominoes: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height, config.Dominoes)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Magnets - Complete Instructions

GAME OBJECTIVE:
The grid is split into dominoes, pairs of adjacent cells. Fill every domino
either with a magnet (one + cell and one - cell) or with a neutral plate
(both cells x).

MARKERS:
• Left and right markers count the + and - cells of each row
• Top and bottom markers count the + and - cells of each column
  - left/top markers cap the number of + cells
  - right/bottom markers cap the number of - cells
• -1 means the line is unconstrained
• A marker is a maximum while you play; the puzzle is solved when every
  domino is filled and every marker holds

PLACING:
• Place one symbol (+, - or x) on an empty cell with its x (column) and
  y (row), both 0-based
• The other half of the domino is filled automatically: the opposite pole
  for + and -, x for a neutral plate
• One placement per turn; a puzzle with N dominoes is solved in N turns

LOSING (any of these ends the game at once):
• Malformed move
• Coordinates outside the grid
• A cell that is already filled
• Two equal poles (+ next to + or - next to -) sharing an edge
• A row or column with more + or - cells than its marker allows
• Taking too long to answer (referee matches only)

BOARD LEGEND (game_state):
• + / - : placed poles
• x     : neutral plate
• .     : empty cell
• the plan shows which cells form each domino (same letter = same domino)

STRATEGY:
• Start with rows or columns whose markers are 0: every domino crossing
  them must be neutral or point its other pole there
• A domino lying along a row always adds one + and one - to that row
• Check both neighbours of a cell before placing; the partner cell also
  gets a pole and can touch an equal one
• Use player_input to see exactly what a referee player program reads

Good luck balancing the magnets!`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nPuzzle: %s\nCreated: %s\nLast Accessed: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState, session.Puzzle))
}

func statusLine(state *engine.GameState) string {
	switch state.Status {
	case engine.Won:
		return "🎉 SOLVED!"
	case engine.Lost:
		return fmt.Sprintf("💀 LOST (%s): %s", state.LossKind, state.Reason)
	default:
		return fmt.Sprintf("Turn %d of %d, awaiting move", state.Turn+1, state.MaxTurns)
	}
}

func formatGameState(state *engine.GameState, puzzle *engine.PuzzleConfig) string {
	if state == nil {
		return "No game state"
	}

	var b strings.Builder
	b.WriteString(statusLine(state))
	b.WriteString("\n\n")
	b.WriteString(formatBoard(state, puzzle))
	if len(state.Violations) > 0 {
		b.WriteString("\nViolations:\n")
		for _, v := range state.Violations {
			fmt.Fprintf(&b, "  - %s\n", v.Message)
		}
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}
	return b.String()
}

func markerText(markers []int, i int) string {
	if i >= len(markers) || markers[i] == engine.Unconstrained {
		return "."
	}
	return strconv.Itoa(markers[i])
}

// formatBoard renders the cells framed by their markers, with the domino
// plan alongside when the puzzle is known
func formatBoard(state *engine.GameState, puzzle *engine.PuzzleConfig) string {
	if state == nil {
		return ""
	}
	if puzzle == nil {
		return strings.Join(state.Cells, "\n") + "\n"
	}

	cell := func(s string) string { return fmt.Sprintf("%2s", s) }

	var b strings.Builder
	header := func(label string, markers []int) {
		fmt.Fprintf(&b, "%-6s   ", label)
		for x := 0; x < puzzle.Width; x++ {
			b.WriteString(cell(markerText(markers, x)))
		}
		b.WriteString("\n")
	}

	header("top+", puzzle.TopMarkers)
	for y, row := range state.Cells {
		fmt.Fprintf(&b, "%4s | ", markerText(puzzle.LeftMarkers, y))
		for _, ch := range row {
			b.WriteString(cell(string(ch)))
		}
		fmt.Fprintf(&b, " | %-3s", markerText(puzzle.RightMarkers, y))
		if y < len(puzzle.Plan) {
			fmt.Fprintf(&b, "   %s", puzzle.Plan[y])
		}
		b.WriteString("\n")
	}
	header("bottom-", puzzle.BottomMarkers)
	b.WriteString("(left: max + per row, right: max - per row, . = unconstrained)\n")
	return b.String()
}

func formatPlaceResult(result *service.PlaceResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Placement accepted\n")
	} else {
		b.WriteString("✗ Placement lost the game\n")
	}

	if o := result.Outcome; o != nil {
		for _, ch := range o.Changed {
			fmt.Fprintf(&b, "  (%d,%d) = %s\n", ch.X, ch.Y, ch.Symbol)
		}
		if o.Reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", o.Reason)
		}
	}

	if result.GameState != nil {
		b.WriteString("\n")
		b.WriteString(statusLine(result.GameState))
		b.WriteString("\n")
		b.WriteString(strings.Join(result.GameState.Cells, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, entry := range history.Moves {
		move := entry.Raw
		if entry.Move != nil {
			move = entry.Move.String()
		}
		fmt.Fprintf(&b, "%3d. %-10s %s", entry.Turn, move, entry.Status)
		if entry.LossKind != "" {
			fmt.Fprintf(&b, " (%s)", entry.LossKind)
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		b.WriteString("\n(More moves available on next page)")
	}
	return b.String()
}
