// Package mcp exposes a Parley engine as an MCP server, so agent hosts can
// drive conversations as tools: send a message, inspect the state, reset.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/parley/pkg/domain"
)

// TurnResult is the structured output of the send_message tool.
type TurnResult struct {
	ConversationID string            `json:"conversation_id" jsonschema_description:"The conversation the turn ran in"`
	Replies        []domain.Activity `json:"replies" jsonschema_description:"Outbound activities, in emission order"`
	Active         bool              `json:"active" jsonschema_description:"True while a dialog is suspended waiting for the next turn"`
}

// Engine is the subset of the Parley facade the MCP surface needs.
type Engine interface {
	ProcessTurn(ctx context.Context, conversationID string, turn domain.Turn) ([]domain.Activity, error)
	Inspect(ctx context.Context, conversationID string) (*domain.State, error)
	EndConversation(ctx context.Context, conversationID string) error
}

// Server wraps a Parley Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("parley-mcp", version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts down
// when the context is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: send_message
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Send one user message to a conversation and get the bot's replies."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier; reuse it across turns to stay in the same flow")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The user's utterance")),
		mcp.WithString("locale", mcp.Description("BCP-47 locale of the utterance (optional)")),
		mcp.WithOutputSchema[TurnResult](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.handleSendMessage))

	// TOOL: send_event
	eventTool := mcp.NewTool("send_event",
		mcp.WithDescription("Send a programmatic event that pre-fills slots before the next message."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON object of slot values")),
		mcp.WithOutputSchema[TurnResult](),
	)
	s.mcpServer.AddTool(eventTool, mcp.NewStructuredToolHandler(s.handleSendEvent))

	// TOOL: inspect_conversation
	s.mcpServer.AddTool(mcp.NewTool("inspect_conversation",
		mcp.WithDescription("Get the persisted state of a conversation: slots, candidates, retry counters and the dialog stack."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		conversationID, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		state, err := s.engine.Inspect(ctx, conversationID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("inspect failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(state)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: reset_conversation
	s.mcpServer.AddTool(mcp.NewTool("reset_conversation",
		mcp.WithDescription("Drop a conversation entirely: stack, slots and stored state."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation identifier")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		conversationID, err := request.RequireString("conversation_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.engine.EndConversation(ctx, conversationID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
		}
		return mcp.NewToolResultText("conversation reset"), nil
	})
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResult, error) {
	conversationID, _ := args["conversation_id"].(string)
	text, _ := args["text"].(string)
	locale, _ := args["locale"].(string)

	turn := domain.MessageTurn(text)
	turn.Locale = locale

	replies, err := s.engine.ProcessTurn(ctx, conversationID, turn)
	if err != nil {
		return TurnResult{}, fmt.Errorf("turn failed: %w", err)
	}
	return s.turnResult(ctx, conversationID, replies), nil
}

func (s *Server) handleSendEvent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TurnResult, error) {
	conversationID, _ := args["conversation_id"].(string)
	valueStr, _ := args["value"].(string)

	var value map[string]any
	if valueStr != "" {
		if err := json.Unmarshal([]byte(valueStr), &value); err != nil {
			return TurnResult{}, fmt.Errorf("value must be a JSON object: %w", err)
		}
	}

	replies, err := s.engine.ProcessTurn(ctx, conversationID, domain.EventTurn(value))
	if err != nil {
		return TurnResult{}, fmt.Errorf("event failed: %w", err)
	}
	return s.turnResult(ctx, conversationID, replies), nil
}

func (s *Server) turnResult(ctx context.Context, conversationID string, replies []domain.Activity) TurnResult {
	if replies == nil {
		replies = []domain.Activity{}
	}
	result := TurnResult{
		ConversationID: conversationID,
		Replies:        replies,
	}
	if state, err := s.engine.Inspect(ctx, conversationID); err == nil {
		result.Active = len(state.Stack) > 0
	}
	return result
}
