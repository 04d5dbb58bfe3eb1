// Package mcp exposes one user's saved articles, notes and podcast episodes
// to MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

// Store is the read-only slice of the data layer the tools use.
type Store interface {
	ListArticles(userID int64, opts store.ListOptions) ([]*models.Article, int, error)
	GetArticle(userID, id int64) (*models.Article, error)
	ListNotes(userID int64, opts store.ListOptions) ([]*models.Note, int, error)
	ListFeeds(userID int64) ([]*models.Feed, error)
	ListEpisodes(userID, feedID int64, opts store.ListOptions) ([]*models.Episode, int, error)
	ListQueue(userID int64) ([]*models.Episode, error)
}

const defaultLimit = 20

// Server answers tool calls on behalf of a single user.
type Server struct {
	store     Store
	userID    int64
	mcpServer *server.MCPServer
}

func NewServer(st Store, userID int64, version string) *Server {
	s := &Server{
		store:     st,
		userID:    userID,
		mcpServer: server.NewMCPServer("homebase", version),
	}
	s.registerTools()
	return s
}

// Start serves on stdin/stdout until the client disconnects.
func (s *Server) Start() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "search_articles",
		Description: "Search saved articles by title, URL and text. Returns ids to use with get_article.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to look for. Empty lists the newest articles.",
				},
				"tag": map[string]interface{}{
					"type":        "string",
					"description": "Only articles carrying this tag",
				},
				"include_archived": map[string]interface{}{
					"type":        "boolean",
					"description": "Include archived articles (default: false)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (default: 20)",
				},
			},
		},
	}, s.handleSearchArticles)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_article",
		Description: "Get a saved article by id with its content as markdown",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "integer",
					"description": "Article ID",
				},
			},
			Required: []string{"id"},
		},
	}, s.handleGetArticle)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_notes",
		Description: "List notes, newest first, optionally filtered by text or tag",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text the note must contain",
				},
				"tag": map[string]interface{}{
					"type":        "string",
					"description": "Only notes carrying this tag",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of notes (default: 20)",
				},
			},
		},
	}, s.handleListNotes)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_episodes",
		Description: "List podcast episodes. With feed_id, the feed's episodes newest first; without it, the listening queue. Call without arguments and look at the feeds section to find feed ids.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"feed_id": map[string]interface{}{
					"type":        "integer",
					"description": "Podcast feed ID",
				},
				"unplayed": map[string]interface{}{
					"type":        "boolean",
					"description": "Only episodes not yet played (feed listing only)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of episodes (default: 20)",
				},
			},
		},
	}, s.handleListEpisodes)
}
