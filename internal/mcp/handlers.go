package mcp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vrsandeep/homebase/internal/extract"
	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

// intArg reads a JSON number argument; clients send all numbers as float64.
func intArg(arguments map[string]interface{}, key string, def int) int {
	if v, ok := arguments[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}

func stringArg(arguments map[string]interface{}, key string) string {
	v, _ := arguments[key].(string)
	return strings.TrimSpace(v)
}

func (s *Server) handleSearchArticles(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	opts := store.ListOptions{
		Search:  stringArg(arguments, "query"),
		Tag:     stringArg(arguments, "tag"),
		PerPage: intArg(arguments, "limit", defaultLimit),
	}
	if include, _ := arguments["include_archived"].(bool); !include {
		archived := false
		opts.Archived = &archived
	}

	articles, total, err := s.store.ListArticles(s.userID, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	if len(articles) == 0 {
		return mcp.NewToolResultText("No articles found matching the search criteria."), nil
	}

	var output strings.Builder
	fmt.Fprintf(&output, "Found %d articles", total)
	if total > len(articles) {
		fmt.Fprintf(&output, " (showing %d)", len(articles))
	}
	output.WriteString(":\n\n")
	for i, a := range articles {
		fmt.Fprintf(&output, "**%d. %s**\n", i+1, a.Title)
		fmt.Fprintf(&output, "ID: %d\n", a.ID)
		fmt.Fprintf(&output, "URL: %s\n", a.URL)
		writeTags(&output, a.Tags)
		if a.Excerpt != "" {
			fmt.Fprintf(&output, "Excerpt: %s\n", a.Excerpt)
		}
		fmt.Fprintf(&output, "Added: %s\n\n", a.CreatedAt.Format("2006-01-02"))
	}
	return mcp.NewToolResultText(output.String()), nil
}

func (s *Server) handleGetArticle(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	idFloat, ok := arguments["id"].(float64)
	if !ok {
		return mcp.NewToolResultError("Article ID is required and must be a number"), nil
	}
	article, err := s.store.GetArticle(s.userID, int64(idFloat))
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("Article %d not found", int64(idFloat))), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get article: %v", err)), nil
	}

	var output strings.Builder
	fmt.Fprintf(&output, "# %s\n\n", article.Title)
	fmt.Fprintf(&output, "**ID:** %d\n", article.ID)
	fmt.Fprintf(&output, "**URL:** %s\n", article.URL)
	if len(article.Tags) > 0 {
		fmt.Fprintf(&output, "**Tags:** %s\n", strings.Join(article.Tags, ", "))
	}
	fmt.Fprintf(&output, "**Added:** %s\n\n", article.CreatedAt.Format("2006-01-02 15:04:05"))

	if article.Content != nil && strings.TrimSpace(*article.Content) != "" {
		output.WriteString(extract.Markdown(*article.Content))
	} else {
		output.WriteString("*Article content was not extracted.*")
	}
	return mcp.NewToolResultText(output.String()), nil
}

func (s *Server) handleListNotes(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	notes, total, err := s.store.ListNotes(s.userID, store.ListOptions{
		Search:  stringArg(arguments, "query"),
		Tag:     stringArg(arguments, "tag"),
		PerPage: intArg(arguments, "limit", defaultLimit),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list notes: %v", err)), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("No notes found."), nil
	}

	var output strings.Builder
	fmt.Fprintf(&output, "Found %d notes:\n\n", total)
	for i, n := range notes {
		if i > 0 {
			output.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&output, "**Note %d** (updated %s)\n", n.ID, n.UpdatedAt.Format("2006-01-02"))
		writeTags(&output, n.Tags)
		output.WriteString("\n")
		output.WriteString(strings.TrimSpace(n.Content))
		output.WriteString("\n")
	}
	return mcp.NewToolResultText(output.String()), nil
}

func (s *Server) handleListEpisodes(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	limit := intArg(arguments, "limit", defaultLimit)

	feedID, ok := arguments["feed_id"].(float64)
	if !ok {
		return s.queueAndFeeds(limit)
	}

	opts := store.ListOptions{PerPage: limit}
	if unplayed, _ := arguments["unplayed"].(bool); unplayed {
		opts.Status = "unplayed"
	}
	episodes, total, err := s.store.ListEpisodes(s.userID, int64(feedID), opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list episodes: %v", err)), nil
	}
	if len(episodes) == 0 {
		return mcp.NewToolResultText("No episodes found for this feed."), nil
	}

	var output strings.Builder
	fmt.Fprintf(&output, "%s: %d episodes\n\n", episodes[0].FeedTitle, total)
	writeEpisodes(&output, episodes)
	return mcp.NewToolResultText(output.String()), nil
}

// queueAndFeeds answers list_episodes without a feed: the queue, then the
// subscriptions so a follow-up call can pick a feed id.
func (s *Server) queueAndFeeds(limit int) (*mcp.CallToolResult, error) {
	queue, err := s.store.ListQueue(s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read the queue: %v", err)), nil
	}
	feeds, err := s.store.ListFeeds(s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list feeds: %v", err)), nil
	}

	var output strings.Builder
	if len(queue) == 0 {
		output.WriteString("The queue is empty.\n\n")
	} else {
		if len(queue) > limit {
			queue = queue[:limit]
		}
		fmt.Fprintf(&output, "Queue (%d episodes):\n\n", len(queue))
		writeEpisodes(&output, queue)
	}

	if len(feeds) == 0 {
		output.WriteString("No podcast subscriptions.")
	} else {
		output.WriteString("## Feeds\n\n")
		for _, f := range feeds {
			fmt.Fprintf(&output, "- **%s** (feed_id %d, %d unplayed of %d)\n", f.Title, f.ID, f.UnplayedCount, f.EpisodeCount)
		}
	}
	return mcp.NewToolResultText(output.String()), nil
}

func writeEpisodes(output *strings.Builder, episodes []*models.Episode) {
	for i, e := range episodes {
		fmt.Fprintf(output, "**%d. %s**\n", i+1, e.Title)
		fmt.Fprintf(output, "ID: %d\n", e.ID)
		if e.FeedTitle != "" {
			fmt.Fprintf(output, "Podcast: %s\n", e.FeedTitle)
		}
		if e.PublishedAt != nil {
			fmt.Fprintf(output, "Published: %s\n", e.PublishedAt.Format("2006-01-02"))
		}
		if e.Duration > 0 {
			fmt.Fprintf(output, "Length: %d min\n", e.Duration/60)
		}
		switch {
		case e.Played:
			output.WriteString("Status: played\n")
		case e.PlayPosition > 0:
			fmt.Fprintf(output, "Status: in progress at %d min\n", int(e.PlayPosition)/60)
		default:
			output.WriteString("Status: unplayed\n")
		}
		output.WriteString("\n")
	}
}

func writeTags(output *strings.Builder, tags models.Tags) {
	if len(tags) > 0 {
		fmt.Fprintf(output, "Tags: %s\n", strings.Join(tags, ", "))
	}
}
