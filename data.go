package logware

import (
	"context"
	"net/http"
	"net/url"
)

// InsertData submits payload for insertion in the configured environment.
// The API answers with a task whose results can be polled with GetDataInsertResults.
func (c *Client) InsertData(ctx context.Context, payload any) (*Result, error) {
	return c.Request(ctx, http.MethodPost, "data", DataInsertRequest{
		Env:  c.config.GetEnvironment(),
		Data: payload,
	})
}

// GetDataInsertResults polls the results of a data insertion task.
func (c *Client) GetDataInsertResults(ctx context.Context, taskID string) (*Result, error) {
	return c.Request(ctx, http.MethodGet, c.taskPath("data", taskID), nil)
}

// InsertHash submits hash for insertion in the configured environment.
func (c *Client) InsertHash(ctx context.Context, hash string) (*Result, error) {
	return c.Request(ctx, http.MethodPost, "hash", HashInsertRequest{
		Env:  c.config.GetEnvironment(),
		Hash: hash,
	})
}

// GetHashInsertResults polls the results of a hash insertion task.
func (c *Client) GetHashInsertResults(ctx context.Context, taskID string) (*Result, error) {
	return c.Request(ctx, http.MethodGet, c.taskPath("hash", taskID), nil)
}

func (c *Client) taskPath(kind, taskID string) string {
	return kind + "/" + url.PathEscape(c.config.GetEnvironment()) + "/" + url.PathEscape(taskID)
}
