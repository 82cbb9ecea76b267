package logware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// GetData looks up a transaction on the chain-data service.
// The lookup is unauthenticated and never triggers a login.
//
// A 404 returns ErrNotFound together with a ChainData carrying only the status.
// Any other status is returned as-is; Data holds the pkdata field when the
// body is a JSON object.
func (c *Client) GetData(ctx context.Context, txid string) (*ChainData, error) {
	target := c.config.GetChainDataURL() + "/tx/" + url.PathEscape(txid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("logware-client: failed to build chain-data request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error(err, "chain-data lookup failed", "txid", txid)
		return nil, fmt.Errorf("logware-client: failed to look up transaction %s: %w", txid, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &ChainData{Status: resp.StatusCode}, ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ChainData{Status: resp.StatusCode}, fmt.Errorf("logware-client: failed to read chain-data response: %w", err)
	}

	result := &ChainData{Body: jsonBody(body), Status: resp.StatusCode}
	var parsed chainDataBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		result.Data = parsed.PKData
	}

	c.log.V(1).Info("chain-data lookup completed", "txid", txid, "status", resp.StatusCode)
	return result, nil
}
