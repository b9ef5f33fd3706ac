package factcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// #region get-json

const maxResponseBytes = 1 << 20

// doJSON executes req and decodes a 200 response body into target.
func doJSON[T any](client *http.Client, req *http.Request, target *T) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return fmt.Errorf("%s returned status: %s", req.URL.Host, resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Host, err)
	}
	return nil
}

// #endregion get-json
