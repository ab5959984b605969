package winixapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/winix/internal/errors"
)

// clientNamespace scopes the per-user client identifiers sent to the mobile API.
var clientNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/jrsteele09/winix"))

// ClientUUID returns the stable client identifier for userID. The mobile API
// ties registered clients to this value, so it must not change between runs.
func ClientUUID(userID string) string {
	return uuid.NewSHA1(clientNamespace, []byte(userID)).String()
}

const maxErrorBody = 512

func doJSON(ctx context.Context, httpClient *http.Client, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", apperrors.ErrAuthenticationFailed, statusText(resp.StatusCode, data))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected response: %s", statusText(resp.StatusCode, data))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusText(code int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	if text == "" {
		return http.StatusText(code)
	}
	return fmt.Sprintf("%d %s", code, text)
}
