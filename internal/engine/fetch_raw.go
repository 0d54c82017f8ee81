package engine

import (
	"context"
)

// FetchDocument downloads a binary document (PDF and the like) and returns its bytes.
func FetchDocument(ctx context.Context, rawURL string) ([]byte, error) {
	metrics.FetchRequests.Add(1)

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout())
	defer cancel()

	resp, err := fetchWithRetry(ctx, rawURL, "application/pdf,application/octet-stream;q=0.9,*/*;q=0.8")
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	return body, nil
}
