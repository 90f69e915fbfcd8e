package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HTTPDirectory resolves user contact details from the user service over
// its REST API.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(baseURL string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type phoneResponse struct {
	PhoneNumber string `json:"phone_number"`
}

func (d *HTTPDirectory) PhoneNumber(ctx context.Context, userID primitive.ObjectID) (string, error) {
	url := fmt.Sprintf("%s/users/%s/phone", d.baseURL, userID.Hex())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("user directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("user directory returned status %d", resp.StatusCode)
	}

	var body phoneResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode user directory response: %w", err)
	}
	if body.PhoneNumber == "" {
		return "", fmt.Errorf("user %s has no phone number on file", userID.Hex())
	}

	return body.PhoneNumber, nil
}
