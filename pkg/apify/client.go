package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const actorURL = "https://api.apify.com/v2/acts/lukaskrivka~google-maps-with-contact-details/run-sync-get-dataset-items"

// Place is a raw discovered contact record. Email data arrives in several
// shapes depending on the scrape, so every known field is kept.
type Place struct {
	Title            string   `json:"title"`
	Website          string   `json:"website"`
	Emails           []string `json:"emails"`
	Email            string   `json:"email"`
	ContactEmail     string   `json:"contactEmail"`
	BusinessEmail    string   `json:"businessEmail"`
	PrimaryEmail     string   `json:"primaryEmail"`
	Phone            string   `json:"phone"`
	PhoneUnformatted string   `json:"phoneUnformatted"`
	Address          string   `json:"address"`
}

// EmailField flattens the possible email shapes into a single
// comma-separated field, checking fallback fields in a fixed order.
func (p *Place) EmailField() string {
	cleaned := make([]string, 0, len(p.Emails))
	for _, e := range p.Emails {
		if e = strings.TrimSpace(e); e != "" {
			cleaned = append(cleaned, e)
		}
	}
	if len(cleaned) > 0 {
		return strings.Join(cleaned, ", ")
	}

	for _, fallback := range []string{p.Email, p.ContactEmail, p.BusinessEmail, p.PrimaryEmail} {
		if fallback = strings.TrimSpace(fallback); fallback != "" {
			return fallback
		}
	}
	return ""
}

// PhoneNumber prefers the formatted number.
func (p *Place) PhoneNumber() string {
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		return phone
	}
	return strings.TrimSpace(p.PhoneUnformatted)
}

type Client struct {
	token      string
	httpClient *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token: token,
		// run-sync calls block until the actor finishes a full crawl
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

type searchRequest struct {
	Language           string   `json:"language"`
	LocationQuery      string   `json:"locationQuery"`
	MaxCrawledPlaces   int      `json:"maxCrawledPlacesPerSearch"`
	SearchStringsArray []string `json:"searchStringsArray"`
	SkipClosedPlaces   bool     `json:"skipClosedPlaces"`
}

// SearchPlaces runs one synchronous actor search for a (location, category)
// pair and returns the raw dataset items.
func (c *Client) SearchPlaces(ctx context.Context, location, category string, maxResults int) ([]Place, error) {
	payload := searchRequest{
		Language:           "en",
		LocationQuery:      location,
		MaxCrawledPlaces:   maxResults,
		SearchStringsArray: []string{fmt.Sprintf("%s in %s", category, location)},
		SkipClosedPlaces:   false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actorURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	// run-sync endpoints answer 201 on success
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("apify API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var places []Place
	if err := json.Unmarshal(respBody, &places); err != nil {
		return nil, fmt.Errorf("failed to decode apify response: %w", err)
	}
	return places, nil
}
