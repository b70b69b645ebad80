package platform

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/google/uuid"
)

// HTTPEventDirectory resolves events against the hosting platform's API.
type HTTPEventDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPEventDirectory(baseURL string) *HTTPEventDirectory {
	return &HTTPEventDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *HTTPEventDirectory) GetEvent(eventID uuid.UUID) (*services.EventInfo, error) {
	resp, err := d.client.Get(d.baseURL + "/api/events/" + eventID.String())
	if err != nil {
		return nil, fmt.Errorf("platform event lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("event %s not found on platform", eventID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("platform event lookup returned status %d", resp.StatusCode)
	}

	var body struct {
		ID         uuid.UUID `json:"id"`
		CalendarID uuid.UUID `json:"calendar_id"`
		Title      string    `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode platform event: %w", err)
	}

	return &services.EventInfo{
		ID:         body.ID,
		CalendarID: body.CalendarID,
		Title:      body.Title,
	}, nil
}
