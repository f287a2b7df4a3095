// ===============================
// internal/player/counter.go - Fire-and-Forget Play Counter
// ===============================

package player

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPPlayCounter reports plays to the catalog's play endpoint. Each count is
// dispatched on its own goroutine and the response is discarded: a failure,
// or a reply arriving after the user has moved on, changes nothing.
type HTTPPlayCounter struct {
	baseURL string
	client  *http.Client
}

func NewHTTPPlayCounter(baseURL string) *HTTPPlayCounter {
	return &HTTPPlayCounter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CountPlay never blocks the caller and never reports an outcome.
func (p *HTTPPlayCounter) CountPlay(episodeID int64) {
	url := fmt.Sprintf("%s/api/episodes/%d/play", p.baseURL, episodeID)

	go func() {
		resp, err := p.client.Post(url, "application/json", nil)
		if err != nil {
			return
		}
		resp.Body.Close()
	}()
}
