package ucas

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ucas-grades/internal/domain"
	"ucas-grades/internal/httpx"
)

const searchPath = "/coursedisplay/results/courses"

// SearchCourseIDs walks the paginated search results for the given criteria
// and returns the deduplicated, ordered list of course ids. It stops when a
// page yields zero previously-unseen ids or when maxPages is reached (guard
// against unstable pagination cursors). Any page whose retry budget is
// exhausted aborts the whole search: a silently partial id list would be
// treated as complete downstream.
func (c *Client) SearchCourseIDs(ctx context.Context, crit domain.SearchCriteria, maxPages int) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string

	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			fmt.Printf("search: stopping at page guard (%d pages)\n", maxPages)
			break
		}

		pageURL := c.searchPageURL(crit, page)
		pageIDs, err := c.fetchSearchPage(ctx, pageURL)
		if err != nil {
			c.noteFailure(pageURL)
			return nil, fmt.Errorf("ucas: search page %d: %w", page, err)
		}

		newCount := 0
		for _, id := range pageIDs {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			newCount++
		}

		fmt.Printf("search page %d: ids=%d new=%d total=%d\n", page, len(pageIDs), newCount, len(ids))

		if newCount == 0 {
			break
		}

		// pequeño "rate limit" para no tumbar el frontend
		time.Sleep(200 * time.Millisecond)
	}

	return ids, nil
}

func (c *Client) searchPageURL(crit domain.SearchCriteria, page int) string {
	q := url.Values{}
	q.Set("searchTerm", crit.Subject)
	q.Set("studyYear", strconv.Itoa(crit.StudyYear))
	q.Set("destination", string(crit.Destination))
	q.Set("pageNumber", strconv.Itoa(page))
	return c.SearchBaseURL + searchPath + "?" + q.Encode()
}

func (c *Client) fetchSearchPage(ctx context.Context, pageURL string) ([]string, error) {
	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("ucas: build search request: %w", err)
		}
		req.Header.Set("Accept", "text/html")
		req.Header.Set("Accept-Encoding", "br")
		return req, nil
	}

	_, body, err := httpx.DoWithRetry(ctx, c.HTTP, buildReq, c.Retry)
	if err != nil {
		return nil, err
	}

	return parseSearchIDs(body)
}

// parseSearchIDs extracts course ids from a search results page. Each result
// card is an <article> whose id attribute is the course id.
func parseSearchIDs(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ucas: parse search html: %w", err)
	}

	var ids []string
	doc.Find("app-courses-view app-course article").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok {
			ids = append(ids, domain.ParseCourseID(id))
		}
	})
	return ids, nil
}
