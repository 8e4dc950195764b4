package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/media"
)

const (
	// searchEndpoint is the Innertube API endpoint for search queries
	searchEndpoint = "https://www.youtube.com/youtubei/v1/search"

	// innertubeClientName is the client identifier for web requests
	innertubeClientName = "WEB"
	// innertubeClientVersion is the client version for web requests
	innertubeClientVersion = "2.20240101.00.00"

	// searchUserAgent mimics a standard browser
	searchUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// videoFilterParams restricts search results to plain videos,
	// excluding channels, playlists and shelves
	videoFilterParams = "EgIQAQ=="
)

// SearchClient queries the Innertube search API.  It needs no API key,
// matching the keyless resolution path used for streams.
type SearchClient struct {
	httpClient *http.Client
	endpoint   string
}

// NewSearchClient creates a search client with sane HTTP timeouts
func NewSearchClient() *SearchClient {
	return &SearchClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   searchEndpoint,
	}
}

// searchRequest is the Innertube search request body
type searchRequest struct {
	Context ClientContext `json:"context"`
	Query   string        `json:"query"`
	Params  string        `json:"params,omitempty"`
}

// ClientContext contains client identification for the API request
type ClientContext struct {
	Client InnertubeClient `json:"client"`
}

// InnertubeClient identifies the client making the request
type InnertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	HL            string `json:"hl"`
	GL            string `json:"gl"`
}

// searchResponse is the subset of the Innertube search response that
// video extraction needs
type searchResponse struct {
	Contents *searchContents `json:"contents,omitempty"`
}

type searchContents struct {
	TwoColumnSearchResultsRenderer *twoColumnSearchResultsRenderer `json:"twoColumnSearchResultsRenderer,omitempty"`
}

type twoColumnSearchResultsRenderer struct {
	PrimaryContents *primaryContents `json:"primaryContents,omitempty"`
}

type primaryContents struct {
	SectionListRenderer *sectionListRenderer `json:"sectionListRenderer,omitempty"`
}

type sectionListRenderer struct {
	Contents []sectionContent `json:"contents,omitempty"`
}

type sectionContent struct {
	ItemSectionRenderer *itemSectionRenderer `json:"itemSectionRenderer,omitempty"`
}

type itemSectionRenderer struct {
	Contents []itemContent `json:"contents,omitempty"`
}

// itemContent can be various renderer types; anything that is not a
// plain video renderer is ignored
type itemContent struct {
	VideoRenderer *videoRenderer `json:"videoRenderer,omitempty"`
}

// videoRenderer contains video metadata for one search result row
type videoRenderer struct {
	VideoID            string      `json:"videoId,omitempty"`
	Title              *TextRuns   `json:"title,omitempty"`
	OwnerText          *TextRuns   `json:"ownerText,omitempty"`
	LengthText         *SimpleText `json:"lengthText,omitempty"`
	ShortViewCountText *SimpleText `json:"shortViewCountText,omitempty"`
	ViewCountText      *SimpleText `json:"viewCountText,omitempty"`
	PublishedTimeText  *SimpleText `json:"publishedTimeText,omitempty"`
}

// TextRuns contains text with optional runs for formatting
type TextRuns struct {
	Runs       []TextRun `json:"runs,omitempty"`
	SimpleText string    `json:"simpleText,omitempty"`
}

// TextRun is a segment of text
type TextRun struct {
	Text string `json:"text,omitempty"`
}

// SimpleText holds a simple text value
type SimpleText struct {
	SimpleText string `json:"simpleText,omitempty"`
}

// GetText extracts plain text from TextRuns
func (t *TextRuns) GetText() string {
	if t == nil {
		return ""
	}
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var parts []string
	for _, run := range t.Runs {
		parts = append(parts, run.Text)
	}
	return strings.Join(parts, "")
}

func (s *SimpleText) text() string {
	if s == nil {
		return ""
	}
	return s.SimpleText
}

// Search runs a video search and returns the result rows in response order
func (c *SearchClient) Search(ctx context.Context, query string) ([]media.SearchResult, error) {
	req := &searchRequest{
		Context: ClientContext{
			Client: InnertubeClient{
				ClientName:    innertubeClientName,
				ClientVersion: innertubeClientVersion,
				HL:            "en",
				GL:            "US",
			},
		},
		Query:  query,
		Params: videoFilterParams,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", searchUserAgent)
	httpReq.Header.Set("Origin", "https://www.youtube.com")
	httpReq.Header.Set("Referer", "https://www.youtube.com/")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %d", httpResp.StatusCode)
	}

	var resp searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	results := extractSearchResults(&resp)
	log.Debug("Search completed", "query", query, "results", len(results))
	return results, nil
}

// extractSearchResults walks the renderer tree collecting video rows.
// Missing branches just yield fewer results, never an error.
func extractSearchResults(resp *searchResponse) []media.SearchResult {
	var results []media.SearchResult

	if resp == nil || resp.Contents == nil ||
		resp.Contents.TwoColumnSearchResultsRenderer == nil ||
		resp.Contents.TwoColumnSearchResultsRenderer.PrimaryContents == nil ||
		resp.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer == nil {
		return results
	}

	sections := resp.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, section := range sections {
		if section.ItemSectionRenderer == nil {
			continue
		}
		for _, item := range section.ItemSectionRenderer.Contents {
			vr := item.VideoRenderer
			if vr == nil || vr.VideoID == "" {
				continue
			}

			views := vr.ShortViewCountText.text()
			if views == "" {
				views = vr.ViewCountText.text()
			}

			results = append(results, media.SearchResult{
				ID:        vr.VideoID,
				Title:     vr.Title.GetText(),
				Channel:   vr.OwnerText.GetText(),
				Length:    vr.LengthText.text(),
				Views:     views,
				Published: vr.PublishedTimeText.text(),
			})
		}
	}
	return results
}
