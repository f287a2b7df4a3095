// ===============================
// internal/handlers/feed.go - RSS 2.0 Catalog Feed
// ===============================

package handlers

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"podcastbe/internal/config"
	"podcastbe/internal/metadata"
	"podcastbe/internal/models"
	"podcastbe/internal/services"

	"github.com/gin-gonic/gin"
)

// AssetResolver maps a recorded audio_url back to a local file when the
// asset store holds it on disk. Remote stores return an empty path.
type AssetResolver interface {
	Path(audioURL string) string
}

type FeedHandler struct {
	service  *services.EpisodeService
	resolver AssetResolver
	feed     config.FeedConfig
	baseURL  string
}

func NewFeedHandler(service *services.EpisodeService, resolver AssetResolver, feed config.FeedConfig, baseURL string) *FeedHandler {
	return &FeedHandler{
		service:  service,
		resolver: resolver,
		feed:     feed,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// GetFeed renders the whole catalog as an RSS 2.0 feed with iTunes extensions.
func (h *FeedHandler) GetFeed(c *gin.Context) {
	episodes, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Printf("Error: failed to list episodes for feed: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	data, err := h.buildFeed(episodes)
	if err != nil {
		log.Printf("Error: failed to build RSS feed: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

func (h *FeedHandler) buildFeed(episodes []models.Episode) ([]byte, error) {
	lastBuild := time.Now().UTC()
	if len(episodes) > 0 {
		lastBuild = episodes[0].CreatedAt.UTC()
	}

	rss := rssFeed{
		Version:  "2.0",
		AtomNS:   "http://www.w3.org/2005/Atom",
		ITunesNS: "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title:         h.feed.Title,
			Link:          h.baseURL,
			Description:   h.feed.Description,
			Language:      h.feed.Language,
			LastBuildDate: lastBuild.Format(time.RFC1123Z),
			Generator:     "podcastbe",
			ITunesAuthor:  h.feed.Author,
			AtomLink: rssAtomLink{
				Href: h.baseURL + "/feed.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
		},
	}

	for _, ep := range episodes {
		item := rssItem{
			Title:       ep.Title,
			Link:        h.resolveURL(ep.AudioURL),
			GUID:        rssGUID{IsPermaLink: "false", Value: fmt.Sprintf("episode-%d", ep.ID)},
			PubDate:     ep.CreatedAt.UTC().Format(time.RFC1123Z),
			Description: ep.DescriptionText(),
			Enclosure: rssEnclosure{
				URL:  h.resolveURL(ep.AudioURL),
				Type: "audio/mpeg",
			},
		}

		if h.resolver != nil {
			if path := h.resolver.Path(ep.AudioURL); path != "" {
				if info, err := os.Stat(path); err == nil {
					item.Enclosure.Length = info.Size()
				}
				if probed := metadata.Probe(path); probed.DurationSeconds > 0 {
					item.ITunesDuration = formatDuration(probed.DurationSeconds)
				}
			}
		}

		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), output...), nil
}

// resolveURL leaves absolute URLs alone and anchors relative asset paths to
// the configured public base URL.
func (h *FeedHandler) resolveURL(audioURL string) string {
	if strings.HasPrefix(audioURL, "http://") || strings.HasPrefix(audioURL, "https://") {
		return audioURL
	}
	return h.baseURL + "/" + strings.TrimLeft(audioURL, "/")
}

func formatDuration(seconds float64) string {
	total := int64(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate"`
	Generator     string      `xml:"generator"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	ITunesAuthor  string      `xml:"itunes:author,omitempty"`
	Items         []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Link           string       `xml:"link"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate,omitempty"`
	Description    string       `xml:"description"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}
