package webhook

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	redditBaseURL = "https://www.reddit.com"
	redditIconURL = "https://www.redditstatic.com/desktop2x/img/favicon/android-icon-192x192.png"

	// Reddit's snoo orange, used as the embed accent.
	embedColor = 0xFF4500

	// Discord rejects embed titles over 256 characters and we keep selftext
	// previews short regardless of Discord's own description cap.
	maxTitleLen   = 256
	maxPreviewLen = 300
)

type discordMessage struct {
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Content   string         `json:"content,omitempty"`
	Embeds    []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Author      *embedAuthor `json:"author,omitempty"`
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []embedField `json:"fields,omitempty"`
	Thumbnail   *embedMedia  `json:"thumbnail,omitempty"`
	Image       *embedMedia  `json:"image,omitempty"`
	Footer      *embedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type embedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedMedia struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

func (c *Client) buildMessage(p Payload) discordMessage {
	created := time.Unix(p.CreatedUTC, 0).UTC()

	embed := discordEmbed{
		Author: &embedAuthor{
			Name: "u/" + p.Author,
			URL:  redditBaseURL + "/u/" + p.Author,
		},
		Title:       truncate(p.Title, maxTitleLen),
		URL:         redditBaseURL + p.Permalink,
		Description: truncate(p.SelfText, maxPreviewLen),
		Color:       embedColor,
		Fields: []embedField{
			{Name: "Score", Value: strconv.Itoa(p.Score), Inline: true},
			{Name: "Posted", Value: humanize.Time(created), Inline: true},
		},
		Thumbnail: &embedMedia{URL: redditIconURL},
		Footer:    &embedFooter{Text: "r/" + p.Subreddit},
		Timestamp: created.Format(time.RFC3339),
	}

	if isImageURL(p.URL) {
		embed.Image = &embedMedia{URL: p.URL}
	}

	return discordMessage{
		Username:  c.username,
		AvatarURL: c.avatarURL,
		Content:   fmt.Sprintf("New post on r/%s", p.Subreddit),
		Embeds:    []discordEmbed{embed},
	}
}

var imageHosts = map[string]bool{
	"i.redd.it":   true,
	"i.imgur.com": true,
}

func isImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if imageHosts[u.Host] {
		return true
	}
	path := strings.ToLower(u.Path)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
