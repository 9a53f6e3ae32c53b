package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Embed layout. Field values are capped at the chat service limit.
const (
	MaxFieldValue = 1024
	EmbedColor    = 0x0000FF
	EmbedTitle    = "Crash Report"
)

// WebhookPayload is the JSON body of a chat webhook message.
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed is a rich message card.
type Embed struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField is one titled section of an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the small print under an Embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// BuildPayload wraps the embed of a report into a webhook message.
func BuildPayload(r *Report) WebhookPayload {
	return WebhookPayload{Embeds: []Embed{BuildEmbed(r)}}
}

// BuildEmbed renders a report as a message card with Info, OS and Crash fields.
func BuildEmbed(r *Report) Embed {
	c := r.Crash

	embed := Embed{
		Type:        "rich",
		Title:       EmbedTitle,
		Description: "A crash report has been detected.",
		Color:       EmbedColor,
		Fields: []EmbedField{
			{
				Name:  "Info",
				Value: truncate(fmt.Sprintf("Version: %s\nCommit: %s", c.Version, c.Commit), MaxFieldValue),
			},
			{
				Name:  "OS",
				Value: truncate(fmt.Sprintf("Type: %s\nGPU: %s", c.OS, c.GPU), MaxFieldValue),
			},
			{
				Name:  "Crash",
				Value: crashField(c.CrashReason, c.RelevantFrames),
			},
		},
	}

	if r.Metadata.Source != "" {
		text := r.Metadata.Source
		if r.Metadata.Platform != "" {
			text += " (" + r.Metadata.Platform + ")"
		}
		embed.Footer = &EmbedFooter{Text: truncate(text, 2048)}
	}

	return embed
}

// crashField renders the reason and a fenced frames block, dropping trailing
// frames until the value fits.
func crashField(reason string, frames []string) string {
	reason = truncate(reason, MaxFieldValue/2)

	for n := len(frames); n >= 0; n-- {
		block := strings.Join(frames[:n], "\n")
		if n < len(frames) {
			block += "\n..."
		}
		value := fmt.Sprintf("Reason: %s\n\n```\n%s\n```", reason, block)
		if len(value) <= MaxFieldValue {
			return value
		}
	}

	return truncate("Reason: "+reason, MaxFieldValue)
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	const ellipsis = "..."
	cut := n - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

// EmbedFormatter renders valid reports as webhook payloads.
type EmbedFormatter struct {
	opts FormatOptions
}

// NewEmbedFormatter creates a new embed formatter with the given options.
func NewEmbedFormatter(opts FormatOptions) *EmbedFormatter {
	return &EmbedFormatter{opts: opts}
}

// Name returns the format name.
func (f *EmbedFormatter) Name() string {
	return "embed"
}

// Format writes one payload per valid report as a JSON array.
func (f *EmbedFormatter) Format(ctx context.Context, report *BatchReport, w io.Writer) error {
	payloads := make([]WebhookPayload, 0, len(report.Reports))
	for _, r := range report.Reports {
		if r.Valid() {
			payloads = append(payloads, BuildPayload(r))
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payloads)
}
