package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	goslack "github.com/slack-go/slack"
)

// Sender delivers rendered content to a destination channel.
type Sender interface {
	Send(ctx context.Context, channelID uint64, content *Content) error
}

// SlackSender delivers notifications as Slack attachments.
type SlackSender struct {
	client *goslack.Client
	logger *slog.Logger
}

// NewSlackSender creates a SlackSender. If botToken is empty, the sender is
// a noop (logging only), so local setups run without credentials.
func NewSlackSender(botToken string, logger *slog.Logger) *SlackSender {
	var client *goslack.Client
	if botToken != "" {
		client = goslack.New(botToken)
	}
	return &SlackSender{client: client, logger: logger}
}

// IsEnabled reports whether the sender has a real client.
func (s *SlackSender) IsEnabled() bool {
	return s.client != nil
}

// Send posts the content to the given channel.
func (s *SlackSender) Send(ctx context.Context, channelID uint64, content *Content) error {
	if !s.IsEnabled() {
		s.logger.Debug("slack sender disabled, skipping delivery",
			"channel_id", channelID, "title", content.Title)
		return nil
	}

	att := Attachment(content)
	opts := []goslack.MsgOption{
		goslack.MsgOptionAttachments(att),
		goslack.MsgOptionText(content.Title, false),
	}

	channel := strconv.FormatUint(channelID, 10)
	if _, _, err := s.client.PostMessageContext(ctx, channel, opts...); err != nil {
		return fmt.Errorf("posting notification to slack: %w", err)
	}
	return nil
}

// Attachment converts rendered content to a Slack attachment.
func Attachment(c *Content) goslack.Attachment {
	fields := make([]goslack.AttachmentField, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, goslack.AttachmentField{
			Title: f.Label,
			Value: f.Value,
		})
	}

	return goslack.Attachment{
		Title:    c.Title,
		Color:    c.Color.Hex(),
		Text:     c.Description,
		Fields:   fields,
		Footer:   c.FooterTime.Format(timeLayout),
		ThumbURL: c.ThumbnailURL,
		ImageURL: c.ImageURL,
	}
}
