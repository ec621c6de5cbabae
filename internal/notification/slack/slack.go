package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/qbpharma/deployctl/internal/config"
	"github.com/qbpharma/deployctl/internal/notification"
)

// Reporter sends the outcome of a deployment to slack.
type Reporter struct {
	Token  string
	Config config.Slack
	// APIURL overrides the slack API endpoint. Must end with a slash.
	APIURL string
}

func (r *Reporter) shouldSendNotification(passed bool) bool {
	if r.Token == "" || len(r.Config.Channels) == 0 {
		return false
	}
	return r.Config.Send.IsNow(passed)
}

// Notify posts e to all configured channels, if the configured condition is met.
// Delivery failures are logged and otherwise ignored.
func (r *Reporter) Notify(ctx context.Context, e notification.Event) {
	if !r.shouldSendNotification(e.Passed) {
		return
	}

	var opts []slack.Option
	if r.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(r.APIURL))
	}
	api := slack.New(r.Token, opts...)
	attachment := newMsg(e)

	for _, c := range r.Config.Channels {
		channelID, timestamp, err := api.PostMessageContext(ctx,
			c,
			slack.MsgOptionText(summary(e), false),
			slack.MsgOptionAttachments(attachment),
		)
		if err != nil {
			log.Error().Err(err).Str("channel", c).Msg("Failed to send message to slack.")
			continue
		}
		log.Info().Msgf("Message successfully sent to slack channel %s at %s", channelID, timestamp)
	}
}

func summary(e notification.Event) string {
	if e.Passed {
		return fmt.Sprintf("%s was deployed to %s", e.Site, e.Server)
	}
	return fmt.Sprintf("Deployment of %s to %s failed", e.Site, e.Server)
}

func newMsg(e notification.Event) slack.Attachment {
	color := "#F00000"
	if e.Passed {
		color = "#008000"
	}
	return slack.Attachment{
		Color:  color,
		Blocks: createBlocks(e),
	}
}

func createBlocks(e notification.Event) slack.Blocks {
	title := "Deployment succeeded"
	if !e.Passed {
		title = "Deployment failed"
	}
	header := slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false))

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Site*\n"+e.Site, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Server*\n"+e.Server, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Duration*\n"+e.Duration.Round(time.Millisecond).String(), false, false),
	}
	if e.URL != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*URL*\n"+e.URL, false, false))
	}
	if e.Origin != "" {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Origin*\n"+e.Origin, false, false))
	}
	blocks := []slack.Block{header, slack.NewSectionBlock(nil, fields, nil)}

	if e.Error != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("```%s```", e.Error), false, false), nil, nil))
	}

	return slack.Blocks{BlockSet: blocks}
}
