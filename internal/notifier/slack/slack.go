package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/generator"
	"github.com/jmadsen/courtline/internal/metrics"
	"github.com/jmadsen/courtline/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendMatchNotification announces a confirmed match in the club channel.
func (s *Notifier) SendMatchNotification(match *club.ScheduledMatch, courtName string, dryRun bool) error {
	msg := s.formatMatchNotification(match, courtName)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendProposalDigest posts a summary of a generation run.
func (s *Notifier) SendProposalDigest(date string, proposals []generator.Proposal, dryRun bool) error {
	msg := s.formatProposalDigest(date, proposals)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatMatchNotification creates the Slack message for a confirmed match using Block Kit.
func (s *Notifier) formatMatchNotification(match *club.ScheduledMatch, courtName string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header - The Header block itself provides bolding. No asterisks needed.
	headerText := slack.NewTextBlockObject("plain_text", "🎾 Match confirmed! 🎾", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details - Use newlines for clear separation.
	if courtName == "" {
		courtName = match.CourtID
	}
	detailsText := fmt.Sprintf("Court: %s\nDate: %s\nTime: %s\nType: %s", courtName, match.Date, match.Time, match.Type)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Players
	names := match.PlayerNames
	if len(names) == 0 {
		names = match.PlayerIDs
	}
	var playerNames []string
	for _, name := range names {
		if name != "" {
			playerNames = append(playerNames, fmt.Sprintf("• %s", name))
		}
	}
	if len(playerNames) > 0 {
		playersText := "Players:\n" + strings.Join(playerNames, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playersText, true, false), nil, nil))
	}

	// Context - For simpler, single-line info.
	compatText := fmt.Sprintf("Compatibility score: %d", match.Score)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", compatText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatProposalDigest creates a Slack message summarising the proposals of one generation run.
func (s *Notifier) formatProposalDigest(date string, proposals []generator.Proposal) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🎾 Match proposals for %s 🎾", date), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(proposals) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No matches could be generated. Check player availability and court bookings.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, p := range proposals {
		proposalText := fmt.Sprintf("%s at %s on court %s (%s)\nPlayers: %s\nScore: %d",
			p.Date,
			p.Time,
			p.CourtID,
			p.Type,
			strings.Join(p.PlayerIDs, ", "),
			p.Score,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", proposalText, true, false), nil, nil))
	}

	// Context
	footerText := fmt.Sprintf("%d proposal(s). Confirm the ones that should go on the calendar.", len(proposals))
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", footerText, true, false)))

	return slack.NewBlockMessage(blocks...)
}
