package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/gatherly/gatherly-api/internal/models"
)

// UserLookup resolves user ids to users for message formatting.
type UserLookup interface {
	Get(id int64) (models.User, bool)
}

// EventLookup resolves event ids to events for message formatting.
type EventLookup interface {
	Get(id int64) (models.Event, bool)
}

// DiscordNotifier posts attendance changes to a Discord channel. It is an
// ordinary hub subscriber: send failures are logged and never propagated, so
// a Discord outage cannot affect registrations.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	users     UserLookup
	events    EventLookup
}

// NewDiscordNotifier builds a notifier from a bot token and channel id.
func NewDiscordNotifier(botToken, channelID string, users UserLookup, events EventLookup) (*DiscordNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	if channelID == "" {
		return nil, fmt.Errorf("discord channel ID is empty")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
		users:     users,
		events:    events,
	}, nil
}

// HandleChange is the hub handler. Session changes and note edits are
// skipped; they are not worth a channel message.
func (n *DiscordNotifier) HandleChange(c Change) {
	var headline string
	switch c.Kind {
	case ChangeRegistered:
		headline = "🎟️ **New Registration**"
	case ChangeCheckedIn:
		headline = "✅ **Checked In**"
	case ChangeCancelled:
		headline = "😢 **Registration Cancelled**"
	default:
		return
	}

	who := fmt.Sprintf("user #%d", c.UserID)
	if user, ok := n.users.Get(c.UserID); ok {
		who = fmt.Sprintf("%s (%s)", user.FullName(), user.Email)
	}
	what := fmt.Sprintf("event #%d", c.EventID)
	if event, ok := n.events.Get(c.EventID); ok {
		what = fmt.Sprintf("%s (%s)", event.Name, event.Date.Format("2006-01-02"))
	}

	message := fmt.Sprintf("%s\n**User:** %s\n**Event:** %s", headline, who, what)
	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		log.Printf("Failed to send discord message: %v", err)
	}
}
