package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/campus-engage/engage-api/internal/models"
)

type Notifier interface {
	NotifyRedemption(user models.User, gift models.Gift) error
}

// DiscordNotifier announces verified gift handoffs to the staff channel.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyRedemption(user models.User, gift models.Gift) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("🎁 **Gift Redeemed**\n**User:** %s (%s)\n**Gift:** %s (%s)\n**Cost:** %d points",
		user.FullName,
		user.Email,
		gift.Name,
		gift.Category,
		gift.PricePoints,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
