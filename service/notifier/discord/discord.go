// Package discord posts completed sales to a discord channel
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/domain/activity"
)

type Config struct {
	BotKey    string
	ChannelId string
	// link to the listing page, formatted with the listing id
	ListingUrlFormat string
}

type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type notifier struct {
	config  Config
	discord sender
}

func New(config Config) (activity.Notifier, error) {
	discord, err := discordgo.New(fmt.Sprintf("Bot %s", config.BotKey))
	if err != nil {
		return nil, err
	}
	return &notifier{config, discord}, nil
}

func (n *notifier) NotifySale(c ctx.Ctx, a *activity.Activity) error {
	msg := saleEmbed(n.config, a)
	if _, err := n.discord.ChannelMessageSendEmbed(n.config.ChannelId, msg); err != nil {
		c.WithField("err", err).Error("discord.ChannelMessageSendEmbed failed")
		return err
	}
	return nil
}

func saleEmbed(config Config, a *activity.Activity) *discordgo.MessageEmbed {
	msg := &discordgo.MessageEmbed{
		Title: "Item sold!",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Listing", Value: a.Listing},
			{Name: "Seller", Value: a.To.String()},
			{Name: "Buyer", Value: a.Account.String()},
			{Name: "Price", Value: a.Price},
		},
	}
	if len(a.TokenId) > 0 {
		msg.Fields = append(msg.Fields, &discordgo.MessageEmbedField{Name: "Token", Value: a.TokenId})
	}
	if len(config.ListingUrlFormat) > 0 {
		msg.Description = fmt.Sprintf(config.ListingUrlFormat, a.Listing)
	}
	return msg
}
