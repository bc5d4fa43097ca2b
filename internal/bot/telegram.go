package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// rateLimitedClient keeps outgoing calls under Telegram's global limit.
type rateLimitedClient struct {
	telegramClient
	limiter *rate.Limiter
}

func newRateLimitedClient(next telegramClient, perSecond float64) *rateLimitedClient {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedClient{telegramClient: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (c *rateLimitedClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return tgbotapi.Message{}, err
	}
	return c.telegramClient.Send(msg)
}

func (c *rateLimitedClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return nil, err
	}
	return c.telegramClient.Request(msg)
}
