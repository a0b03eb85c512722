package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/commandeer/pkg/retrylimit"
)

// maxMessageLength is Discord's limit on message content, in characters.
const maxMessageLength = 2000

// Messenger sends plain text messages, splitting anything over the length
// limit on line boundaries.
type Messenger struct {
	s       *discordgo.Session
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
}

func newMessenger(s *discordgo.Session) *Messenger {
	return &Messenger{
		s:       s,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		retry:   retrylimit.DefaultConfig(),
	}
}

func (m *Messenger) Send(ctx context.Context, channelID, content string) error {
	for _, part := range chunk(content, maxMessageLength) {
		err := retrylimit.Do(ctx, m.retry, m.limiter, func() error {
			_, err := m.s.ChannelMessageSend(channelID, part, discordgo.WithContext(ctx))
			return classify(err)
		})
		if err != nil {
			return fmt.Errorf("send to %s: %w", channelID, err)
		}
	}
	return nil
}

// restStatus exposes the HTTP status of a discordgo REST error.
type restStatus struct {
	*discordgo.RESTError
}

func (r restStatus) StatusCode() int { return r.Response.StatusCode }

// classify marks client errors other than 429 as fatal so they are not
// retried.
func classify(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return err
	}
	code := rest.Response.StatusCode
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return retrylimit.Fatal(err)
	}
	return restStatus{rest}
}

// chunk splits content into pieces of at most limit runes, breaking after
// the last newline that fits when there is one.
func chunk(content string, limit int) []string {
	var parts []string
	runes := []rune(content)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > 1; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
