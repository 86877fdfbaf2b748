package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
)

var (
	canonicalChannelRe = regexp.MustCompile(`youtube\.com/channel/(UC[a-zA-Z0-9_-]{22})`)

	// Checked in order: handle, custom name, legacy user name. Each yields a
	// token that has to be turned into a channel ID via search.
	searchablePatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/@([^/?&]+)`),
		regexp.MustCompile(`youtube\.com/c/([^/?&]+)`),
		regexp.MustCompile(`youtube\.com/user/([^/?&]+)`),
	}
)

// ResolveChannelID maps a channel URL to a stable channel ID. Canonical
// /channel/UC... URLs resolve without a network call; handle, custom-name
// and legacy-user URLs go through a single channel-type search.
func (c *Client) ResolveChannelID(ctx context.Context, url string) (string, error) {
	if m := canonicalChannelRe.FindStringSubmatch(url); m != nil {
		return m[1], nil
	}

	for _, pattern := range searchablePatterns {
		m := pattern.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		token := m[1]

		channelID, err := c.api.searchChannel(ctx, token)
		if err != nil {
			if errors.Is(err, ErrChannelNotFound) {
				return "", fmt.Errorf("%w: no channel matches %q", ErrChannelNotFound, token)
			}
			logrus.WithError(err).WithField("token", token).Error("Channel search failed")
			return "", fmt.Errorf("%w: search for %q: %v", ErrChannelNotFound, token, err)
		}
		return channelID, nil
	}

	return "", fmt.Errorf("%w: unrecognized channel URL %q", ErrChannelNotFound, url)
}
