package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotDetector_Match(t *testing.T) {
	d := NewBotDetector()

	tests := []struct {
		ua    string
		name  string
		isBot bool
	}{
		{"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)", "facebook", true},
		{"Twitterbot/1.0", "twitter", true},
		{"LinkedInBot/1.0 (compatible; Mozilla/5.0)", "linkedin", true},
		{"WhatsApp/2.23.20.0", "whatsapp", true},
		{"TelegramBot (like TwitterBot)", "twitter", true},
		{"Slackbot-LinkExpanding 1.0", "slack", true},
		{"Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)", "discord", true},
		{"Pinterest/0.2 (+https://www.pinterest.com/bot.html)", "pinterest", true},
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", "google", true},
		{"Mozilla/5.0 (compatible; bingbot/2.0)", "bing", true},
		{"SomeCrawler/3.0", "generic", true},
		{"my-spider", "generic", true},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			name, ok := d.Match(tt.ua)
			assert.Equal(t, tt.isBot, ok)
			assert.Equal(t, tt.name, name)
		})
	}
}
