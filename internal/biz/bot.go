package biz

import "regexp"

// BotSignature identifies a crawler or link-preview agent by its user agent.
type BotSignature struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultBotSignatures is evaluated in order: social unfurlers first so the
// matched name is the most specific one, then search crawlers, then generic
// tokens.
var DefaultBotSignatures = []BotSignature{
	{"facebook", regexp.MustCompile(`(?i)facebookexternalhit`)},
	{"facebook", regexp.MustCompile(`(?i)facebot`)},
	{"twitter", regexp.MustCompile(`(?i)twitterbot`)},
	{"linkedin", regexp.MustCompile(`(?i)linkedinbot`)},
	{"whatsapp", regexp.MustCompile(`(?i)whatsapp`)},
	{"telegram", regexp.MustCompile(`(?i)telegrambot`)},
	{"slack", regexp.MustCompile(`(?i)slackbot`)},
	{"discord", regexp.MustCompile(`(?i)discordbot`)},
	{"pinterest", regexp.MustCompile(`(?i)pinterest`)},
	{"google", regexp.MustCompile(`(?i)googlebot`)},
	{"bing", regexp.MustCompile(`(?i)bingbot`)},
	{"generic", regexp.MustCompile(`(?i)bot`)},
	{"generic", regexp.MustCompile(`(?i)crawler`)},
	{"generic", regexp.MustCompile(`(?i)spider`)},
}

// BotDetector classifies user agents. It is a heuristic, not a security check.
type BotDetector struct {
	signatures []BotSignature
}

// NewBotDetector creates a detector with DefaultBotSignatures.
func NewBotDetector() *BotDetector {
	return &BotDetector{signatures: DefaultBotSignatures}
}

// Match returns the name of the first matching signature.
func (d *BotDetector) Match(userAgent string) (string, bool) {
	if userAgent == "" {
		return "", false
	}
	for _, sig := range d.signatures {
		if sig.Pattern.MatchString(userAgent) {
			return sig.Name, true
		}
	}
	return "", false
}
