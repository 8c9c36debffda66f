package backend

import "github.com/forPelevin/gomoji"

// StripEmojis removes emoji from visible model output.
func StripEmojis(text string) string {
	return gomoji.RemoveEmojis(text)
}
