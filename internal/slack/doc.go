// Package slack implements the bot's Slack boundary.
//
// It verifies slash-command request signatures, classifies the command
// text, renders computed free slots into Block Kit messages, and delivers
// responses to the command's response_url. The rest of the codebase never
// touches Slack wire formats directly.
//
// Messages are rendered in Japanese, matching the team the bot serves.
// Free-slot search results are posted in_channel so the whole channel sees
// the shared availability; help and error messages stay ephemeral.
package slack
