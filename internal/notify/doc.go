// Package notify delivers alert messages to a Telegram chat via the Bot API.
//
// Telegram wraps the two methods the monitor needs: getMe (startup token
// check) and sendMessage with MarkdownV2 formatting. API-level errors
// (ok=false envelopes) are surfaced as regular errors with the API's
// description attached.
//
// EscapeMarkdown handles MarkdownV2's reserved-character set. Escaping is
// the caller's job and must happen exactly once per raw label.
package notify
