// internal/domain/messaging/client.go
package messaging

// Client defines the one operation the dispatcher needs from the chat
// platform: deliver one rendered page of announcements to the configured
// channel. This keeps the application logic decoupled from the bot library.
type Client interface {
	SendPage(text string) error
}
