// Package store persists relayed messages for the web client's history view.
package store

import "context"

// Record is one relayed message as the web client sees it.
type Record struct {
	ID                string `json:"id"`
	OriginalText      string `json:"original_text"`
	TranslatedText    string `json:"translated_text"`
	Timestamp         int64  `json:"timestamp"`
	SenderID          string `json:"sender_id,omitempty"`
	SenderDisplayName string `json:"sender_display_name"`
	SenderAvatarURL   string `json:"sender_avatar_url,omitempty"`
	SentByCurrentUser bool   `json:"sent_by_current_user"`
}

// Store holds relayed messages in arrival order. Append may evict the oldest
// records past the backend's retention limit.
type Store interface {
	Append(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
	Count(ctx context.Context) (int, error)
}
