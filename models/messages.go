package models

// MediaAttachment is the single optional attachment on a chat message.
// Only bookkeeping lives here; the bytes themselves are uploaded elsewhere.
type MediaAttachment struct {
	Kind        string `dynamodbav:"kind" json:"kind"` // image, video, audio
	ObjectKey   string `dynamodbav:"objectKey" json:"objectKey"`
	MimeType    string `dynamodbav:"mimeType" json:"mimeType"`
	DurationSec int    `dynamodbav:"durationSec,omitempty" json:"durationSec,omitempty"`
}

// ChatMessage is immutable once stored, except that DeliveredAtMs/ReadAtMs on
// listings are computed at query time from the counterpart's read cursor.
type ChatMessage struct {
	MessageID     string           `dynamodbav:"messageId" json:"messageId"`
	ThreadKey     string           `dynamodbav:"threadKey" json:"threadKey"`
	Kind          string           `dynamodbav:"kind" json:"kind"`
	SenderKey     string           `dynamodbav:"senderKey" json:"senderKey"`
	RecipientKey  string           `dynamodbav:"recipientKey" json:"recipientKey"`
	Text          string           `dynamodbav:"text,omitempty" json:"text,omitempty"`
	Media         *MediaAttachment `dynamodbav:"media,omitempty" json:"media,omitempty"`
	CreatedAtMs   int64            `dynamodbav:"createdAtMs" json:"createdAtMs"`
	DeliveredAtMs int64            `dynamodbav:"deliveredAtMs" json:"deliveredAtMs"`
	ReadAtMs      int64            `dynamodbav:"readAtMs,omitempty" json:"readAtMs,omitempty"`
	ExpiresAtMs   int64            `dynamodbav:"expiresAtMs,omitempty" json:"expiresAtMs,omitempty"`
}

// ThreadSummary is one row of a thread listing: the counterpart plus the most
// recent still-live message exchanged with them.
type ThreadSummary struct {
	ThreadKey      string       `json:"threadKey"`
	Kind           string       `json:"kind"`
	CounterpartKey string       `json:"counterpartKey"`
	LastMessage    *ChatMessage `json:"lastMessage"`
}
