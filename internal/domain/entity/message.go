package entity

const (
	MessageFieldTimestamp = "timestamp"
)

// Message is an append-only chat line in a user's conversation.
type Message struct {
	ID           string `firestore:"-" json:"id"`
	Text         string `firestore:"text" json:"text"`
	IsSentByUser bool   `firestore:"isSentByUser" json:"isSentByUser"`
	UserID       string `firestore:"userId" json:"userId"`
	Timestamp    int64  `firestore:"timestamp" json:"timestamp"` // unix milliseconds
}

// ConversationCollection returns the collection of a user's conversation.
func ConversationCollection(userID string) string {
	return "chats/" + userID + "/messages"
}
