package slack

// AuthIdentity is the identity the configured token authenticates as.
type AuthIdentity struct {
	UserID string
	User   string
	Team   string
}

// Message is one entry from the channel history. Timestamp doubles as the
// channel-unique message id ("ts" in the wire format).
type Message struct {
	ID        string
	Timestamp float64
	Text      string
	AuthorID  string
	Automated bool
}

// UserProfile carries the raw name and avatar fields a profile lookup
// returns. AvatarVariants is ordered largest image first.
type UserProfile struct {
	RealName       string
	DisplayName    string
	LoginName      string
	AvatarVariants []string
}

type PostResult struct {
	ID string
}

type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type historyResponse struct {
	envelope
	Messages []wireMessage `json:"messages"`
}

type wireMessage struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	TS      string `json:"ts"`
	Text    string `json:"text"`
	User    string `json:"user"`
	BotID   string `json:"bot_id"`
}

type userInfoResponse struct {
	envelope
	User wireUser `json:"user"`
}

type wireUser struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	RealName string      `json:"real_name"`
	Profile  wireProfile `json:"profile"`
}

type wireProfile struct {
	DisplayName string `json:"display_name"`
	Image512    string `json:"image_512"`
	Image192    string `json:"image_192"`
	Image72     string `json:"image_72"`
	Image48     string `json:"image_48"`
}

type authTestResponse struct {
	envelope
	UserID string `json:"user_id"`
	User   string `json:"user"`
	Team   string `json:"team"`
}

type postMessageResponse struct {
	envelope
	TS string `json:"ts"`
}
