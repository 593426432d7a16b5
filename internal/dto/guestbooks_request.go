package dto

type WriteGuestbookRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
	Text     string `json:"text"`
}

type ReplyGuestbookRequest struct {
	ReplyText string `json:"replyText"`
}

type DeleteGuestbookRequest struct {
	Password string `json:"password"`
}
