package models

// TokenRequest はトークン発行リクエスト
type TokenRequest struct {
	Nickname string `json:"nickname"`
}

// JoinRequest はセッションの開始・再開リクエスト。ParticipantCount が0なら設定値を使う
type JoinRequest struct {
	ParticipantCount int      `json:"participantCount"`
	Labels           []string `json:"labels"`
}

// AccuseRequest は犯人指名リクエスト
type AccuseRequest struct {
	ParticipantID *int `json:"participantId" binding:"required"`
}

// VerifyRequest は確認する証言の番号
type VerifyRequest struct {
	Index *int `json:"index" binding:"required"`
}
