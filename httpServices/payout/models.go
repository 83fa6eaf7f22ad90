package payout

// CreatePayoutRequest is the provider's payout body. Amount is in paise.
type CreatePayoutRequest struct {
	AccountReference string `json:"account_reference"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Mode             string `json:"mode"`
	Purpose          string `json:"purpose"`
	ReferenceID      string `json:"reference_id"`
	Narration        string `json:"narration"`
}

type PayoutResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	ReferenceID   string `json:"reference_id"`
	FailureReason string `json:"failure_reason"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}
