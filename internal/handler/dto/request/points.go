package request

import "strings"

type AdjustPointsRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason" binding:"max=500"`
}

func (r AdjustPointsRequest) NormalizedReason() string {
	reason := strings.TrimSpace(r.Reason)
	if reason != "" {
		return reason
	}
	if r.Amount < 0 {
		return "Manual debit"
	}
	return "Manual credit"
}
