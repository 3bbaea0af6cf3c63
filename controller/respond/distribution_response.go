package respond

import (
	"eternal-mint/service/distribution_service"
)

// ValidationResponse parsed recipient list and its errors
type ValidationResponse struct {
	Valid          bool     `json:"valid" example:"true"`
	Mode           string   `json:"mode" example:"custom"`
	RecipientCount int      `json:"recipientCount" example:"2"`
	Recipients     []string `json:"recipients"`
	TokenIDs       []string `json:"tokenIds"`
	Amounts        []string `json:"amounts"`
	Errors         []string `json:"errors"`
}

// DistributionStartResponse queued job plus the list it will submit
type DistributionStartResponse struct {
	Job        *distribution_service.Job `json:"job"`
	Validation ValidationResponse        `json:"validation"`
}

// SingleDistributionResponse hash of a distributeSingle submission
type SingleDistributionResponse struct {
	TxHash string `json:"txHash" example:"0x5f0c..."`
}

// ToValidationResponse convert a parse result
func ToValidationResponse(res *distribution_service.ParseResult) ValidationResponse {
	nonNil := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return ValidationResponse{
		Valid:          res.Valid,
		Mode:           string(res.Mode),
		RecipientCount: len(res.Recipients),
		Recipients:     nonNil(res.Recipients),
		TokenIDs:       nonNil(res.TokenIDs),
		Amounts:        nonNil(res.Amounts),
		Errors:         res.Messages(),
	}
}
