package distribution_service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"eternal-mint/conf"
)

// DistributionRequest body of the validate and start routes
type DistributionRequest struct {
	Mode               Mode   `json:"mode"`
	CSV                string `json:"csv"`
	TokenID            string `json:"tokenId"`            // single-nft only
	Balance            string `json:"balance"`            // single-nft only, skips the balance check when empty
	AmountToDistribute string `json:"amountToDistribute"` // single-nft only
}

// SingleRequest body of the single recipient route
type SingleRequest struct {
	TokenID   string `json:"tokenId"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// DistributionService CSV validation and distribution jobs
type DistributionService struct {
	maxRecipients int
	distributor   *Distributor
	jobs          *JobManager
}

// NewDistributionService create service; distributor nil leaves only validation enabled
func NewDistributionService(cfg conf.DistributionConfig, distributor *Distributor) *DistributionService {
	return &DistributionService{
		maxRecipients: cfg.MaxRecipients,
		distributor:   distributor,
		jobs:          NewJobManager(distributor),
	}
}

// options turn the request into parse options; a bad selection becomes a whole-file error
func (s *DistributionService) options(req *DistributionRequest) (ParseOptions, *ValidationError) {
	opts := ParseOptions{Mode: req.Mode, MaxRecipients: s.maxRecipients}
	if req.Mode != ModeSingleNFT {
		return opts, nil
	}

	amountStr := strings.TrimSpace(req.AmountToDistribute)
	if amountStr == "" {
		amountStr = "1"
	}
	amount, ok := ParsePositiveInt(amountStr)
	if !ok {
		return opts, &ValidationError{Value: req.AmountToDistribute, Message: fmt.Sprintf("Invalid amount to distribute: %s", req.AmountToDistribute)}
	}
	sel := &SelectedNFT{TokenID: strings.TrimSpace(req.TokenID), AmountToDistribute: amount}
	if b := strings.TrimSpace(req.Balance); b != "" {
		balance, ok := new(big.Int).SetString(b, 10)
		if !ok || balance.Sign() < 0 {
			return opts, &ValidationError{Value: req.Balance, Message: fmt.Sprintf("Invalid balance: %s", req.Balance)}
		}
		sel.Balance = balance
	}
	opts.Selected = sel
	return opts, nil
}

// Validate parse the CSV in req
func (s *DistributionService) Validate(req *DistributionRequest) *ParseResult {
	opts, verr := s.options(req)
	if verr != nil {
		return &ParseResult{Mode: req.Mode, Errors: []ValidationError{*verr}}
	}
	return ParseCSV(req.CSV, opts)
}

// Start validate and queue a distribution job; invalid lists come back with their errors
func (s *DistributionService) Start(req *DistributionRequest) (*Job, *ParseResult, error) {
	if !s.jobs.Enabled() {
		return nil, nil, ErrSignerNotEnabled
	}
	parsed := s.Validate(req)
	if !parsed.Valid {
		return nil, parsed, ErrInvalidPlan
	}
	job, err := s.jobs.Start(parsed)
	return job, parsed, err
}

// GetJob job status by id
func (s *DistributionService) GetJob(id string) (*Job, error) {
	return s.jobs.Get(id)
}

// DistributeSingle submit one distributeSingle call
func (s *DistributionService) DistributeSingle(ctx context.Context, req *SingleRequest) (string, error) {
	if s.distributor == nil {
		return "", ErrSignerNotEnabled
	}
	return s.distributor.DistributeSingle(ctx, strings.TrimSpace(req.TokenID), strings.TrimSpace(req.Recipient), strings.TrimSpace(req.Amount))
}

// Close stop running jobs
func (s *DistributionService) Close() {
	s.jobs.Close()
}
