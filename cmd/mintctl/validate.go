package main

import (
	"errors"
	"fmt"
	"os"

	"eternal-mint/conf"
	"eternal-mint/controller/respond"
	"eternal-mint/service/distribution_service"

	"github.com/spf13/cobra"
)

var errInvalidList = errors.New("recipient list is invalid")

type planFlags struct {
	mode          string
	tokenID       string
	balance       string
	amount        string
	maxRecipients int
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", string(distribution_service.ModeSingleNFT), "CSV layout: single-nft or custom")
	cmd.Flags().StringVar(&f.tokenID, "token-id", "", "token to distribute (single-nft)")
	cmd.Flags().StringVar(&f.balance, "balance", "", "distributor balance of the token, skips the check when empty (single-nft)")
	cmd.Flags().StringVar(&f.amount, "amount", "1", "amount per recipient (single-nft)")
	cmd.Flags().IntVar(&f.maxRecipients, "max-recipients", distribution_service.DefaultMaxRecipients, "upper bound for one list")
}

// validatePlan reads path and checks it the way the validate route does
func (f *planFlags) validatePlan(path string) (*distribution_service.ParseResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	svc := distribution_service.NewDistributionService(conf.DistributionConfig{MaxRecipients: f.maxRecipients}, nil)
	defer svc.Close()
	return svc.Validate(&distribution_service.DistributionRequest{
		Mode:               distribution_service.Mode(f.mode),
		CSV:                string(content),
		TokenID:            f.tokenID,
		Balance:            f.balance,
		AmountToDistribute: f.amount,
	}), nil
}

func printValidation(res *distribution_service.ParseResult) error {
	if jsonOutput {
		return printJSON(respond.ToValidationResponse(res))
	}
	if res.Valid {
		fmt.Printf("✅ %d recipients ready (%s)\n", len(res.Recipients), res.Mode)
		return nil
	}
	for _, msg := range res.Messages() {
		fmt.Printf("❌ %s\n", msg)
	}
	return nil
}

var validateFlags planFlags

var validateCmd = &cobra.Command{
	Use:     "validate <csv-file>",
	Short:   "Check a recipient CSV without submitting anything",
	GroupID: "offline",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := validateFlags.validatePlan(args[0])
		if err != nil {
			return err
		}
		if err := printValidation(res); err != nil {
			return err
		}
		if !res.Valid {
			return errInvalidList
		}
		return nil
	},
}

func init() {
	validateFlags.register(validateCmd)
}
