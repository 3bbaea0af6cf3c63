package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eternal-mint/service/contract_service"
	"eternal-mint/service/distribution_service"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	distributeFlags planFlags
	distributeDry   bool
)

var distributeCmd = &cobra.Command{
	Use:     "distribute <csv-file>",
	Short:   "Validate a recipient CSV and submit it in paced batches with the configured signer",
	GroupID: "chain",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("max-recipients") && cfg.Distribution.MaxRecipients > 0 {
			distributeFlags.maxRecipients = cfg.Distribution.MaxRecipients
		}

		plan, err := distributeFlags.validatePlan(args[0])
		if err != nil {
			return err
		}
		if !plan.Valid {
			_ = printValidation(plan)
			return errInvalidList
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := ethclient.DialContext(ctx, cfg.Chain.RpcUrl)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", cfg.Chain.RpcUrl, err)
		}
		defer client.Close()

		writer, err := contract_service.NewContractWriter(client, cfg.Contract.Address, cfg.Chain.SignerKey, cfg.Chain.ChainID,
			contract_service.GasLimits{
				Mint:       cfg.Contract.GasLimitMint,
				Distribute: cfg.Contract.GasLimitDistribute,
				Transfer:   cfg.Contract.GasLimitTransfer,
			})
		if err != nil {
			return err
		}
		distributor := distribution_service.NewDistributor(writer, cfg.Distribution.BatchSize,
			time.Duration(cfg.Distribution.BatchDelayMs)*time.Millisecond)

		batches := distributor.TotalBatches(len(plan.Recipients))
		fmt.Printf("Distributing to %d recipients from %s in %d batches\n", len(plan.Recipients), writer.From().Hex(), batches)
		if distributeDry {
			return nil
		}

		bar := progressbar.NewOptions(batches,
			progressbar.OptionSetDescription("Submitting batches"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetRenderBlankState(true),
		)
		result, err := distributor.Run(ctx, plan, func(p distribution_service.BatchProgress) {
			_ = bar.Add(1)
		})
		_ = bar.Finish()
		fmt.Println()

		var runErr *distribution_service.RunError
		if errors.As(err, &runErr) {
			result = runErr.Result
		}
		if result != nil {
			for i, h := range result.TxHashes {
				fmt.Printf("batch %d: %s\n", i+1, h)
			}
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("interrupted: %w", err)
			}
			return err
		}
		return nil
	},
}

func init() {
	distributeFlags.register(distributeCmd)
	distributeCmd.Flags().BoolVar(&distributeDry, "dry-run", false, "validate and connect, but submit nothing")
}
