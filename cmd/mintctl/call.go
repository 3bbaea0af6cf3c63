package main

import (
	"context"
	"fmt"
	"time"

	"eternal-mint/service/contract_service"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
)

var callTimeout time.Duration

var callCmd = &cobra.Command{
	Use:     "call <method> [args...]",
	Short:   "Run an allow-listed view call against the configured contract",
	GroupID: "chain",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
		defer cancel()

		client, err := ethclient.DialContext(ctx, cfg.Chain.RpcUrl)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", cfg.Chain.RpcUrl, err)
		}
		defer client.Close()

		reader, err := contract_service.NewContractReader(client, cfg.Contract.Address, nil, 0)
		if err != nil {
			return err
		}

		params := make([]interface{}, 0, len(args)-1)
		for _, a := range args[1:] {
			params = append(params, a)
		}
		res, err := reader.Call(ctx, args[0], params)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(res)
		}
		fmt.Printf("%s: %v\n", args[0], res.Result)
		return nil
	},
}

func init() {
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 30*time.Second, "RPC timeout")
}
