package indexer

import (
	"errors"
	"fmt"

	"eternal-mint/common"
	"eternal-mint/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrUnknownEvent = errors.New("unknown event topic")

// indexedEvents contract events the indexer records
var indexedEvents = []string{
	model.EntityNftMinted,
	model.EntityRoleGranted,
	model.EntityRoleRevoked,
	model.EntityBatchDistribution,
	model.EntitySingleDistribution,
}

// EventDecoder turns raw contract logs into typed events
type EventDecoder struct {
	abi     abi.ABI
	byTopic map[ethcommon.Hash]abi.Event
}

// NewEventDecoder create decoder for the contract ABI
func NewEventDecoder() (*EventDecoder, error) {
	parsed, err := common.ContractABI()
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}
	d := &EventDecoder{abi: parsed, byTopic: make(map[ethcommon.Hash]abi.Event)}
	for _, name := range indexedEvents {
		ev, ok := parsed.Events[name]
		if !ok {
			return nil, fmt.Errorf("event %s missing from abi", name)
		}
		d.byTopic[ev.ID] = ev
	}
	return d, nil
}

// Topics event signature hashes, for the eth_getLogs topic filter
func (d *EventDecoder) Topics() []ethcommon.Hash {
	topics := make([]ethcommon.Hash, 0, len(indexedEvents))
	for _, name := range indexedEvents {
		topics = append(topics, d.abi.Events[name].ID)
	}
	return topics
}

// Decode decode lg; ErrUnknownEvent when topic0 is not an indexed event
func (d *EventDecoder) Decode(lg types.Log) (*LogEvent, error) {
	if len(lg.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	ev, ok := d.byTopic[lg.Topics[0]]
	if !ok {
		return nil, ErrUnknownEvent
	}

	var out interface{}
	switch ev.Name {
	case model.EntityNftMinted:
		out = &NftMintedEvent{}
	case model.EntityRoleGranted, model.EntityRoleRevoked:
		out = &RoleEvent{}
	case model.EntityBatchDistribution:
		out = &BatchDistributionEvent{}
	case model.EntitySingleDistribution:
		out = &SingleDistributionEvent{}
	}

	args, err := layout(ev, len(lg.Topics)-1)
	if err != nil {
		return nil, err
	}
	values, err := args.Unpack(lg.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s data: %w", ev.Name, err)
	}
	// Copy treats a single-input list as atomic; events here all have several inputs
	if err := args.Copy(out, values); err != nil {
		return nil, fmt.Errorf("copy %s data: %w", ev.Name, err)
	}
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopics(out, indexed, lg.Topics[1:]); err != nil {
		return nil, fmt.Errorf("parse %s topics: %w", ev.Name, err)
	}

	return &LogEvent{Name: ev.Name, Log: lg, Data: out}, nil
}

// layout returns ev's inputs flagged for a log carrying n topics after topic0.
// The signature hash does not cover `indexed`, so a deployment may index fewer
// or more leading parameters than the ABI says; when the count disagrees the
// first n inputs are taken as the indexed ones.
func layout(ev abi.Event, n int) (abi.Arguments, error) {
	declared := 0
	for _, arg := range ev.Inputs {
		if arg.Indexed {
			declared++
		}
	}
	if n < 0 || n > 3 || n > len(ev.Inputs) {
		return nil, fmt.Errorf("%s: unexpected %d indexed topics", ev.Name, n)
	}
	if declared == n {
		return ev.Inputs, nil
	}
	args := make(abi.Arguments, len(ev.Inputs))
	for i, arg := range ev.Inputs {
		arg.Indexed = i < n
		args[i] = arg
	}
	return args, nil
}
