package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// ERC-20 Transfer(address indexed from, address indexed to, uint256 value)
const erc20TransferABI = `[{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"}]`

// TransferTopic is keccak256("Transfer(address,address,uint256)").
var TransferTopic = mustTransferTopic()

func mustTransferTopic() common.Hash {
	parsed, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		panic(fmt.Sprintf("failed to parse Transfer event ABI: %v", err))
	}
	return parsed.Events["Transfer"].ID
}

// TransferFilter builds the query for transfers of token received by
// recipient from fromBlock up to latest. The sender topic is a wildcard.
func TransferFilter(token, recipient common.Address, fromBlock uint64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   nil, // latest
		Addresses: []common.Address{token},
		Topics: [][]common.Hash{
			{TransferTopic},
			nil,
			{common.BytesToHash(recipient.Bytes())},
		},
	}
}

// DecodeTransfer maps a raw Transfer log onto the domain event. The amount
// stays as raw bytes; summing is the aggregator's job.
func DecodeTransfer(l types.Log) (domain.TransferEvent, error) {
	if len(l.Topics) < 3 || l.Topics[0] != TransferTopic {
		return domain.TransferEvent{}, fmt.Errorf("%w: tx %s index %d has %d topics", domain.ErrMalformedLog, l.TxHash.Hex(), l.Index, len(l.Topics))
	}
	return domain.TransferEvent{
		Sender:      common.BytesToAddress(l.Topics[1].Bytes()),
		Recipient:   common.BytesToAddress(l.Topics[2].Bytes()),
		Data:        l.Data,
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
	}, nil
}
