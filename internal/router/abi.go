package router

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// swapRouterABI covers the SaucerSwap V2 router methods the dispatcher packs:
// exactInput for the swap itself, multicall to combine it with the WHBAR
// unwrap/refund helpers needed for native-HBAR legs.
const swapRouterABI = `[
  {
    "name": "exactInput",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      {
        "name": "params",
        "type": "tuple",
        "components": [
          {"name": "path", "type": "bytes"},
          {"name": "recipient", "type": "address"},
          {"name": "deadline", "type": "uint256"},
          {"name": "amountIn", "type": "uint256"},
          {"name": "amountOutMinimum", "type": "uint256"}
        ]
      }
    ],
    "outputs": [{"name": "amountOut", "type": "uint256"}]
  },
  {
    "name": "multicall",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [{"name": "data", "type": "bytes[]"}],
    "outputs": [{"name": "results", "type": "bytes[]"}]
  },
  {
    "name": "unwrapWHBAR",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [
      {"name": "amountMinimum", "type": "uint256"},
      {"name": "recipient", "type": "address"}
    ],
    "outputs": []
  },
  {
    "name": "refundETH",
    "type": "function",
    "stateMutability": "payable",
    "inputs": [],
    "outputs": []
  }
]`

var routerABI = mustParseABI(swapRouterABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("router: invalid embedded ABI: " + err.Error())
	}
	return parsed
}
