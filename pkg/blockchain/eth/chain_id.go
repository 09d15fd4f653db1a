package eth

// ChainName returns a readable name for well known chain ids.
func ChainName(id int64) string {
	switch id {
	case 1:
		return "eth"
	case 5:
		return "goerli-testnet"
	case 97:
		return "binance-testnet"
	case 100:
		return "xdai"
	case 137:
		return "polygon"
	case 80001:
		return "polygon-testnet"
	case 11155111:
		return "sepolia-testnet"
	case 31337:
		return "drp-local"
	default:
		return "unknown"
	}
}
