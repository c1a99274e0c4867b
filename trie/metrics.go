package trie

import "github.com/ethereum/go-ethereum/metrics"

var (
	hashCounter    = metrics.NewRegisteredCounter("trie/hash", nil)
	resolveCounter = metrics.NewRegisteredCounter("trie/resolve", nil)
)

func Hashes() int64 {
	return hashCounter.Count()
}

func Resolves() int64 {
	return resolveCounter.Count()
}
