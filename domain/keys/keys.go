package keys

import (
	"encoding/binary"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// prefixes of the contract state partitions
var (
	PfxListings       = []byte("ls:")
	PfxProposals      = []byte("pr:")
	PfxOwnerIndex     = []byte("oi:")
	PfxOwnerSets      = []byte("os:")
	PfxMeta           = []byte("mt:")
	PfxBalances       = []byte("bl:")
	PfxStorage        = []byte("sb:")
	PfxTokens         = []byte("tk:")
	PfxTokenSupply    = []byte("ts:")
	PfxTokenOwnership = []byte("to:")
)

const (
	// PfxHealthCheck is used for prefixing health check redis key
	PfxHealthCheck = "healthcheck"
	// PfxHttpCache is used for prefixing cached http responses
	PfxHttpCache = "httpCache"
	// PfxTokenCache is used for prefixing cached token records
	PfxTokenCache = "token"
)

// Namespace derives a fixed size storage prefix for one owner or listing.
// The tag separates hash domains so two partitions never share a prefix.
func Namespace(tag string, parts ...string) []byte {
	buf := []byte(tag)
	for _, p := range parts {
		buf = append(buf, 0)
		buf = append(buf, p...)
	}
	return crypto.Keccak256(buf)
}

// NamespaceHex is the printable form of Namespace
func NamespaceHex(tag string, parts ...string) string {
	return hexutil.Encode(Namespace(tag, parts...))
}

// Join concatenates key components without separator
func Join(parts ...[]byte) []byte {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	res := make([]byte, 0, size)
	for _, p := range parts {
		res = append(res, p...)
	}
	return res
}

// Uint64 encodes n big endian so keys sort numerically
func Uint64(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

// ParseUint64 decodes the trailing 8 bytes written by Uint64
func ParseUint64(key []byte) uint64 {
	if len(key) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-8:])
}

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}

// GetPrefix extracts the prefix of a redis key, used as a metrics tag
func GetPrefix(key string) string {
	s := strings.Split(key, ":")
	if len(s) > 2 {
		return strings.Join([]string{s[0], s[1]}, ":")
	} else if len(s) > 1 {
		return s[0]
	}
	return ""
}
