package project

import (
	"strings"

	"github.com/minio/highwayhash"

	"viewck/internal/sema"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

var hashKey = []byte("viewck-cache-key-0123456789abcde")

// Combine строит хеш результата: H( content || part1 || part2 ... ).
// Порядок частей должен быть детерминированным.
func Combine(content Digest, parts ...[]byte) Digest {
	h, err := highwayhash.New(hashKey)
	if err != nil {
		// ключ фиксированной длины, сюда не попадаем
		panic(err)
	}
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write(p)
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// OptionsKey folds every setting that changes checker output into one
// digest, so cached results are keyed by content and configuration.
func OptionsKey(toolVersion string, opts *sema.Options) Digest {
	warn := "0"
	if opts.WarnRuntimeChecked {
		warn = "1"
	}
	return Digest(highwayhash.Sum([]byte(strings.Join([]string{
		toolVersion,
		opts.Liveness.String(),
		opts.DefaultParam.String(),
		opts.DefaultReceiver.String(),
		warn,
		strings.Join(opts.Frozen, ","),
	}, "\x00")), hashKey))
}
