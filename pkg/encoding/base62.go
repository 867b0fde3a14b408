package encoding

import (
	"github.com/eknkc/basex"
)

const (
	// Base62Alphabet is the alphabet used for Base62 encoding.
	Base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// base62 is the Base62 encoder. It is safe for concurrent use.
var base62 *basex.Encoding

func init() {
	encoding, err := basex.NewEncoding(Base62Alphabet)
	if err != nil {
		panic("unable to initialize Base62 encoder")
	}
	base62 = encoding
}

// EncodeBase62 performs Base62 encoding. It is used to render opaque binary
// values, such as file identities, in a compact printable form.
func EncodeBase62(value []byte) string {
	return base62.Encode(value)
}

// DecodeBase62 performs Base62 decoding.
func DecodeBase62(value string) ([]byte, error) {
	return base62.Decode(value)
}
