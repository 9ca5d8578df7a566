package compress

import "fmt"

// Compress encodes and decodes stored document payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// Codec names as they appear in configuration and on stored documents.
const (
	CodecNop    = "nop"
	CodecGZip   = "gzip"
	CodecBrotli = "brotli"
)

// FromName returns the codec registered under the given name.
func FromName(name string) (Compress, error) {
	switch name {
	case CodecNop, "":
		return NewNop(), nil
	case CodecGZip:
		return NewGZip(), nil
	case CodecBrotli:
		return NewBrotli(), nil
	}
	return nil, fmt.Errorf("unknown compression codec %q", name)
}
