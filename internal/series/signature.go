// Package series reconstructs acquisition series from per-file metadata.
package series

import (
	"maps"

	"github.com/rcliao/dcmgroup/internal/model"
)

// volatile attributes differ between slices of one physical series.
var volatile = map[string]bool{
	model.AttrOrientation:   true,
	model.AttrDeviceDims:    true,
	model.AttrPulseSequence: true,
}

// Signature is the part of a record compared when deciding "same series".
type Signature map[string]string

// SignatureOf derives the signature of md.
func SignatureOf(md *model.Metadata) Signature {
	sig := make(Signature, len(md.Attributes))
	for k, v := range md.Attributes {
		if volatile[k] {
			continue
		}
		sig[k] = v
	}
	return sig
}

// Equal reports field-wise equality.
func (s Signature) Equal(o Signature) bool {
	return maps.Equal(s, o)
}
