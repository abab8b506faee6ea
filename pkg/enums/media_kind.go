package enums

import "fmt"

// MediaKind categorizes uploaded objects so services can police attachment use.
type MediaKind string

const (
	MediaKindPropertyImage   MediaKind = "property_image"
	MediaKindClosureContract MediaKind = "closure_contract"
	MediaKindClosureVoucher  MediaKind = "closure_voucher"
	MediaKindAvatar          MediaKind = "avatar"
	MediaKindArxisDoc        MediaKind = "arxis_doc"
)

var validMediaKinds = []MediaKind{
	MediaKindPropertyImage,
	MediaKindClosureContract,
	MediaKindClosureVoucher,
	MediaKindAvatar,
	MediaKindArxisDoc,
}

// String implements fmt.Stringer.
func (m MediaKind) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MediaKind.
func (m MediaKind) IsValid() bool {
	for _, candidate := range validMediaKinds {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaKind converts raw input into a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	for _, candidate := range validMediaKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media kind %q", value)
}
