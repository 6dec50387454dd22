package models

import (
	"errors"
	"strings"
)

// DistrictCodeLength is the length of a legal administrative district code
// (법정동코드): a 5-digit municipality prefix followed by a 5-digit sub-unit.
const DistrictCodeLength = 10

// ParcelIDLength is the length of a full parcel identifier (PNU). Its first
// ten digits are the district code of the parcel.
const ParcelIDLength = 19

var ErrInvalidDistrictCode = errors.New("district code must be exactly 10 digits")

// ParseDistrictCode validates a raw district code string.
func ParseDistrictCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if len(code) != DistrictCodeLength || !allDigits(code) {
		return "", ErrInvalidDistrictCode
	}
	return code, nil
}

// DistrictFromParcel derives a district code from a longer parcel identifier
// by truncating it to its first ten digits.
func DistrictFromParcel(parcelID string) (string, error) {
	id := strings.TrimSpace(parcelID)
	if len(id) < DistrictCodeLength {
		return "", ErrInvalidDistrictCode
	}
	return ParseDistrictCode(id[:DistrictCodeLength])
}

// MunicipalityCode returns the 5-digit municipality prefix used by the trade
// registry as its LAWD_CD query parameter.
func MunicipalityCode(districtCode string) string {
	if len(districtCode) < 5 {
		return districtCode
	}
	return districtCode[:5]
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
