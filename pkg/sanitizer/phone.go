package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegions are tried in order for numbers written without a country code.
var DefaultRegions = []string{
	"US",
	"IL",
}

func NormalizePhone(phone string, regions ...string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}
	if len(regions) == 0 {
		regions = DefaultRegions
	}

	for _, region := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsPossibleNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return phone
}
