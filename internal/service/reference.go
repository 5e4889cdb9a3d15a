package service

import (
	"regexp"
	"strings"
)

// TransferType is the payment-network transfer kind embedded in a reference string.
type TransferType string

const (
	TransferP2P TransferType = "P2P"
	TransferP2M TransferType = "P2M"
	TransferP2V TransferType = "P2V"
)

// ReferenceDescriptor holds what could be read from a structured payment reference such as
// UPI/005722738967/P2V/7250963600@ybl/SONU SRIVASTA.
type ReferenceDescriptor struct {
	BeneficiaryID   string
	BeneficiaryName string
	TransferType    TransferType
	IsStructured    bool
}

var (
	referencePattern = regexp.MustCompile(`(?i)UPI/([^/]+)/(P2[VMP])/([^/]+)@([^/]+)/(.+)`)
	transferPatterns = []struct {
		kind    TransferType
		pattern *regexp.Regexp
	}{
		{TransferP2V, regexp.MustCompile(`(?i)P2V`)},
		{TransferP2M, regexp.MustCompile(`(?i)P2M`)},
		{TransferP2P, regexp.MustCompile(`(?i)P2P`)},
	}
)

// ParseReference extracts payment-network metadata from a transaction description.
func ParseReference(description string) ReferenceDescriptor {
	m := referencePattern.FindStringSubmatch(description)
	if m == nil {
		if strings.Contains(strings.ToUpper(description), "UPI") {
			return ReferenceDescriptor{
				IsStructured:    true,
				BeneficiaryName: fallbackBeneficiaryName(description),
				TransferType:    fallbackTransferType(description),
			}
		}
		return ReferenceDescriptor{}
	}

	return ReferenceDescriptor{
		IsStructured:    true,
		BeneficiaryID:   strings.ToLower(m[4]),
		BeneficiaryName: strings.TrimSpace(m[5]),
		TransferType:    TransferType(strings.ToUpper(m[2])),
	}
}

func fallbackBeneficiaryName(description string) string {
	parts := strings.Split(description, "/")
	if last := strings.TrimSpace(parts[len(parts)-1]); len(last) > 2 {
		return last
	}

	if at := strings.Index(description, "@"); at > -1 {
		afterAt := description[at+1:]
		if slash := strings.Index(afterAt, "/"); slash > -1 {
			return strings.TrimSpace(afterAt[slash+1:])
		}
	}
	return ""
}

func fallbackTransferType(description string) TransferType {
	for _, tp := range transferPatterns {
		if tp.pattern.MatchString(description) {
			return tp.kind
		}
	}
	return ""
}
