package request

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCash     PaymentMethod = "cash"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentTransfer, PaymentCash:
		return PaymentMethod(s), nil
	}
	return "", ErrInvalidPaymentMethod
}

func (m PaymentMethod) String() string {
	return string(m)
}

// ProofReference is the globally unique payment proof number. Stored
// normalized so "trx-001" and "TRX-001" collide.
type ProofReference string

func NewProofReference(raw string) ProofReference {
	return ProofReference(strings.ToUpper(strings.TrimSpace(raw)))
}

func (p ProofReference) IsZero() bool {
	return p == ""
}

func (p ProofReference) String() string {
	return string(p)
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewRequestCode builds a human-facing code like REQ-20250114-X7K2M.
func NewRequestCode(now time.Time) string {
	return fmt.Sprintf("REQ-%s-%s", now.Format("20060102"), randomSuffix(5))
}

// NewEnrollmentCode builds a code for enrollments derived from approval.
func NewEnrollmentCode(now time.Time) string {
	return fmt.Sprintf("ENR-%s-%s", now.Format("20060102"), randomSuffix(5))
}

func randomSuffix(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for range n {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is unrecoverable for code generation
			panic(err)
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String()
}
