package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	ethAddrRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	ethHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("eth_addr", validateEthAddr)
		_ = v.RegisterValidation("eth_hash", validateEthHash)
	}
}

// validateEthAddr accepts 0x-prefixed 20-byte hex addresses.
func validateEthAddr(fl validator.FieldLevel) bool {
	return ethAddrRe.MatchString(fl.Field().String())
}

// validateEthHash accepts 0x-prefixed 32-byte hex hashes.
func validateEthHash(fl validator.FieldLevel) bool {
	return ethHashRe.MatchString(fl.Field().String())
}

// IsEthAddress reports whether s is a well-formed hex address. Handlers use
// it for path and query parameters that bypass struct binding.
func IsEthAddress(s string) bool {
	return ethAddrRe.MatchString(s)
}

// IsEthHash reports whether s is a well-formed transaction hash.
func IsEthHash(s string) bool {
	return ethHashRe.MatchString(s)
}
