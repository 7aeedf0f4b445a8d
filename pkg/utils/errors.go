package utils

import "errors"

// Sentinel errors that call sites branch on.
var (
	ErrProfileDecrypt = errors.New("profile decryption failed")
	ErrBlockedDomain  = errors.New("domain is blocked for scraping")
	ErrNotHTML        = errors.New("response is not HTML")
	ErrBodyTooLarge   = errors.New("response body exceeds size limit")
)
