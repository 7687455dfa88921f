package cache

import "time"

const (
	ExpiryDefaultInMemory = 5 * time.Minute
)

const (
	// KeyActiveDiscountRules holds every active discount rule. Callers filter
	// by effective date in memory so one entry serves every issue date.
	KeyActiveDiscountRules = "discount_rules:active"
)
