package usage

import "errors"

// ErrQuotaExceeded is returned when a caller has no generations left this month.
var ErrQuotaExceeded = errors.New("monthly generation quota exceeded")

// DefaultQuota is the number of itinerary generations granted per month.
const DefaultQuota = 20

// monthLayout formats the month a quota row was last reset in.
const monthLayout = "2006-01"
