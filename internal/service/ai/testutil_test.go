package ai

import "time"

var testTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
