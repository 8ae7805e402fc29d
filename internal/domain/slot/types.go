package slot

// Classification is derived against the clock on every evaluation and is
// never persisted.
type Classification string

const (
	ClassificationValid        Classification = "valid"
	ClassificationExpiringSoon Classification = "expiring_soon"
	ClassificationExpired      Classification = "expired"
)

func (c Classification) String() string {
	return string(c)
}

// Blocks reports whether this state prevents order submission.
func (c Classification) Blocks() bool {
	return c == ClassificationExpired
}
