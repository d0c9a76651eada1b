package verification

// Outcome is the result of one check-in verification. The set is closed:
// every verification ends in exactly one of these tags, and the tags
// carry no payload.
type Outcome string

const (
	// OutcomeNotFound: no ticket row exists for the mint address.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeAlreadyUsed: the ticket was checked in before.
	OutcomeAlreadyUsed Outcome = "already_used"

	// OutcomeMintNotFound: the mint account no longer exists on-chain,
	// e.g. after a devnet reset.
	OutcomeMintNotFound Outcome = "mint_not_found"

	// OutcomeInvalidOwner: the recorded owner wallet does not currently
	// hold a positive-balance token account for the mint.
	OutcomeInvalidOwner Outcome = "invalid_owner"

	// OutcomeCheckedIn: the ticket was valid and is now marked used.
	OutcomeCheckedIn Outcome = "checked_in"
)

// Outcomes lists every possible outcome tag.
var Outcomes = []Outcome{
	OutcomeNotFound,
	OutcomeAlreadyUsed,
	OutcomeMintNotFound,
	OutcomeInvalidOwner,
	OutcomeCheckedIn,
}
