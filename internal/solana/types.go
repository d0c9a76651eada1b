package solana

// Token program IDs. A wallet's holdings may live under either program,
// so ownership checks must probe both.
const (
	// TokenProgramID is the legacy SPL Token program.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

	// Token2022ProgramID is the Token-2022 program.
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
)

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// TokenAccount is one parsed token account returned by
// getTokenAccountsByOwner.
type TokenAccount struct {
	Pubkey   string // token account address
	Mint     string // mint this account holds
	Owner    string // wallet that owns the account
	Amount   uint64 // raw token amount (no decimal scaling)
	Decimals uint8
}
