package errorx

var Unknown = Error{Code: 100000, Message: "Request failed"}

var (
	ErrMissingWallet = New(MissingActor, "Wallet not connected")
	ErrNotLoggedIn   = New(Unauthenticated, "No active session")
)
