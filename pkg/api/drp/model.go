package drp

type VerificationStatus string

const (
	VerificationPending      VerificationStatus = "pending"
	VerificationApproved     VerificationStatus = "approved"
	VerificationRejected     VerificationStatus = "rejected"
	VerificationRequiresInfo VerificationStatus = "requires-info"
)

// ActivityClaim is a proof-of-activity submission. ActorID is the wallet
// address of the submitter.
type ActivityClaim struct {
	Title       string `json:"title" structs:"title"`
	Description string `json:"description" structs:"description"`
	Location    string `json:"location,omitempty" structs:"location,omitempty"`
	Timestamp   string `json:"timestamp" structs:"timestamp"`
	MediaCID    string `json:"media_cid" structs:"media_cid"`
	Hash        string `json:"hash" structs:"hash"`
	ActorID     string `json:"actor_id" structs:"actor_id"`
}

// StatusClaim is a proof-of-status submission.
type StatusClaim struct {
	Category      string `json:"category" structs:"category"`
	Issuer        string `json:"issuer" structs:"issuer"`
	ReferenceCode string `json:"reference_code,omitempty" structs:"reference_code,omitempty"`
	CredentialCID string `json:"credential_cid" structs:"credential_cid"`
	ActorID       string `json:"actor_id" structs:"actor_id"`
}

type SubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
	CID          string `json:"cid"`
	IPFSCID      string `json:"ipfs_cid"`
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
}

type RewardResult struct {
	Success      bool    `json:"success"`
	TxHash       string  `json:"tx_hash,omitempty"`
	RewardAmount float64 `json:"reward_amount,omitempty"`
	Message      string  `json:"message"`
}

type LeaderboardEntry struct {
	Address      string  `json:"address"`
	DisplayName  string  `json:"displayName"`
	TotalRewards float64 `json:"totalRewards"`
	ImpactScore  float64 `json:"impactScore"`
	Rank         int     `json:"rank"`
}

type RewardSummary struct {
	DeRi        float64 `json:"deri"`
	Rights      float64 `json:"rights"`
	Boosts      float64 `json:"boosts"`
	LastUpdated string  `json:"lastUpdated"`
}

// RewardLog is one entry of the reward history. Type is one of activity,
// status or boost; Token is $DeRi or $RIGHTS.
type RewardLog struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Token     string  `json:"token"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"createdAt"`
	TxHash    string  `json:"txHash,omitempty"`
}

// ActivityProof is the body of the verify-activity flow, sent after the
// evidence has been uploaded.
type ActivityProof struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
	Timestamp   string `json:"timestamp"`
	MediaCID    string `json:"mediaCid"`
	Hash        string `json:"hash"`
}

type StatusProof struct {
	Category      string `json:"category"`
	CredentialCID string `json:"credentialCid"`
	Issuer        string `json:"issuer"`
	ReferenceCode string `json:"referenceCode,omitempty"`
}

type Reward struct {
	Token  string  `json:"token"`
	Amount float64 `json:"amount"`
}

type VerificationResult struct {
	Status string  `json:"status"`
	Reward *Reward `json:"reward,omitempty"`
}

type Attestation struct {
	Category      string `json:"category"`
	Issuer        string `json:"issuer"`
	VerifiedAt    string `json:"verified_at"`
	CredentialCID string `json:"credential_cid"`
}

type StatusProfile struct {
	UserID         string        `json:"user_id"`
	PoSTScore      float64       `json:"post_score"`
	VerifiedStatus bool          `json:"verified_status"`
	Attestations   []Attestation `json:"attestations"`
	LastUpdated    string        `json:"last_updated"`
}

type Transaction struct {
	TxHash      string         `json:"tx_hash"`
	BlockNumber int64          `json:"block_number"`
	Timestamp   string         `json:"timestamp"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Value       string         `json:"value"`
	GasUsed     int64          `json:"gas_used"`
	Status      string         `json:"status"`
	Type        string         `json:"type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type TransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
}

// TransactionFilter narrows GetTransactions. Zero values are omitted.
type TransactionFilter struct {
	Page     int
	PageSize int
	Type     string
	Status   string
}

type ActivityRewards struct {
	DeRi   float64 `json:"deri"`
	Rights float64 `json:"rights"`
}

type ActivityFeedItem struct {
	ID                 string             `json:"id"`
	ActorID            string             `json:"actor_id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Location           string             `json:"location,omitempty"`
	Timestamp          string             `json:"timestamp"`
	MediaCID           string             `json:"media_cid,omitempty"`
	Hash               string             `json:"hash"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	AISummary          string             `json:"ai_summary,omitempty"`
	OrbitDBCID         string             `json:"orbitdb_cid,omitempty"`
	Rewards            *ActivityRewards   `json:"rewards,omitempty"`
}

type ActivityFeedResponse struct {
	Activities []ActivityFeedItem `json:"activities"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

type FeedFilter struct {
	Page     int
	PageSize int
	ActorID  string
}

type ElderReview struct {
	ElderID   string `json:"elder_id"`
	Decision  string `json:"decision"`
	Reasoning string `json:"reasoning"`
}

type AISummary struct {
	ActivityID         string             `json:"activity_id"`
	Summary            string             `json:"summary"`
	ConfidenceScore    float64            `json:"confidence_score"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	KeyPoints          []string           `json:"key_points"`
	GeneratedAt        string             `json:"generated_at"`
	ElderReview        *ElderReview       `json:"elder_review,omitempty"`
}

type RewardClaim struct {
	UserID       string  `json:"user_id"`
	SubmissionID string  `json:"submission_id"`
	DeRiAmount   float64 `json:"deri_amount"`
	RightsAmount float64 `json:"rights_amount"`
	TxHash       string  `json:"tx_hash,omitempty"`
	ClaimedAt    string  `json:"claimed_at"`
}

type TokenVerification struct {
	Valid bool     `json:"valid"`
	Roles []string `json:"roles"`
}
