package domain

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/decentralizedrights/portal/internal/wallet"
	"github.com/decentralizedrights/portal/pkg/api/drp"
	"github.com/decentralizedrights/portal/pkg/api/elder"
	"github.com/decentralizedrights/portal/pkg/api/orbit"
	"github.com/decentralizedrights/portal/pkg/api/pinata"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/fatih/structs"
	"golang.org/x/crypto/sha3"
)

// LedgerDB is the OrbitDB log mirroring every accepted submission.
const LedgerDB = "drp_network"

// Evidence is a file backing a proof.
type Evidence struct {
	Name    string
	Content io.Reader
}

type ActivityInput struct {
	Title       string
	Description string
	Location    string

	// Timestamp is RFC 3339; empty means now.
	Timestamp string
	Media     Evidence
}

type StatusInput struct {
	Category      string
	Issuer        string
	ReferenceCode string
	Credential    Evidence
}

type ProofResult struct {
	Submission drp.SubmissionResponse `json:"submission"`
	CID        string                 `json:"cid"`
	Hash       string                 `json:"hash"`
	GatewayURL string                 `json:"gatewayUrl"`
}

type ledgerEntry struct {
	Kind         string `json:"kind"`
	SubmissionID string `json:"submission_id"`
	CID          string `json:"cid"`
	Hash         string `json:"hash"`
	ActorID      string `json:"actor_id"`
}

type ProofDomain interface {
	SubmitActivity(context.Context, ActivityInput) (*ProofResult, error)
	SubmitStatus(context.Context, StatusInput) (*ProofResult, error)
	VerifyActivity(context.Context, ActivityInput) (*drp.VerificationResult, error)
	VerifyStatus(context.Context, StatusInput) (*drp.VerificationResult, error)
	PreVerifyActivity(context.Context, drp.ActivityClaim) (*elder.Verdict, error)
	PreVerifyStatus(context.Context, drp.StatusClaim) (*elder.Verdict, error)
	Ledger(context.Context) ([]orbit.Record, error)
	GatewayURL(cid string) string
}

// CurrentWallet is implemented by *wallet.Manager.
type CurrentWallet interface {
	Current(ctx context.Context) (wallet.Wallet, error)
}

type proofDomain struct {
	drpEndpoint    drp.IEndpoint
	elderEndpoint  elder.IEndpoint
	orbitEndpoint  orbit.IEndpoint
	pinataEndpoint pinata.IEndpoint
	wallets        CurrentWallet
	gateway        string
	now            func() time.Time
}

func NewProofDomain(
	drpEndpoint drp.IEndpoint,
	elderEndpoint elder.IEndpoint,
	orbitEndpoint orbit.IEndpoint,
	pinataEndpoint pinata.IEndpoint,
	wallets CurrentWallet,
	gateway string,
) *proofDomain {
	return &proofDomain{
		drpEndpoint:    drpEndpoint,
		elderEndpoint:  elderEndpoint,
		orbitEndpoint:  orbitEndpoint,
		pinataEndpoint: pinataEndpoint,
		wallets:        wallets,
		gateway:        strings.TrimRight(gateway, "/"),
		now:            time.Now,
	}
}

func (d *proofDomain) SubmitActivity(ctx context.Context, input ActivityInput) (*ProofResult, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errorx.New(errorx.BadRequest, "Activity title is required")
	}

	w, err := d.wallets.Current(ctx)
	if err != nil {
		return nil, err
	}

	cid, hash, err := d.pin(ctx, input.Media)
	if err != nil {
		return nil, err
	}

	timestamp := input.Timestamp
	if timestamp == "" {
		timestamp = d.now().UTC().Format(time.RFC3339)
	}

	claim := drp.ActivityClaim{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Timestamp:   timestamp,
		MediaCID:    cid,
		Hash:        hash,
		ActorID:     w.Address,
	}

	submission, err := d.drpEndpoint.SubmitActivity(ctx, claim)
	if err != nil {
		return nil, err
	}

	d.record(ctx, ledgerEntry{
		Kind:         "activity",
		SubmissionID: submission.SubmissionID,
		CID:          cid,
		Hash:         hash,
		ActorID:      w.Address,
	})

	return &ProofResult{Submission: submission, CID: cid, Hash: hash, GatewayURL: d.GatewayURL(cid)}, nil
}

func (d *proofDomain) SubmitStatus(ctx context.Context, input StatusInput) (*ProofResult, error) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, errorx.New(errorx.BadRequest, "Status category is required")
	}

	w, err := d.wallets.Current(ctx)
	if err != nil {
		return nil, err
	}

	cid, hash, err := d.pin(ctx, input.Credential)
	if err != nil {
		return nil, err
	}

	submission, err := d.drpEndpoint.SubmitStatus(ctx, drp.StatusClaim{
		Category:      input.Category,
		Issuer:        input.Issuer,
		ReferenceCode: input.ReferenceCode,
		CredentialCID: cid,
		ActorID:       w.Address,
	})
	if err != nil {
		return nil, err
	}

	d.record(ctx, ledgerEntry{
		Kind:         "status",
		SubmissionID: submission.SubmissionID,
		CID:          cid,
		Hash:         hash,
		ActorID:      w.Address,
	})

	return &ProofResult{Submission: submission, CID: cid, Hash: hash, GatewayURL: d.GatewayURL(cid)}, nil
}

// VerifyActivity uploads the media to the verification service and asks it
// to verify the activity.
func (d *proofDomain) VerifyActivity(ctx context.Context, input ActivityInput) (*drp.VerificationResult, error) {
	data, hash, err := readEvidence(input.Media)
	if err != nil {
		return nil, err
	}

	cid, err := d.drpEndpoint.UploadActivityMedia(ctx, input.Media.Name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	timestamp := input.Timestamp
	if timestamp == "" {
		timestamp = d.now().UTC().Format(time.RFC3339)
	}

	result, err := d.drpEndpoint.VerifyActivity(ctx, drp.ActivityProof{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Timestamp:   timestamp,
		MediaCID:    cid,
		Hash:        hash,
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (d *proofDomain) VerifyStatus(ctx context.Context, input StatusInput) (*drp.VerificationResult, error) {
	data, _, err := readEvidence(input.Credential)
	if err != nil {
		return nil, err
	}

	cid, err := d.drpEndpoint.UploadStatusCredential(ctx, input.Credential.Name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	result, err := d.drpEndpoint.VerifyStatus(ctx, drp.StatusProof{
		Category:      input.Category,
		CredentialCID: cid,
		Issuer:        input.Issuer,
		ReferenceCode: input.ReferenceCode,
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// PreVerifyActivity asks the AI elder for an advisory verdict before the
// claim is submitted.
func (d *proofDomain) PreVerifyActivity(ctx context.Context, claim drp.ActivityClaim) (*elder.Verdict, error) {
	verdict, err := d.elderEndpoint.Verify(ctx, elder.KindActivity, structs.Map(claim))
	if err != nil {
		return nil, err
	}

	return &verdict, nil
}

func (d *proofDomain) PreVerifyStatus(ctx context.Context, claim drp.StatusClaim) (*elder.Verdict, error) {
	verdict, err := d.elderEndpoint.Verify(ctx, elder.KindStatus, structs.Map(claim))
	if err != nil {
		return nil, err
	}

	return &verdict, nil
}

func (d *proofDomain) Ledger(ctx context.Context) ([]orbit.Record, error) {
	return d.orbitEndpoint.FetchRecords(ctx, LedgerDB)
}

// GatewayURL renders the public gateway link of cid.
func (d *proofDomain) GatewayURL(cid string) string {
	if cid == "" {
		return ""
	}

	return d.gateway + "/ipfs/" + cid
}

// pin stores the evidence on IPFS, through Pinata when a token is configured
// and the backend otherwise, and returns its cid and keccak256 digest.
func (d *proofDomain) pin(ctx context.Context, evidence Evidence) (string, string, error) {
	data, hash, err := readEvidence(evidence)
	if err != nil {
		return "", "", err
	}

	var cid string
	if d.pinataEndpoint != nil && d.pinataEndpoint.Enabled() {
		cid, err = d.pinataEndpoint.PinFile(ctx, evidence.Name, bytes.NewReader(data))
	} else {
		cid, err = d.orbitEndpoint.PinFile(ctx, evidence.Name, bytes.NewReader(data))
	}
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pin evidence %s: %v", evidence.Name, err)
		return "", "", err
	}

	return cid, hash, nil
}

// record mirrors an accepted submission to the ledger log. Failures are only
// logged: the submission itself already succeeded.
func (d *proofDomain) record(ctx context.Context, entry ledgerEntry) {
	if _, err := d.orbitEndpoint.AppendRecord(ctx, LedgerDB, entry); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot append submission %s to ledger: %v", entry.SubmissionID, err)
	}
}

func readEvidence(evidence Evidence) ([]byte, string, error) {
	if evidence.Content == nil || strings.TrimSpace(evidence.Name) == "" {
		return nil, "", errorx.New(errorx.InvalidProof, "Evidence file is required")
	}

	data, err := io.ReadAll(evidence.Content)
	if err != nil {
		return nil, "", err
	}

	if len(data) == 0 {
		return nil, "", errorx.New(errorx.InvalidProof, "Evidence file is empty")
	}

	return data, Keccak256Hex(data), nil
}

// Keccak256Hex returns the 0x-prefixed keccak256 digest of data.
func Keccak256Hex(data []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
