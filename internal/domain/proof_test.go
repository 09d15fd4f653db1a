package domain

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/internal/wallet"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/api/drp"
	"github.com/decentralizedrights/portal/pkg/api/elder"
	"github.com/decentralizedrights/portal/pkg/api/orbit"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/stretchr/testify/require"
)

const (
	testAddress = "0x52908400098527886E0F7030069857D2E4169EE7"
	helloHash   = "0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8"
)

type fixedWallet struct {
	address string
}

func (f fixedWallet) Current(ctx context.Context) (wallet.Wallet, error) {
	if f.address == "" {
		return wallet.Wallet{}, errorx.ErrMissingWallet
	}
	return wallet.Wallet{Address: f.address}, nil
}

type fakePinata struct {
	enabled bool
	names   []string
}

func (f *fakePinata) Enabled() bool {
	return f.enabled
}

func (f *fakePinata) PinFile(ctx context.Context, name string, r io.Reader) (string, error) {
	f.names = append(f.names, name)
	return "bafypinata", nil
}

// backend records the JSON bodies it receives per path.
type backend struct {
	mu     sync.Mutex
	bodies map[string]map[string]any
	hits   map[string]int
	fail   map[string]int
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	b := &backend{
		bodies: map[string]map[string]any{},
		hits:   map[string]int{},
		fail:   map[string]int{},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		key := r.Method + " " + r.URL.Path
		b.hits[key]++
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			b.bodies[key] = body
		}

		w.Header().Set("Content-Type", "application/json")
		if code, ok := b.fail[key]; ok {
			w.WriteHeader(code)
			_, _ = io.WriteString(w, `{"detail":"failed"}`)
			return
		}

		switch key {
		case "POST /storage/ipfs":
			_, _ = io.WriteString(w, `{"cid":"bafybackend"}`)
		case "POST /storage/orbitdb/drp_network":
			_, _ = io.WriteString(w, `{"cid":"bafyrecord","hash":"zdpu1","timestamp":1714521600000,"value":{}}`)
		case "GET /storage/orbitdb/drp_network":
			_, _ = io.WriteString(w, `[{"cid":"bafyrecord","hash":"zdpu1","timestamp":1714521600000,"value":{"kind":"activity"}}]`)
		case "POST /submit-activity", "POST /submit-status":
			_, _ = io.WriteString(w, `{"submission_id":"sub-1","status":"pending"}`)
		case "POST /verify/activity/media", "POST /verify/status/credential":
			_, _ = io.WriteString(w, `{"cid":"bafyverify"}`)
		case "POST /verify/activity", "POST /verify/status":
			_, _ = io.WriteString(w, `{"status":"approved","reward":{"token":"$DeRi","amount":5}}`)
		case "POST /verify":
			_, _ = io.WriteString(w, `{"verdict":"flag","confidence":0.4,"notes":"blurry"}`)
		case "GET /rewards/summary":
			_, _ = io.WriteString(w, `{"deri":12.5,"rights":3}`)
		case "GET /rewards/history":
			_, _ = io.WriteString(w, `[{"id":"l1","type":"activity","token":"$DeRi","amount":12.5}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail":"not found"}`)
		}
	}))
	t.Cleanup(srv.Close)

	return b, srv
}

func (b *backend) body(key string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func (b *backend) hit(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *backend) totalHits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.hits {
		total += n
	}
	return total
}

func (b *backend) failWith(key string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[key] = code
}

func newTestProofDomain(srv *httptest.Server, pin *fakePinata, address string) *proofDomain {
	d := NewProofDomain(
		drp.New(config.APIConfigs{URL: srv.URL}),
		elder.New(config.AIConfigs{URL: srv.URL}),
		orbit.New(config.APIConfigs{URL: srv.URL}),
		pin,
		fixedWallet{address: address},
		"https://ipfs.example/",
	)
	d.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

func Test_proofDomain_SubmitActivity(t *testing.T) {
	b, srv := newBackend(t)
	d := newTestProofDomain(srv, &fakePinata{}, testAddress)

	result, err := d.SubmitActivity(context.Background(), ActivityInput{
		Title:       "Beach cleanup",
		Description: "Collected 20kg",
		Media:       Evidence{Name: "proof.jpg", Content: strings.NewReader("hello")},
	})
	require.NoError(t, err)
	require.Equal(t, &ProofResult{
		Submission: drp.SubmissionResponse{SubmissionID: "sub-1", Status: "pending"},
		CID:        "bafybackend",
		Hash:       helloHash,
		GatewayURL: "https://ipfs.example/ipfs/bafybackend",
	}, result)

	body := b.body("POST /submit-activity")
	require.Equal(t, testAddress, body["actor_id"])
	require.Equal(t, "bafybackend", body["media_cid"])
	require.Equal(t, helloHash, body["hash"])
	require.Equal(t, "2024-05-01T12:00:00Z", body["timestamp"])

	ledger := b.body("POST /storage/orbitdb/drp_network")
	require.Equal(t, "activity", ledger["kind"])
	require.Equal(t, "sub-1", ledger["submission_id"])
}

func Test_proofDomain_SubmitStatus_Pinata(t *testing.T) {
	b, srv := newBackend(t)
	pin := &fakePinata{enabled: true}
	d := newTestProofDomain(srv, pin, testAddress)

	result, err := d.SubmitStatus(context.Background(), StatusInput{
		Category:   "education",
		Issuer:     "University",
		Credential: Evidence{Name: "diploma.pdf", Content: strings.NewReader("hello")},
	})
	require.NoError(t, err)
	require.Equal(t, "bafypinata", result.CID)
	require.Equal(t, []string{"diploma.pdf"}, pin.names)
	require.Zero(t, b.hit("POST /storage/ipfs"))
	require.Equal(t, "bafypinata", b.body("POST /submit-status")["credential_cid"])
}

func Test_proofDomain_SubmitRejectedEarly(t *testing.T) {
	b, srv := newBackend(t)
	ctx := context.Background()

	d := newTestProofDomain(srv, &fakePinata{}, "")
	_, err := d.SubmitActivity(ctx, ActivityInput{
		Title: "x",
		Media: Evidence{Name: "a.jpg", Content: strings.NewReader("hello")},
	})
	require.ErrorIs(t, err, errorx.ErrMissingWallet)

	d = newTestProofDomain(srv, &fakePinata{}, testAddress)
	_, err = d.SubmitActivity(ctx, ActivityInput{Title: "x", Media: Evidence{Name: "a.jpg", Content: strings.NewReader("")}})
	require.True(t, errorx.Is(err, errorx.InvalidProof))

	_, err = d.SubmitStatus(ctx, StatusInput{Category: "education"})
	require.True(t, errorx.Is(err, errorx.InvalidProof))

	_, err = d.SubmitActivity(ctx, ActivityInput{})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	require.Zero(t, b.totalHits())
}

func Test_proofDomain_LedgerFailureIsNotFatal(t *testing.T) {
	b, srv := newBackend(t)
	b.failWith("POST /storage/orbitdb/drp_network", http.StatusServiceUnavailable)
	d := newTestProofDomain(srv, &fakePinata{}, testAddress)

	result, err := d.SubmitActivity(context.Background(), ActivityInput{
		Title: "Tree planting",
		Media: Evidence{Name: "tree.jpg", Content: strings.NewReader("hello")},
	})
	require.NoError(t, err)
	require.Equal(t, "sub-1", result.Submission.SubmissionID)
}

func Test_proofDomain_SubmitBackendError(t *testing.T) {
	b, srv := newBackend(t)
	b.failWith("POST /submit-activity", http.StatusUnprocessableEntity)
	d := newTestProofDomain(srv, &fakePinata{}, testAddress)

	_, err := d.SubmitActivity(context.Background(), ActivityInput{
		Title: "Tree planting",
		Media: Evidence{Name: "tree.jpg", Content: strings.NewReader("hello")},
	})
	se, ok := api.AsStatusError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnprocessableEntity, se.Code)
	require.Equal(t, map[string]any{"detail": "failed"}, se.Payload)
	require.Zero(t, b.hit("POST /storage/orbitdb/drp_network"))
}

func Test_proofDomain_Verify(t *testing.T) {
	b, srv := newBackend(t)
	d := newTestProofDomain(srv, &fakePinata{}, testAddress)
	ctx := context.Background()

	result, err := d.VerifyActivity(ctx, ActivityInput{
		Title: "Beach cleanup",
		Media: Evidence{Name: "proof.jpg", Content: strings.NewReader("hello")},
	})
	require.NoError(t, err)
	require.Equal(t, &drp.VerificationResult{Status: "approved", Reward: &drp.Reward{Token: "$DeRi", Amount: 5}}, result)

	body := b.body("POST /verify/activity")
	require.Equal(t, "bafyverify", body["mediaCid"])
	require.Equal(t, helloHash, body["hash"])

	_, err = d.VerifyStatus(ctx, StatusInput{
		Category:   "education",
		Credential: Evidence{Name: "diploma.pdf", Content: strings.NewReader("hello")},
	})
	require.NoError(t, err)
	require.Equal(t, "bafyverify", b.body("POST /verify/status")["credentialCid"])
}

func Test_proofDomain_PreVerify(t *testing.T) {
	b, srv := newBackend(t)
	d := newTestProofDomain(srv, &fakePinata{}, testAddress)

	verdict, err := d.PreVerifyActivity(context.Background(), drp.ActivityClaim{
		Title:   "Beach cleanup",
		ActorID: testAddress,
	})
	require.NoError(t, err)
	require.False(t, verdict.Approved())
	require.Equal(t, "blurry", verdict.Notes)

	body := b.body("POST /verify")
	require.Equal(t, "activity", body["type"])
	input := body["input"].(map[string]any)
	require.Equal(t, "Beach cleanup", input["title"])
	require.Equal(t, testAddress, input["actor_id"])
	require.NotContains(t, input, "location")

	_, err = d.PreVerifyStatus(context.Background(), drp.StatusClaim{Category: "education"})
	require.NoError(t, err)
	require.Equal(t, "status", b.body("POST /verify")["type"])
}

func Test_proofDomain_Ledger(t *testing.T) {
	_, srv := newBackend(t)
	d := newTestProofDomain(srv, &fakePinata{}, testAddress)

	records, err := d.Ledger(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "bafyrecord", records[0].CID)
	require.Equal(t, int64(1714521600000), records[0].Timestamp)
}

func Test_proofDomain_GatewayURL(t *testing.T) {
	d := NewProofDomain(nil, nil, nil, nil, fixedWallet{}, "https://gw.example")
	require.Equal(t, "https://gw.example/ipfs/bafy1", d.GatewayURL("bafy1"))
	require.Empty(t, d.GatewayURL(""))
}

func Test_Keccak256Hex(t *testing.T) {
	require.Equal(t, helloHash, Keccak256Hex([]byte("hello")))
}

func Test_rewardDomain_Overview(t *testing.T) {
	b, srv := newBackend(t)
	d := NewRewardDomain(drp.New(config.APIConfigs{URL: srv.URL}))

	overview, err := d.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, drp.RewardSummary{DeRi: 12.5, Rights: 3}, overview.Summary)
	require.Equal(t, []drp.RewardLog{{ID: "l1", Type: "activity", Token: "$DeRi", Amount: 12.5}}, overview.History)

	b.failWith("GET /rewards/history", http.StatusInternalServerError)
	_, err = d.Overview(context.Background())
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusInternalServerError, se.Code)
}
