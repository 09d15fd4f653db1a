package elder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func Test_Endpoint_Verify(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"verdict":"flag","confidence":0.42,"notes":"blurry photo"}`)
	}))
	defer srv.Close()

	endpoint := New(config.AIConfigs{URL: srv.URL})
	verdict, err := endpoint.Verify(context.Background(), KindActivity, map[string]any{"title": "Cleanup"})
	require.NoError(t, err)
	require.Equal(t, Verdict{Verdict: "flag", Confidence: 0.42, Notes: "blurry photo"}, verdict)
	require.False(t, verdict.Approved())
	require.Equal(t, map[string]any{"type": "activity", "input": map[string]any{"title": "Cleanup"}}, got)
}

func Test_Endpoint_Verify_UnknownKind(t *testing.T) {
	endpoint := &Endpoint{apiGenerator: &api.MockAPIGenerator{}}
	_, err := endpoint.Verify(context.Background(), "vote", nil)
	require.True(t, errorx.Is(err, errorx.BadRequest))
}

func Test_Endpoint_Verify_UnexpectedVerdict(t *testing.T) {
	endpoint := &Endpoint{apiGenerator: &api.MockAPIGenerator{MockClient: api.MockAPIClient{
		DoFunc: func(ctx context.Context, method string, opts ...api.Opt) (*api.Response, error) {
			return &api.Response{Code: 200, Body: map[string]any{"verdict": "maybe", "confidence": float64(1)}}, nil
		},
	}}}

	_, err := endpoint.Verify(context.Background(), KindStatus, map[string]any{})
	require.Error(t, err)
}

func Test_Endpoint_Ask(t *testing.T) {
	var body api.Body
	gen := &api.MockAPIGenerator{}
	gen.MockClient.BodyFunc = func(b api.Body) api.Client {
		body = b
		return &gen.MockClient
	}
	gen.MockClient.DoFunc = func(ctx context.Context, method string, opts ...api.Opt) (*api.Response, error) {
		return &api.Response{Code: 200, Body: map[string]any{
			"reply":       "Upload a clearer photo.",
			"suggestions": []any{"Add GPS data"},
		}}, nil
	}

	endpoint := &Endpoint{apiGenerator: gen}
	reply, err := endpoint.Ask(context.Background(), "Why was I flagged?", nil)
	require.NoError(t, err)
	require.Equal(t, Reply{Reply: "Upload a clearer photo.", Suggestions: []string{"Add GPS data"}}, reply)
	require.Equal(t, api.JSON{"prompt": "Why was I flagged?"}, body)

	_, err = endpoint.Ask(context.Background(), "", nil)
	require.True(t, errorx.Is(err, errorx.BadRequest))
}
