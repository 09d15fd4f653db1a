package pinata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func Test_Endpoint_PinFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		require.Equal(t, "Bearer pinata-jwt", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		require.Equal(t, "proof.png", header.Filename)
		require.Equal(t, "png", string(content))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"IpfsHash":"QmHash","PinSize":3,"Timestamp":"2024-05-01T00:00:00Z"}`)
	}))
	defer srv.Close()

	endpoint := New(config.PinataConfigs{Token: "pinata-jwt"})
	endpoint.apiGenerator = api.NewGenerator(srv.URL)

	cid, err := endpoint.PinFile(context.Background(), "proof.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.Equal(t, "QmHash", cid)
}

func Test_Endpoint_PinFile_Rejected(t *testing.T) {
	endpoint := New(config.PinataConfigs{Token: "expired"})
	endpoint.apiGenerator = &api.MockAPIGenerator{MockClient: api.MockAPIClient{
		DoFunc: func(ctx context.Context, method string, opts ...api.Opt) (*api.Response, error) {
			return nil, &api.StatusError{Code: http.StatusUnauthorized, Payload: map[string]any{"error": "Invalid JWT"}}
		},
	}}

	_, err := endpoint.PinFile(context.Background(), "proof.png", strings.NewReader("png"))
	se, ok := api.AsStatusError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, se.Code)
}

func Test_Endpoint_Disabled(t *testing.T) {
	endpoint := New(config.PinataConfigs{})
	require.False(t, endpoint.Enabled())

	_, err := endpoint.PinFile(context.Background(), "proof.png", strings.NewReader("png"))
	require.True(t, errorx.Is(err, errorx.Unavailable))
}
