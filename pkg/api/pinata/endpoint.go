package pinata

import (
	"context"
	"io"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

const apiURL = "https://api.pinata.cloud"

var pinSchema = api.Object("pinata_pin", []string{"IpfsHash"}, map[string]any{
	"IpfsHash":  api.TypeString,
	"PinSize":   api.TypeNumber,
	"Timestamp": api.TypeString,
})

type Endpoint struct {
	Token string

	apiGenerator api.Generator
}

func New(cfg config.PinataConfigs) *Endpoint {
	return &Endpoint{
		Token:        cfg.Token,
		apiGenerator: api.NewGenerator(apiURL),
	}
}

// Enabled reports whether a JWT is configured. Without one the backend
// storage API pins instead.
func (e *Endpoint) Enabled() bool {
	return e.Token != ""
}

func (e *Endpoint) PinFile(ctx context.Context, name string, f io.Reader) (string, error) {
	if !e.Enabled() {
		return "", errorx.New(errorx.Unavailable, "Pinata token is not configured")
	}

	resp, err := e.apiGenerator.New("/pinning/pinFileToIPFS").
		Body(api.FormData{
			Files: map[string]api.FormDataFile{
				"file": {
					Name:    name,
					Content: f,
				},
			},
		}).
		POST(ctx, api.OAuth2("Bearer", e.Token))
	if err != nil {
		return "", err
	}

	pin, err := api.Decode[struct {
		IpfsHash string `json:"IpfsHash"`
	}](resp, pinSchema)
	if err != nil {
		return "", err
	}

	return pin.IpfsHash, nil
}

var _ IEndpoint = (*Endpoint)(nil)
