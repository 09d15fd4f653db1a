package orbit

import (
	"context"
	"io"
	"regexp"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

// Record is one entry of an OrbitDB log as returned by the storage API.
// Timestamp is in unix milliseconds.
type Record struct {
	CID       string `json:"cid"`
	Value     any    `json:"value"`
	Timestamp int64  `json:"timestamp"`
	Hash      string `json:"hash"`
}

var dbNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var (
	cidSchema = api.Object("orbit_cid", []string{"cid"}, map[string]any{
		"cid": api.TypeString,
	})

	recordSchema = api.Object("orbit_record", []string{"cid", "hash"}, map[string]any{
		"cid":       api.TypeString,
		"value":     api.TypeAny,
		"timestamp": api.TypeNumber,
		"hash":      api.TypeString,
	})
	recordsSchema = api.ArrayOf("orbit_records", recordSchema)
)

// Endpoint wraps the backend storage API: IPFS pinning and the OrbitDB
// append-only logs.
type Endpoint struct {
	apiGenerator api.Generator
}

func New(cfg config.APIConfigs) *Endpoint {
	return &Endpoint{apiGenerator: api.NewGenerator(cfg.URL)}
}

func (e *Endpoint) PinFile(ctx context.Context, name string, r io.Reader) (string, error) {
	resp, err := e.apiGenerator.New("/storage/ipfs").
		Body(api.FormData{
			Files: map[string]api.FormDataFile{
				"file": {Name: name, Content: r},
			},
		}).
		POST(ctx)
	if err != nil {
		return "", err
	}

	out, err := api.Decode[struct {
		CID string `json:"cid"`
	}](resp, cidSchema)
	if err != nil {
		return "", err
	}

	return out.CID, nil
}

func (e *Endpoint) AppendRecord(ctx context.Context, db string, value any) (Record, error) {
	if err := checkDB(db); err != nil {
		return Record{}, err
	}

	resp, err := e.apiGenerator.New("/storage/orbitdb/%s", db).
		Body(api.Value(value)).
		POST(ctx)
	if err != nil {
		return Record{}, err
	}

	return api.Decode[Record](resp, recordSchema)
}

func (e *Endpoint) FetchRecords(ctx context.Context, db string) ([]Record, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	resp, err := e.apiGenerator.New("/storage/orbitdb/%s", db).GET(ctx)
	if err != nil {
		return nil, err
	}

	return api.Decode[[]Record](resp, recordsSchema)
}

func checkDB(db string) error {
	if !dbNamePattern.MatchString(db) {
		return errorx.New(errorx.BadRequest, "Invalid OrbitDB name %q", db)
	}

	return nil
}

var _ IEndpoint = (*Endpoint)(nil)
