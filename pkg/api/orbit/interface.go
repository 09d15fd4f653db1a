package orbit

import (
	"context"
	"io"
)

type IEndpoint interface {
	PinFile(ctx context.Context, name string, r io.Reader) (string, error)
	AppendRecord(ctx context.Context, db string, value any) (Record, error)
	FetchRecords(ctx context.Context, db string) ([]Record, error)
}
