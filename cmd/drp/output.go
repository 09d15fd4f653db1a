package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/decentralizedrights/portal/pkg/api"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/urfave/cli/v2"
)

func (s *srv) print(ct *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ct.App.Writer, string(b))
	return err
}

// fail reports err on stderr and returns the exit code. A status error shows
// the server's error message and payload.
func (s *srv) fail(err error) int {
	w := s.app.ErrWriter
	if w == nil {
		w = os.Stderr
	}

	if se, ok := api.AsStatusError(err); ok {
		headline := fmt.Sprintf("Error: request failed with status %d", se.Code)
		if payload, ok := se.Payload.(map[string]any); ok {
			if msg, err := api.JSON(payload).GetString("error"); err == nil && msg != "" {
				headline += ": " + msg
			}
		}

		fmt.Fprintln(w, headline)
		if se.Payload != nil {
			if b, merr := json.MarshalIndent(se.Payload, "", "  "); merr == nil {
				fmt.Fprintln(w, string(b))
			}
		}
		return 1
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}

// arg returns the i-th positional argument or a usage error naming it.
func arg(ct *cli.Context, i int, name string) (string, error) {
	if ct.NArg() <= i {
		return "", errorx.New(errorx.BadRequest, "Missing argument <%s>", name)
	}

	return ct.Args().Get(i), nil
}

// optionalArg returns the i-th positional argument, or fallback() when it is
// absent.
func optionalArg(ct *cli.Context, i int, fallback func() (string, error)) (string, error) {
	if ct.NArg() > i {
		return ct.Args().Get(i), nil
	}

	return fallback()
}
