package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/waterwheel/pkg/errors"
	"github.com/matzehuels/waterwheel/pkg/transport"
)

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResponse prints the decoded body of resp, or a short status line for
// empty bodies.
func writeResponse(w io.Writer, resp *transport.Response) error {
	if resp.Data == nil {
		_, err := fmt.Fprintf(w, "%d\n", resp.StatusCode)
		return err
	}
	return writeJSON(w, resp.Data)
}

// readData reads a JSON request body from a file, or stdin for "-". A value
// starting with "{" is taken as inline JSON.
func readData(arg string, stdin io.Reader) (any, error) {
	var data []byte
	var err error
	switch {
	case arg == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "--data is required")
	case arg == "-":
		data, err = io.ReadAll(stdin)
	case strings.HasPrefix(strings.TrimSpace(arg), "{"):
		data = []byte(arg)
	default:
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read data")
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse data as JSON")
	}
	return v, nil
}

// parseParams turns k=v pairs into query values.
func parseParams(pairs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid --param %q, want key=value", p)
		}
		out[k] = append(out[k], v)
	}
	return out, nil
}
