package ahttp

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestHijackDetachFailureLeavesRequestUsable(t *testing.T) {
	boom := errors.New("detach refused")

	var req *Request
	var hijackedDuringDetach bool
	req = newRequest(
		http.MethodGet, &url.URL{Path: "/"}, "HTTP/1.1", nil,
		strings.NewReader("payload"), context.Background(),
		func() (net.Conn, *bufio.ReadWriter, error) {
			hijackedDuringDetach = req.Hijacked()
			return nil, nil, boom
		},
	)

	_, _, err := req.Hijack()
	require.ErrorIs(t, err, boom)
	require.False(t, req.Hijacked())
	require.False(t, hijackedDuringDetach, "an in-flight takeover must not read as hijacked")

	data, err := io.ReadAll(req.Body())
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	_, _, err = req.Hijack()
	require.ErrorIs(t, err, boom, "a failed attempt must release the transition")
	require.False(t, req.Hijacked())
}
