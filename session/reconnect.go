package session

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/domsolutions/sconn/dhcrypto"
)

// buildReconnectFrame composes the reconnect handshake frame (spec §6):
// "<id>\n<reconnect_index>\n<bytes_received>\n<base64(HMAC_MD5(secret, MD5(content)))>\n"
// where content is the first three fields including their trailing
// newlines.
func buildReconnectFrame(id uint32, reconnectIndex, recvBytes uint64, secret []byte) []byte {
	var content strings.Builder
	content.WriteString(strconv.FormatUint(uint64(id), 10))
	content.WriteByte('\n')
	content.WriteString(strconv.FormatUint(reconnectIndex, 10))
	content.WriteByte('\n')
	content.WriteString(strconv.FormatUint(recvBytes, 10))
	content.WriteByte('\n')

	proof := dhcrypto.HashOfHash(secret, []byte(content.String()))

	var out strings.Builder
	out.WriteString(content.String())
	out.WriteString(base64.StdEncoding.EncodeToString(proof))
	out.WriteByte('\n')
	return []byte(out.String())
}

// parseReconnectReply parses "<bytes_server_received>\n<code>\n" (spec
// §6); code == "200" signals success.
func parseReconnectReply(payload []byte) (serverRecv uint64, code string, err error) {
	parts := strings.SplitN(string(payload), "\n", 3)
	if len(parts) < 2 {
		return 0, "", ErrInvalidReconnectReply
	}
	n, convErr := strconv.ParseUint(parts[0], 10, 64)
	if convErr != nil {
		return 0, "", ErrInvalidReconnectReply
	}
	return n, parts[1], nil
}
