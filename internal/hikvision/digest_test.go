// internal/hikvision/digest_test.go
package hikvision

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDigestChallenge(t *testing.T) {
	ch, err := parseDigestChallenge(
		`Digest qop="auth", realm="IP Camera(C6776)", nonce="4e4f37383437383a3432363936c7b25e", stale="FALSE"`)
	require.NoError(t, err)
	assert.Equal(t, "IP Camera(C6776)", ch.realm)
	assert.Equal(t, "4e4f37383437383a3432363936c7b25e", ch.nonce)
	assert.Equal(t, "auth", ch.qop)
}

func TestParseDigestChallengeDefaultsQop(t *testing.T) {
	ch, err := parseDigestChallenge(`Digest realm="cam", nonce="abc"`)
	require.NoError(t, err)
	assert.Equal(t, "auth", ch.qop)
}

func TestParseDigestChallengeCaseInsensitiveScheme(t *testing.T) {
	ch, err := parseDigestChallenge(`digest realm="cam", nonce="abc"`)
	require.NoError(t, err)
	assert.Equal(t, "cam", ch.realm)
}

func TestParseDigestChallengeRejectsBasic(t *testing.T) {
	_, err := parseDigestChallenge(`Basic realm="cam"`)
	assert.Error(t, err)
}

func TestParseDigestChallengeRequiresRealmAndNonce(t *testing.T) {
	_, err := parseDigestChallenge(`Digest realm="cam"`)
	assert.Error(t, err)
	_, err = parseDigestChallenge(`Digest nonce="abc"`)
	assert.Error(t, err)
}

// The response hash must follow RFC 2617 with qop: the server recomputes it
// from the client's cnonce and compares.
func TestAuthorizationResponseHash(t *testing.T) {
	ch := &digestChallenge{realm: "cam", nonce: "servernonce", qop: "auth"}
	header := ch.authorization("admin", "password123", "GET", "/ISAPI/System/deviceInfo")

	params := map[string]string{}
	for _, kv := range digestParamRx.FindAllStringSubmatch(header, -1) {
		params[kv[1]] = kv[2]
	}
	require.Contains(t, params, "cnonce")
	assert.Equal(t, "admin", params["username"])
	assert.Equal(t, "cam", params["realm"])
	assert.Equal(t, "servernonce", params["nonce"])
	assert.Equal(t, "/ISAPI/System/deviceInfo", params["uri"])
	assert.Contains(t, header, "qop=auth")
	assert.Contains(t, header, "nc=00000001")
	assert.Contains(t, header, "algorithm=MD5")

	ha1 := md5Hex("admin:cam:password123")
	ha2 := md5Hex("GET:/ISAPI/System/deviceInfo")
	expected := md5Hex(fmt.Sprintf("%s:servernonce:00000001:%s:auth:%s", ha1, params["cnonce"], ha2))
	assert.Equal(t, expected, params["response"])
}

func TestAuthorizationUsesFreshCnonce(t *testing.T) {
	ch := &digestChallenge{realm: "cam", nonce: "n", qop: "auth"}
	assert.NotEqual(t,
		ch.authorization("u", "p", "GET", "/"),
		ch.authorization("u", "p", "GET", "/"))
}
