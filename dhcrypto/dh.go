// Package dhcrypto implements the cryptographic primitives the resumable
// session handshake needs (spec §4.6, §6): Diffie-Hellman key agreement
// over the RFC 3526 2048-bit MODP group, and HMAC-MD5-of-MD5 for the
// reconnect proof. The teacher reaches for crypto/tls (standard library)
// for its one cryptographic need rather than a third-party TLS stack;
// this module does the same and stays on crypto/md5, crypto/hmac,
// crypto/rand and math/big throughout (see DESIGN.md).
package dhcrypto

import (
	"crypto/rand"
	"math/big"
)

// PrivateKeyBytes is the width (spec §5 "DH computation... private key
// width: 32 bytes of cryptographic randomness").
const PrivateKeyBytes = 32

// PublicKeyBytes is the width of a big-endian group element (2048 bits).
const PublicKeyBytes = 256

// SharedSecretBytes is how much of the raw DH value the session keeps
// (spec §6 "leading 32 bytes of g^{ab} mod p").
const SharedSecretBytes = 32

// group14Hex is the RFC 3526 2048-bit MODP group (id 14) prime.
const group14Hex = "" +
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
	"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
	"15728E5A8AACAA68FFFFFFFFFFFFFFFF"

// group14Generator is the published generator for RFC 3526 group 14.
const group14Generator = 2

var (
	groupPrime *big.Int
	generator  = big.NewInt(group14Generator)
)

func init() {
	p, ok := new(big.Int).SetString(group14Hex, 16)
	if !ok {
		panic("dhcrypto: malformed RFC 3526 group 14 prime")
	}
	groupPrime = p
}

// GeneratePrivateKey returns PrivateKeyBytes of cryptographic randomness
// as a big.Int exponent (spec §5).
func GeneratePrivateKey() (*big.Int, error) {
	buf := make([]byte, PrivateKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(buf), nil
}

// PublicKey computes g^private mod p, left-padded to PublicKeyBytes.
func PublicKey(private *big.Int) []byte {
	pub := new(big.Int).Exp(generator, private, groupPrime)
	return leftPad(pub.Bytes(), PublicKeyBytes)
}

// SharedSecret computes peerPublic^private mod p and returns the leading
// SharedSecretBytes of the result.
func SharedSecret(private *big.Int, peerPublic []byte) []byte {
	peer := new(big.Int).SetBytes(peerPublic)
	shared := new(big.Int).Exp(peer, private, groupPrime)
	full := leftPad(shared.Bytes(), PublicKeyBytes)
	return full[:SharedSecretBytes]
}

func leftPad(b []byte, width int) []byte {
	if len(b) >= width {
		return b[len(b)-width:]
	}
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out
}
