package dhcrypto

import (
	"crypto/hmac"
	"crypto/md5"
)

// HashOfHash computes HMAC-MD5(secret, MD5(content)) -- the reconnect
// proof spec §6 calls a "hash of hash": the content is first reduced to
// its MD5 digest, then that digest (not the raw content) is the HMAC
// message. This non-standard double hashing is deliberate per the spec
// and must not be simplified to a single HMAC-MD5(secret, content) pass.
func HashOfHash(secret, content []byte) []byte {
	sum := md5.Sum(content)
	mac := hmac.New(md5.New, secret)
	mac.Write(sum[:])
	return mac.Sum(nil)
}
