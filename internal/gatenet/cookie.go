package gatenet

import (
	"encoding/base64"
	"strconv"

	"github.com/xxtea/xxtea-go/xxtea"
)

// sealSSID encodes ssid as xxtea-encrypted, base64-url-safe cookie
// text, so a tampered cookie fails to decrypt rather than silently
// resolving to a different session. xxtea is carried from the
// teacher's go.mod (nano's own companion cipher) rather than reached
// for a fresh ecosystem dependency.
func sealSSID(ssid uint64, key []byte) string {
	plain := []byte(strconv.FormatUint(ssid, 10))
	cipher := xxtea.Encrypt(plain, key)
	return base64.RawURLEncoding.EncodeToString(cipher)
}

// unsealSSID reverses sealSSID, returning ok=false for anything that
// fails to decode, decrypt, or parse as a uint64.
func unsealSSID(cookie string, key []byte) (ssid uint64, ok bool) {
	cipher, err := base64.RawURLEncoding.DecodeString(cookie)
	if err != nil {
		return 0, false
	}
	plain := xxtea.Decrypt(cipher, key)
	if plain == nil {
		return 0, false
	}
	ssid, err = strconv.ParseUint(string(plain), 10, 64)
	if err != nil {
		return 0, false
	}
	return ssid, true
}
