package cognito

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

// 3072-bit MODP group from RFC 3526, the group Cognito's SRP flow is defined over.
const nHex = "FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1" +
	"29024E088A67CC74020BBEA63B139B22514A08798E3404DD" +
	"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245" +
	"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED" +
	"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D" +
	"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F" +
	"83655D23DCA3AD961C62F356208552BB9ED529077096966D" +
	"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B" +
	"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9" +
	"DE2BCBF6955817183995497CEA956AE515D2261898FA0510" +
	"15728E5A8AAAC42DAD33170D04507A33A85521ABDF1CBA64" +
	"ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7" +
	"ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6B" +
	"F12FFA06D98A0864D87602733EC86A64521F2B18177B200C" +
	"BBE117577A615D6C770988C0BAD946E208E24FA074E5AB31" +
	"43DB5BFCE0FD108E4B82D120A93AD2CAFFFFFFFFFFFFFFFF"

const (
	gHex            = "2"
	derivedKeyInfo  = "Caldera Derived Key"
	derivedKeyBytes = 16
	timestampLayout = "Mon Jan 2 15:04:05 UTC 2006"
)

var (
	bigN = mustHex(nHex)
	bigG = mustHex(gHex)
	bigK = mustHex(hexHash("00" + nHex + "0" + gHex))
)

// srp holds the client half of one USER_SRP_AUTH exchange.
type srp struct {
	poolName string
	a        *big.Int
	bigA     *big.Int
}

func newSRP(poolID string, random io.Reader) (*srp, error) {
	_, poolName, ok := strings.Cut(poolID, "_")
	if !ok || poolName == "" {
		return nil, fmt.Errorf("invalid user pool id %q", poolID)
	}

	buf := make([]byte, 128)
	if _, err := io.ReadFull(random, buf); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	a := new(big.Int).Mod(new(big.Int).SetBytes(buf), bigN)
	bigA := new(big.Int).Exp(bigG, a, bigN)
	if bigA.Sign() == 0 {
		return nil, fmt.Errorf("degenerate SRP_A")
	}

	return &srp{poolName: poolName, a: a, bigA: bigA}, nil
}

// SRPA is the public value sent with InitiateAuth.
func (s *srp) SRPA() string {
	return s.bigA.Text(16)
}

// passwordAuthenticationKey derives the 16 byte HKDF key both sides agree on
// once the server has sent SRP_B and the salt.
func (s *srp) passwordAuthenticationKey(userID, password, serverBHex, saltHex string) ([]byte, error) {
	serverB, ok := new(big.Int).SetString(serverBHex, 16)
	if !ok {
		return nil, fmt.Errorf("invalid SRP_B")
	}
	if new(big.Int).Mod(serverB, bigN).Sign() == 0 {
		return nil, fmt.Errorf("invalid SRP_B")
	}

	u := mustHex(hexHash(padHex(s.bigA) + padHex(serverB)))
	if u.Sign() == 0 {
		return nil, fmt.Errorf("invalid SRP parameters")
	}

	paddedSalt := padHexString(saltHex)
	if _, err := hex.DecodeString(paddedSalt); err != nil {
		return nil, fmt.Errorf("invalid SALT: %w", err)
	}

	userPasswordHash := hashSHA256([]byte(s.poolName + userID + ":" + password))
	x := mustHex(hexHash(paddedSalt + userPasswordHash))

	// S = (B - k * g^x) ^ (a + u * x) mod N
	gx := new(big.Int).Exp(bigG, x, bigN)
	base := new(big.Int).Sub(serverB, new(big.Int).Mul(bigK, gx))
	base.Mod(base, bigN)
	exp := new(big.Int).Add(s.a, new(big.Int).Mul(u, x))
	sValue := new(big.Int).Exp(base, exp, bigN)

	ikm, err := hex.DecodeString(padHex(sValue))
	if err != nil {
		return nil, err
	}
	salt, err := hex.DecodeString(padHex(u))
	if err != nil {
		return nil, err
	}

	key := make([]byte, derivedKeyBytes)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, []byte(derivedKeyInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}

// passwordClaim returns the PASSWORD_CLAIM_SIGNATURE for the challenge.
func (s *srp) passwordClaim(key []byte, userID, secretBlock, timestamp string) (string, error) {
	block, err := base64.StdEncoding.DecodeString(secretBlock)
	if err != nil {
		return "", fmt.Errorf("decoding SECRET_BLOCK: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(s.poolName))
	mac.Write([]byte(userID))
	mac.Write(block)
	mac.Write([]byte(timestamp))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// cognitoTimestamp formats t the way Cognito expects, with an unpadded day.
func cognitoTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// secretHash is required on every call made by an app client that has a secret.
func secretHash(username, clientID, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func hashSHA256(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func hexHash(h string) string {
	b, err := hex.DecodeString(h)
	if err != nil {
		panic(fmt.Sprintf("hexHash: %v", err))
	}
	return hashSHA256(b)
}

// padHex renders n so that it decodes to a positive two's complement value.
func padHex(n *big.Int) string {
	return padHexString(n.Text(16))
}

func padHexString(h string) string {
	if h == "" {
		return "00"
	}
	if len(h)%2 == 1 {
		return "0" + h
	}
	if strings.ContainsRune("89ABCDEFabcdef", rune(h[0])) {
		return "00" + h
	}
	return h
}

func mustHex(h string) *big.Int {
	n, ok := new(big.Int).SetString(h, 16)
	if !ok {
		panic(fmt.Sprintf("invalid hex %q", h))
	}
	return n
}
