package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const publicKeyTTL = time.Hour

// TokenVerifier checks bearer tokens signed with a shared secret, an RSA key
// published at a URL, or both.
type TokenVerifier struct {
	secret       []byte
	publicKeyURL string
	httpClient   *http.Client

	mu        sync.Mutex
	publicKey *rsa.PublicKey
	fetchedAt time.Time
}

func NewTokenVerifier(secret, publicKeyURL string) *TokenVerifier {
	v := &TokenVerifier{
		publicKeyURL: publicKeyURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

// FetchPublicKey fetches a PEM public key wrapped as {"key": "..."} from url.
func (v *TokenVerifier) FetchPublicKey(url string) (*rsa.PublicKey, error) {
	resp, err := v.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch public key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	keyResponse := struct {
		Key string `json:"key"`
	}{}
	if err := json.Unmarshal(body, &keyResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal public key response: %w", err)
	}

	block, _ := pem.Decode([]byte(keyResponse.Key))
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("failed to decode PEM block containing public key")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPubKey, ok := pubKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key")
	}
	return rsaPubKey, nil
}

func (v *TokenVerifier) rsaKey() (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.publicKey != nil && time.Since(v.fetchedAt) < publicKeyTTL {
		return v.publicKey, nil
	}
	key, err := v.FetchPublicKey(v.publicKeyURL)
	if err != nil {
		return nil, err
	}
	v.publicKey = key
	v.fetchedAt = time.Now()
	return key, nil
}

// VerifyJWT parses tokenString and returns its claims if the signature and expiry hold.
func (v *TokenVerifier) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, fmt.Errorf("HMAC tokens are not accepted")
			}
			return v.secret, nil
		case *jwt.SigningMethodRSA:
			if v.publicKeyURL == "" {
				return nil, fmt.Errorf("RSA tokens are not accepted")
			}
			return v.rsaKey()
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}
	return claims, nil
}
