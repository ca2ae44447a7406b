package credential

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// GenerateKeyPair создаёт пару ключей в формате RAGFlow
// (conf/private.pem — PKCS#1, conf/public.pem — PKIX).
func GenerateKeyPair(bits int) (*rsa.PrivateKey, []byte, error) {
	if bits < 1024 {
		return nil, nil, fmt.Errorf("credential: RSA key size must be at least 1024 bits")
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("credential: failed to generate RSA key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("credential: failed to marshal public key: %w", err)
	}
	return priv, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
