// Package credential готовит пароль к передаче в RAGFlow.
//
// Эндпоинты /v1/user/register и /v1/user/login ожидают пароль в виде
// base64(RSA-PKCS1v15(pub, base64(password))) и расшифровывают его
// приватным ключом из conf/private.pem. Порядок кодирования менять нельзя.
package credential

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrNoPEM = errors.New("credential: no PEM block found")

// LoadPublicKey читает публичный ключ RAGFlow (conf/public.pem).
// Отсутствие файла возвращается как ошибка, оборачивающая os.ErrNotExist.
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("credential: read public key %s: %w", path, err)
	}
	return ParsePublicKey(data)
}

// ParsePublicKey принимает "PUBLIC KEY" (PKIX) и "RSA PUBLIC KEY" (PKCS#1).
func ParsePublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrNoPEM
	}
	switch block.Type {
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("credential: parse PKCS1 public key: %w", err)
		}
		return pub, nil
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("credential: parse PKIX public key: %w", err)
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("credential: public key is %T, want RSA", key)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("credential: unexpected PEM block %q", block.Type)
	}
}

// EncryptPassword кодирует пароль для RAGFlow:
// base64(RSA-PKCS1v15(pub, base64(utf8(password)))).
func EncryptPassword(pub *rsa.PublicKey, password string) (string, error) {
	return encrypt(rand.Reader, pub, password)
}

func encrypt(random io.Reader, pub *rsa.PublicKey, password string) (string, error) {
	if pub == nil {
		return "", errors.New("credential: public key is nil")
	}
	inner := base64.StdEncoding.EncodeToString([]byte(password))
	ct, err := rsa.EncryptPKCS1v15(random, pub, []byte(inner))
	if err != nil {
		return "", fmt.Errorf("credential: encrypt password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// DecryptPassword — обратная операция (то, что делает сервер).
// Нужна фейковому серверу в тестах и для проверки ключевой пары.
func DecryptPassword(priv *rsa.PrivateKey, encoded string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("credential: decode ciphertext: %w", err)
	}
	inner, err := rsa.DecryptPKCS1v15(nil, priv, ct)
	if err != nil {
		return "", fmt.Errorf("credential: decrypt password: %w", err)
	}
	plain, err := base64.StdEncoding.DecodeString(string(inner))
	if err != nil {
		return "", fmt.Errorf("credential: decode password: %w", err)
	}
	return string(plain), nil
}

// Encryptor держит загруженный один раз ключ.
type Encryptor struct {
	pub *rsa.PublicKey
}

func NewEncryptor(pub *rsa.PublicKey) *Encryptor { return &Encryptor{pub: pub} }

// LoadEncryptor — ключ из файла; ошибка фатальна для админки.
func LoadEncryptor(path string) (*Encryptor, error) {
	pub, err := LoadPublicKey(path)
	if err != nil {
		return nil, err
	}
	return &Encryptor{pub: pub}, nil
}

func (e *Encryptor) Encrypt(password string) (string, error) {
	return EncryptPassword(e.pub, password)
}
