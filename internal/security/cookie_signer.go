// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CookieSigner はセッションCookieの値にHMAC-SHA256署名を付与・検証し、
// クライアントによるトークンの改ざんや推測を防ぐ。
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MinSecretLength は署名鍵に要求する最小長。
const MinSecretLength = 32

var (
	// ErrSecretTooShort は署名鍵が短すぎる場合のエラー。
	ErrSecretTooShort = errors.New("cookie secret is too short")
	// ErrInvalidFormat は署名付き値の形式が不正な場合のエラー。
	ErrInvalidFormat = errors.New("invalid signed value format")
	// ErrInvalidSignature は署名が一致しない場合のエラー。
	ErrInvalidSignature = errors.New("invalid signature")
)

// CookieSigner はCookie値の署名と検証を行う。
// 複数の鍵を受け付け、署名には先頭の鍵、検証にはすべての鍵を使う（鍵ローテーション用）。
type CookieSigner struct {
	secrets [][]byte
}

// NewCookieSigner はCookieSignerを生成する。
// 空の鍵は無視し、有効な鍵が1つもない場合やMinSecretLength未満の鍵がある場合はエラーを返す。
func NewCookieSigner(secrets ...string) (*CookieSigner, error) {
	s := &CookieSigner{}
	for i, secret := range secrets {
		if secret == "" {
			continue
		}
		if len(secret) < MinSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d",
				ErrSecretTooShort, i, len(secret), MinSecretLength)
		}
		s.secrets = append(s.secrets, []byte(secret))
	}
	if len(s.secrets) == 0 {
		return nil, fmt.Errorf("%w: no secret configured", ErrSecretTooShort)
	}
	return s, nil
}

// Sign は値に署名を付与した文字列を返す。形式は base64url(value) + "|" + base64url(hmac)。
func (s *CookieSigner) Sign(value string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(value))
	return encoded + "|" + s.mac(s.secrets[0], []byte(value))
}

// Verify は署名付き文字列を検証し、元の値を返す。
func (s *CookieSigner) Verify(signed string) (string, error) {
	encoded, signature, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range s.secrets {
		expected := s.mac(secret, value)
		if subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1 {
			return string(value), nil
		}
	}

	return "", ErrInvalidSignature
}

func (s *CookieSigner) mac(secret, value []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(value)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
