package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// トークン検証に失敗
var ErrVerification = errors.New("token verification failed")

// 検証済みトークンから取り出す本人情報
type Claims struct {
	SubjectID int64
	Email     string
	Role      Role
}

// Issuerはロール別シークレットでHS256トークンを発行する
type Issuer struct {
	secrets    map[Role][]byte
	refresh    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(customerSecret, merchantSecret, adminSecret, refreshSecret string) *Issuer {
	return &Issuer{
		secrets: map[Role][]byte{
			RoleCustomer: []byte(customerSecret),
			RoleMerchant: []byte(merchantSecret),
			RoleAdmin:    []byte(adminSecret),
		},
		refresh:    []byte(refreshSecret),
		accessTTL:  1 * time.Hour,
		refreshTTL: 7 * 24 * time.Hour,
	}
}

// Issueはアクセストークンを発行する
func (i *Issuer) Issue(subjectID int64, email string, role Role, now time.Time) (string, error) {
	secret, ok := i.secrets[role]
	if !ok {
		return "", errors.New("unknown role")
	}
	return sign(subjectID, email, role, secret, now, i.accessTTL)
}

// IssueRefreshはrefreshトークンを発行する（ロール共通シークレット）
func (i *Issuer) IssueRefresh(subjectID int64, email string, role Role, now time.Time) (string, error) {
	return sign(subjectID, email, role, i.refresh, now, i.refreshTTL)
}

// VerifyRefreshはrefreshトークンを検証してclaimsを返す
func (i *Issuer) VerifyRefresh(token string) (Claims, error) {
	return Verify(token, i.refresh)
}

func sign(subjectID int64, email string, role Role, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subjectID,
		"email": email,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

// Verifyは1つのシークレットに対して検証する
func Verify(rawToken string, secret []byte) (Claims, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrVerification
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrVerification
	}

	sub, err := parseSubject(mc["sub"])
	if err != nil || sub <= 0 {
		return Claims{}, ErrVerification
	}

	role, _ := mc["role"].(string)
	if role == "" {
		return Claims{}, ErrVerification
	}

	email, _ := mc["email"].(string)

	return Claims{
		SubjectID: sub,
		Email:     email,
		Role:      Role(role),
	}, nil
}

// subをint64に変換する
func parseSubject(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}
