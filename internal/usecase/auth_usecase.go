package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"foodorder/internal/auth"
	"foodorder/internal/domain/model"
	repo "foodorder/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// email/パスワード不一致（どちらが悪いかは明かさない）
	ErrInvalidCredentials = errors.New("credentials incorrect")

	// emailが既に使用済み
	ErrEmailAlreadyExists = errors.New("email already exists")

	// refreshトークンが不正・期限切れ
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

type AuthUsecase struct {
	customers repo.CustomerRepository
	merchants repo.MerchantRepository
	issuer    *auth.Issuer
}

func NewAuthUsecase(
	customers repo.CustomerRepository,
	merchants repo.MerchantRepository,
	issuer *auth.Issuer,
) *AuthUsecase {
	return &AuthUsecase{customers: customers, merchants: merchants, issuer: issuer}
}

type SignUpCustomerInput struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpMerchantInput struct {
	MerchantName string `json:"merchant_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	OwnerName    string `json:"owner_name"`
	Phone        string `json:"phone"`
}

type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// アクセス＋refreshのペア
type TokenPairOutput struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (u *AuthUsecase) SignUpCustomer(ctx context.Context, in SignUpCustomerInput) (TokenPairOutput, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return TokenPairOutput{}, err
	}
	if in.UserName == "" || len(in.Password) < 8 {
		return TokenPairOutput{}, ErrInvalidInput
	}

	if _, err := u.customers.FindByEmail(ctx, email); err == nil {
		return TokenPairOutput{}, ErrEmailAlreadyExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return TokenPairOutput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return TokenPairOutput{}, err
	}

	id, err := u.customers.Create(ctx, model.Customer{
		UserName:     in.UserName,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return TokenPairOutput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return u.issueTokenPair(id, email, auth.RoleCustomer)
}

func (u *AuthUsecase) SignInCustomer(ctx context.Context, in SignInInput) (TokenPairOutput, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return TokenPairOutput{}, err
	}

	c, err := u.customers.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return TokenPairOutput{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPairOutput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	//パスワード照合（bcrypt）
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(in.Password)); err != nil {
		return TokenPairOutput{}, ErrInvalidCredentials
	}

	return u.issueTokenPair(c.ID, c.Email, auth.RoleCustomer)
}

func (u *AuthUsecase) SignUpMerchant(ctx context.Context, in SignUpMerchantInput) (TokenPairOutput, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return TokenPairOutput{}, err
	}
	if in.MerchantName == "" || len(in.Password) < 8 {
		return TokenPairOutput{}, ErrInvalidInput
	}

	if _, err := u.merchants.FindByEmail(ctx, email); err == nil {
		return TokenPairOutput{}, ErrEmailAlreadyExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return TokenPairOutput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return TokenPairOutput{}, err
	}

	id, err := u.merchants.Create(ctx, model.Merchant{
		MerchantName: in.MerchantName,
		Email:        email,
		PasswordHash: string(hash),
		OwnerName:    in.OwnerName,
		Phone:        in.Phone,
		Status:       true,
	})
	if err != nil {
		return TokenPairOutput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return u.issueTokenPair(id, email, auth.RoleMerchant)
}

func (u *AuthUsecase) SignInMerchant(ctx context.Context, in SignInInput) (TokenPairOutput, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return TokenPairOutput{}, err
	}

	m, err := u.merchants.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return TokenPairOutput{}, ErrInvalidCredentials
	}
	if err != nil {
		return TokenPairOutput{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(in.Password)); err != nil {
		return TokenPairOutput{}, ErrInvalidCredentials
	}

	return u.issueTokenPair(m.ID, m.Email, auth.RoleMerchant)
}

// Refreshはrefreshトークンを検証して新しいアクセストークンを発行する
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := u.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidRefresh
	}

	accessToken, err := u.issuer.Issue(claims.SubjectID, claims.Email, claims.Role, time.Now())
	if err != nil {
		return "", ErrInvalidRefresh
	}
	return accessToken, nil
}

func (u *AuthUsecase) issueTokenPair(subjectID int64, email string, role auth.Role) (TokenPairOutput, error) {
	now := time.Now()

	access, err := u.issuer.Issue(subjectID, email, role, now)
	if err != nil {
		return TokenPairOutput{}, err
	}
	refresh, err := u.issuer.IssueRefresh(subjectID, email, role, now)
	if err != nil {
		return TokenPairOutput{}, err
	}

	return TokenPairOutput{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidInput
	}
	return email, nil
}
